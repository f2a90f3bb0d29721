package handler

import (
	"net/http"

	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	ledger     *service.LedgerService
	walletRepo *repository.WalletRepository
}

func NewWalletHandler(ledger *service.LedgerService, walletRepo *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{ledger: ledger, walletRepo: walletRepo}
}

func (h *WalletHandler) Balance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	wallet, err := h.ledger.Balance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load wallet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"balance_cents": wallet.BalanceCents,
		"currency":      wallet.Currency,
	})
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	txns, err := h.walletRepo.ListTransactions(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": txns})
}
