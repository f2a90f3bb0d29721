package handler

import (
	"errors"
	"net/http"

	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	payoutSvc      *service.PayoutService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalHandler(payoutSvc *service.PayoutService, withdrawalRepo *repository.WithdrawalRepository) *WithdrawalHandler {
	return &WithdrawalHandler{payoutSvc: payoutSvc, withdrawalRepo: withdrawalRepo}
}

type createWithdrawalRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	w, err := h.payoutSvc.RequestWithdrawal(c.Request.Context(), userID, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount is below the withdrawal minimum"})
		case errors.Is(err, service.ErrNoPayoutAccount):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No payout account linked. Complete onboarding first"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient wallet balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "withdrawal": w})
}

func (h *WithdrawalHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	withdrawals, err := h.withdrawalRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawals": withdrawals})
}

func (h *WithdrawalHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, err := h.withdrawalRepo.GetByID(id)
	if err != nil || w == nil || w.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Withdrawal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawal": w})
}
