package handler

import (
	"log"
	"net/http"

	"klipz/config"
	"klipz/internal/middleware"
	"klipz/internal/service"
	"klipz/pkg/payout"

	"github.com/gin-gonic/gin"
)

// PaymentHandler creates deposit payment intents. No balance changes here; the
// wallet is only credited when the webhook confirms the payment.
type PaymentHandler struct {
	cfg        *config.Config
	provider   payout.Provider
	depositSvc *service.DepositService
}

func NewPaymentHandler(cfg *config.Config, provider payout.Provider, depositSvc *service.DepositService) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, provider: provider, depositSvc: depositSvc}
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		AmountCents int64 `json:"amount_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AmountCents < h.cfg.Stripe.MinDepositCents || req.AmountCents > h.cfg.Stripe.MaxDepositCents {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "amount out of range",
			"min_cents": h.cfg.Stripe.MinDepositCents,
			"max_cents": h.cfg.Stripe.MaxDepositCents,
		})
		return
	}
	pi, err := h.provider.CreatePaymentIntent(c.Request.Context(), payout.PaymentIntentRequest{
		UserID:      userID,
		AmountCents: req.AmountCents,
		Currency:    h.cfg.Stripe.Currency,
		Description: "KLIPZ wallet deposit",
	})
	if err != nil {
		log.Printf("[Payment] intent creation failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment intent creation failed"})
		return
	}
	if _, err := h.depositSvc.RecordPendingDeposit(userID, req.AmountCents, h.cfg.Stripe.Currency, pi.ID); err != nil {
		log.Printf("[Payment] deposit record failed for intent %s: %v", pi.ID, err)
		// The webhook credits by metadata even without the row; don't fail the client.
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"intent_id":     pi.ID,
		"client_secret": pi.ClientSecret,
	})
}
