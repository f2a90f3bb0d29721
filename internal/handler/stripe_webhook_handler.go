package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"klipz/config"
	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

type StripeWebhookHandler struct {
	cfg        *config.Config
	depositSvc *service.DepositService
	notifSvc   *service.NotificationService
	auditRepo  *repository.AuditLogRepository
}

func NewStripeWebhookHandler(cfg *config.Config, depositSvc *service.DepositService, notifSvc *service.NotificationService, auditRepo *repository.AuditLogRepository) *StripeWebhookHandler {
	return &StripeWebhookHandler{cfg: cfg, depositSvc: depositSvc, notifSvc: notifSvc, auditRepo: auditRepo}
}

// Handle verifies the Stripe signature, dedupes by event id and applies the
// event. Replayed deliveries are acknowledged without a second credit.
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	sig := c.GetHeader("Stripe-Signature")
	if sig == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing signature"})
		return
	}
	event, err := webhook.ConstructEvent(body, sig, h.cfg.Stripe.WebhookSecret)
	if err != nil {
		log.Printf("[Stripe webhook] signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "signature verification failed"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
			return
		}
		h.credit(c, string(event.Type), event.ID, pi.ID, pi.Metadata, pi.AmountReceived)
		return
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
			return
		}
		ref := sess.ID
		if sess.PaymentIntent != nil {
			ref = sess.PaymentIntent.ID
		}
		h.credit(c, string(event.Type), event.ID, ref, sess.Metadata, sess.AmountTotal)
		return
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
			return
		}
		if err := h.depositSvc.HandlePaymentFailed(event.ID, string(event.Type), pi.ID); err != nil {
			log.Printf("[Stripe webhook] failed-payment handling error for %s: %v", event.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "processing failed"})
			return
		}
	default:
		log.Printf("[Stripe webhook] ignoring event type %s", event.Type)
	}
	h.ack(c, event.ID, string(event.Type), "acknowledged")
}

// credit extracts the target user and amount from event metadata and applies
// the deposit. Missing or non-positive values are logged and acknowledged
// without any state change.
func (h *StripeWebhookHandler) credit(c *gin.Context, eventType, eventID, providerRef string, metadata map[string]string, fallbackAmount int64) {
	userID, amountCents := parseDepositMetadata(metadata, fallbackAmount)
	if userID == 0 || amountCents <= 0 {
		log.Printf("[Stripe webhook] event %s missing user/amount metadata, skipping", eventID)
		h.ack(c, eventID, eventType, "skipped: missing user or amount")
		return
	}
	credited, err := h.depositSvc.HandlePaymentSucceeded(eventID, eventType, providerRef, userID, amountCents)
	if err != nil {
		log.Printf("[Stripe webhook] credit failed for event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "processing failed"})
		return
	}
	if !credited {
		log.Printf("[Stripe webhook] duplicate event %s, already processed", eventID)
		h.ack(c, eventID, eventType, "duplicate delivery, already processed")
		return
	}
	if h.notifSvc != nil {
		_ = h.notifSvc.NotifyDepositConfirmed(userID, amountCents, providerRef)
	}
	if h.auditRepo != nil {
		uid := userID
		_ = h.auditRepo.Create(&models.AuditLog{
			UserID:     &uid,
			Action:     "deposit_credited",
			Resource:   "deposit",
			ResourceID: providerRef,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
	h.ack(c, eventID, eventType, "credited")
}

func (h *StripeWebhookHandler) ack(c *gin.Context, eventID, eventType, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"event_id":   eventID,
		"event_type": eventType,
	})
}

func parseDepositMetadata(metadata map[string]string, fallbackAmount int64) (uint, int64) {
	var userID uint64
	if v, ok := metadata["user_id"]; ok {
		userID, _ = strconv.ParseUint(v, 10, 64)
	}
	amount := fallbackAmount
	if v, ok := metadata["amount_cents"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			amount = n
		}
	}
	return uint(userID), amount
}
