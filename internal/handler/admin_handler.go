package handler

import (
	"errors"
	"net/http"

	"klipz/internal/middleware"
	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo       *repository.UserRepository
	withdrawalRepo *repository.WithdrawalRepository
	payoutSvc      *service.PayoutService
	earningsSvc    *service.EarningsService
	submissionRepo *repository.SubmissionRepository
	auditRepo      *repository.AuditLogRepository
}

func NewAdminHandler(userRepo *repository.UserRepository, withdrawalRepo *repository.WithdrawalRepository, payoutSvc *service.PayoutService, earningsSvc *service.EarningsService, submissionRepo *repository.SubmissionRepository, auditRepo *repository.AuditLogRepository) *AdminHandler {
	return &AdminHandler{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		payoutSvc:      payoutSvc,
		earningsSvc:    earningsSvc,
		submissionRepo: submissionRepo,
		auditRepo:      auditRepo,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.userRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// ListWithdrawals filters by status when ?status= is present, most recent first.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	withdrawals, err := h.withdrawalRepo.ListByStatus(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawals": withdrawals})
}

// RetryWithdrawal re-dispatches a failed or stuck withdrawal. The provider
// idempotency key makes a duplicate transfer impossible.
func (h *AdminHandler) RetryWithdrawal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, err := h.payoutSvc.RetryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyFinal) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Withdrawal is already in a terminal state"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Retry failed: " + err.Error()})
		return
	}
	h.audit(c, "withdrawal_retried", "withdrawal", w.OrderID)
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawal": w})
}

type directPayoutRequest struct {
	ClipperID    uint  `json:"clipper_id" binding:"required"`
	AmountCents  int64 `json:"amount_cents" binding:"required,gt=0"`
	SubmissionID *uint `json:"submission_id"`
}

// DirectPayout sends money straight from a clipper's wallet balance to their
// payout account, outside the self-service withdrawal flow.
func (h *AdminHandler) DirectPayout(c *gin.Context) {
	var req directPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	w, err := h.payoutSvc.DirectPayout(c.Request.Context(), req.ClipperID, req.AmountCents, req.SubmissionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPayoutAccount):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Clipper has no payout account"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Clipper balance is insufficient"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Payout failed"})
		}
		return
	}
	h.audit(c, "direct_payout", "withdrawal", w.OrderID)
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawal": w})
}

func (h *AdminHandler) ListPendingSubmissions(c *gin.Context) {
	limit, _ := pagination(c)
	subs, err := h.submissionRepo.ListPending(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load submissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submissions": subs})
}

// ApproveSubmission is the admin override that skips the campaign-owner check.
func (h *AdminHandler) ApproveSubmission(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.earningsSvc.Approve(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionFinal):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Submission is already finalized"})
		case errors.Is(err, service.ErrCampaignExhausted):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Campaign budget exhausted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to approve submission"})
		}
		return
	}
	h.audit(c, "submission_approved", "submission", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

type adminMetricsRequest struct {
	Views int64 `json:"views" binding:"gte=0"`
}

// UpdateSubmissionMetrics pushes a verified view count onto a pending
// submission; the refresh job picks earnings changes up from there.
func (h *AdminHandler) UpdateSubmissionMetrics(c *gin.Context) {
	var req adminMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.earningsSvc.UpdateMetrics(id, req.Views)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionFinal) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Submission is already finalized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

func (h *AdminHandler) RejectSubmission(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.earningsSvc.Reject(id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionFinal) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Submission is already finalized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to reject submission"})
		return
	}
	h.audit(c, "submission_rejected", "submission", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

func (h *AdminHandler) AuditLog(c *gin.Context) {
	limit, offset := pagination(c)
	entries, err := h.auditRepo.ListByAction(c.Query("action"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

func (h *AdminHandler) audit(c *gin.Context, action, resource, resourceID string) {
	adminID := middleware.GetUserID(c)
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
