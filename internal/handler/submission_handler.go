package handler

import (
	"errors"
	"net/http"

	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	earningsSvc    *service.EarningsService
	submissionRepo *repository.SubmissionRepository
	campaignRepo   *repository.CampaignRepository
}

func NewSubmissionHandler(earningsSvc *service.EarningsService, submissionRepo *repository.SubmissionRepository, campaignRepo *repository.CampaignRepository) *SubmissionHandler {
	return &SubmissionHandler{earningsSvc: earningsSvc, submissionRepo: submissionRepo, campaignRepo: campaignRepo}
}

type createSubmissionRequest struct {
	CampaignID   uint   `json:"campaign_id" binding:"required"`
	ClipURL      string `json:"clip_url" binding:"required,url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Views        int64  `json:"views"`
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	clipperID := middleware.GetUserID(c)
	sub, err := h.earningsSvc.Submit(clipperID, req.CampaignID, req.ClipURL, req.ThumbnailURL, req.Views)
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotOpen) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Campaign is not accepting submissions"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create submission"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "submission": sub})
}

func (h *SubmissionHandler) ListMine(c *gin.Context) {
	clipperID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	subs, err := h.submissionRepo.ListByClipper(clipperID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load submissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submissions": subs})
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissionRepo.GetByID(id)
	if err != nil || sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Submission not found"})
		return
	}
	if sub.ClipperID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not your submission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

type updateMetricsRequest struct {
	Views int64 `json:"views" binding:"gte=0"`
}

// UpdateMetrics refreshes the view count on a pending submission owned by the
// caller. Earnings are recomputed; approved submissions are immutable.
func (h *SubmissionHandler) UpdateMetrics(c *gin.Context) {
	var req updateMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissionRepo.GetByID(id)
	if err != nil || sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Submission not found"})
		return
	}
	if sub.ClipperID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not your submission"})
		return
	}
	updated, err := h.earningsSvc.UpdateMetrics(id, req.Views)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionFinal) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Submission is already finalized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": updated})
}

// Approve lets the campaign owner approve a submission, which credits the
// clipper's wallet and spends campaign budget atomically.
func (h *SubmissionHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.requireCampaignOwner(c, id) {
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
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

func (h *SubmissionHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.requireCampaignOwner(c, id) {
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
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

func (h *SubmissionHandler) requireCampaignOwner(c *gin.Context, submissionID uint) bool {
	sub, err := h.submissionRepo.GetByID(submissionID)
	if err != nil || sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Submission not found"})
		return false
	}
	campaign, err := h.campaignRepo.GetByID(sub.CampaignID)
	if err != nil || campaign == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Campaign not found"})
		return false
	}
	if campaign.StreamerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not own this campaign"})
		return false
	}
	return true
}
