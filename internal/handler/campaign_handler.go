package handler

import (
	"errors"
	"net/http"

	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignSvc    *service.CampaignService
	campaignRepo   *repository.CampaignRepository
	submissionRepo *repository.SubmissionRepository
}

func NewCampaignHandler(campaignSvc *service.CampaignService, campaignRepo *repository.CampaignRepository, submissionRepo *repository.SubmissionRepository) *CampaignHandler {
	return &CampaignHandler{campaignSvc: campaignSvc, campaignRepo: campaignRepo, submissionRepo: submissionRepo}
}

type createCampaignRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	CPMRateCents int64  `json:"cpm_rate_cents" binding:"required,gt=0"`
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	streamerID := middleware.GetUserID(c)
	campaign, err := h.campaignSvc.Create(streamerID, req.Title, req.Description, req.CPMRateCents)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "campaign": campaign})
}

type fundCampaignRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

// Fund moves money from the streamer's wallet into the campaign budget in a
// single transaction. The first funding activates a draft campaign.
func (h *CampaignHandler) Fund(c *gin.Context) {
	var req fundCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	streamerID := middleware.GetUserID(c)
	campaign, err := h.campaignSvc.Fund(streamerID, id, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotCampaignOwner):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not own this campaign"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient wallet balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fund campaign"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaign": campaign})
}

type campaignStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *CampaignHandler) SetStatus(c *gin.Context) {
	var req campaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	streamerID := middleware.GetUserID(c)
	campaign, err := h.campaignSvc.SetStatus(streamerID, id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrNotCampaignOwner) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not own this campaign"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaign": campaign})
}

// ListActive is the public browse endpoint for clippers.
func (h *CampaignHandler) ListActive(c *gin.Context) {
	limit, offset := pagination(c)
	campaigns, err := h.campaignRepo.ListActive(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaigns": campaigns})
}

func (h *CampaignHandler) ListMine(c *gin.Context) {
	streamerID := middleware.GetUserID(c)
	campaigns, err := h.campaignRepo.ListByStreamer(streamerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaigns": campaigns})
}

func (h *CampaignHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignRepo.GetByID(id)
	if err != nil || campaign == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Campaign not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaign": campaign})
}

// Submissions lists a campaign's submissions for its owner.
func (h *CampaignHandler) Submissions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	campaign, err := h.campaignRepo.GetByID(id)
	if err != nil || campaign == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Campaign not found"})
		return
	}
	if campaign.StreamerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not own this campaign"})
		return
	}
	limit, offset := pagination(c)
	submissions, err := h.submissionRepo.ListByCampaign(id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load submissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submissions": submissions})
}
