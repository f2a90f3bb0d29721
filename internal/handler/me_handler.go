package handler

import (
	"net/http"

	"klipz/internal/domain"
	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo       *repository.UserRepository
	ledger         *service.LedgerService
	campaignRepo   *repository.CampaignRepository
	submissionRepo *repository.SubmissionRepository
	withdrawalRepo *repository.WithdrawalRepository
}

func NewMeHandler(userRepo *repository.UserRepository, ledger *service.LedgerService, campaignRepo *repository.CampaignRepository, submissionRepo *repository.SubmissionRepository, withdrawalRepo *repository.WithdrawalRepository) *MeHandler {
	return &MeHandler{
		userRepo:       userRepo,
		ledger:         ledger,
		campaignRepo:   campaignRepo,
		submissionRepo: submissionRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

func (h *MeHandler) Profile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"user":               user,
		"has_payout_account": user.HasPayoutAccount(),
		"twitch_linked":      user.TwitchID != nil,
	})
}

// Dashboard assembles the role-specific home view: streamers get their
// campaigns, clippers their submissions, both get wallet and recent payouts.
func (h *MeHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load user"})
		return
	}
	wallet, err := h.ledger.Balance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load wallet"})
		return
	}
	withdrawals, err := h.withdrawalRepo.ListByUser(userID, 5, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load withdrawals"})
		return
	}

	resp := gin.H{
		"success":            true,
		"role":               user.Role,
		"balance_cents":      wallet.BalanceCents,
		"recent_withdrawals": withdrawals,
	}

	switch user.Role {
	case domain.RoleStreamer:
		campaigns, err := h.campaignRepo.ListByStreamer(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load campaigns"})
			return
		}
		resp["campaigns"] = campaigns
	case domain.RoleClipper:
		submissions, err := h.submissionRepo.ListByClipper(userID, 10, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load submissions"})
			return
		}
		var earnedCents int64
		for _, s := range submissions {
			earnedCents += s.PayoutAmountCents
		}
		resp["submissions"] = submissions
		resp["recent_earnings_cents"] = earnedCents
	}

	c.JSON(http.StatusOK, resp)
}
