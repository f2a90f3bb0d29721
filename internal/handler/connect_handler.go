package handler

import (
	"log"
	"net/http"

	"klipz/config"
	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/pkg/payout"

	"github.com/gin-gonic/gin"
)

type ConnectHandler struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	provider payout.Provider
}

func NewConnectHandler(cfg *config.Config, userRepo *repository.UserRepository, provider payout.Provider) *ConnectHandler {
	return &ConnectHandler{cfg: cfg, userRepo: userRepo, provider: provider}
}

// Onboard returns a fresh onboarding link for the user's express account,
// creating the account first if none is linked yet. The account id is
// persisted before the link call so an interrupted onboarding can resume
// with the same account.
func (h *ConnectHandler) Onboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load user"})
		return
	}

	accountID := ""
	if user.StripeAccountID != nil {
		accountID = *user.StripeAccountID
	}
	if accountID == "" {
		accountID, err = h.provider.CreateExpressAccount(c.Request.Context(), user.Email)
		if err != nil {
			log.Printf("[Connect] account creation failed for user %d: %v", userID, err)
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to create payout account"})
			return
		}
		if err := h.userRepo.SetStripeAccountID(userID, accountID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save payout account"})
			return
		}
	}

	link, err := h.provider.CreateOnboardingLink(c.Request.Context(), accountID, h.cfg.Stripe.ConnectRefreshURL, h.cfg.Stripe.ConnectReturnURL)
	if err != nil {
		log.Printf("[Connect] onboarding link failed for account %s: %v", accountID, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to create onboarding link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"account_id":     accountID,
		"onboarding_url": link,
	})
}

// Status reports whether the user has a linked payout account.
func (h *ConnectHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"has_payout_account": user.HasPayoutAccount(),
	})
}
