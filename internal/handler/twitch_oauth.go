package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"klipz/config"
	"klipz/internal/middleware"
	"klipz/internal/models"
	"klipz/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"gorm.io/gorm"
)

// TwitchOAuthHandler links a Twitch account to an existing KLIPZ user so
// submitted clips can be verified against the creator's channel.
type TwitchOAuthHandler struct {
	cfg       *config.Config
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditLogRepository
}

func NewTwitchOAuthHandler(cfg *config.Config, userRepo *repository.UserRepository, auditRepo *repository.AuditLogRepository) *TwitchOAuthHandler {
	return &TwitchOAuthHandler{cfg: cfg, userRepo: userRepo, auditRepo: auditRepo}
}

func (h *TwitchOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.Twitch.ClientID,
		ClientSecret: h.cfg.Twitch.ClientSecret,
		RedirectURL:  h.cfg.Twitch.RedirectURL,
		Scopes:       []string{"user:read:email"},
		Endpoint:     endpoints.Twitch,
	}
}

// Redirect sends the user to the Twitch consent screen.
func (h *TwitchOAuthHandler) Redirect(c *gin.Context) {
	if h.cfg.Twitch.ClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Twitch OAuth not configured"})
		return
	}
	url := h.OAuth2Config().AuthCodeURL("state")
	c.Redirect(http.StatusFound, url)
}

type twitchUsersResponse struct {
	Data []struct {
		ID              string `json:"id"`
		Login           string `json:"login"`
		DisplayName     string `json:"display_name"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

type twitchLinkRequest struct {
	Code string `json:"code" binding:"required"`
}

// Link exchanges the OAuth code, fetches the Twitch identity and stores it on
// the authenticated user. A Twitch account can be linked to one user only.
func (h *TwitchOAuthHandler) Link(c *gin.Context) {
	if h.cfg.Twitch.ClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Twitch OAuth not configured"})
		return
	}
	var req twitchLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "code required"})
		return
	}

	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, req.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "exchange failed"})
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.twitch.tv/helix/users", nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to get user info"})
		return
	}
	// Helix requires the app client id alongside the bearer token.
	httpReq.Header.Set("Client-Id", h.cfg.Twitch.ClientID)
	resp, err := conf.Client(ctx, tok).Do(httpReq)
	if err != nil || resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to get user info"})
		return
	}
	defer resp.Body.Close()

	var info twitchUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || len(info.Data) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "invalid user info"})
		return
	}
	identity := info.Data[0]

	if existing, err := h.userRepo.GetByTwitchID(identity.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "lookup failed"})
		return
	} else if existing != nil && existing.ID != middleware.GetUserID(c) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Twitch account already linked to another user"})
		return
	}

	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load user"})
		return
	}
	twitchID := identity.ID
	user.TwitchID = &twitchID
	user.TwitchLogin = identity.Login
	if user.AvatarURL == "" {
		user.AvatarURL = identity.ProfileImageURL
	}
	if err := h.userRepo.Update(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to link Twitch account"})
		return
	}

	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &userID,
		Action:     "twitch_linked",
		Resource:   "user",
		ResourceID: identity.ID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "twitch_login": identity.Login})
}

// Unlink removes the Twitch identity from the authenticated user.
func (h *TwitchOAuthHandler) Unlink(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load user"})
		return
	}
	user.TwitchID = nil
	user.TwitchLogin = ""
	if err := h.userRepo.Update(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to unlink Twitch account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
