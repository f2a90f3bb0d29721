package models

import (
	"time"

	"klipz/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:20;not null;index" json:"role"` // STREAMER | CLIPPER | ADMIN
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	StripeAccountID *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil until Connect onboarding starts
	TwitchID        *string        `gorm:"uniqueIndex;size:64" json:"-"`  // nil when no Twitch account is linked
	TwitchLogin     string         `gorm:"size:64" json:"twitch_login"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsStreamer() bool { return u.Role == domain.RoleStreamer }
func (u *User) IsClipper() bool  { return u.Role == domain.RoleClipper }

// HasPayoutAccount reports whether Connect onboarding has at least been started.
func (u *User) HasPayoutAccount() bool {
	return u.StripeAccountID != nil && *u.StripeAccountID != ""
}
