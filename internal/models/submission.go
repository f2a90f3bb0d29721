package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission is a clip entered against a campaign. EarningsCents is derived
// from views and the campaign CPM; PayoutAmountCents is what was actually
// credited at approval (capped by the campaign's remaining budget).
type Submission struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CampaignID        uint           `gorm:"not null;index" json:"campaign_id"`
	ClipperID         uint           `gorm:"not null;index" json:"clipper_id"`
	ClipURL           string         `gorm:"size:512;not null" json:"clip_url"`
	ThumbnailURL      string         `gorm:"size:512" json:"thumbnail_url"`
	Views             int64          `gorm:"not null;default:0" json:"views"`
	EarningsCents     int64          `gorm:"not null;default:0" json:"earnings_cents"`
	Status            string         `gorm:"size:20;not null;index;default:'PENDING'" json:"status"` // PENDING, APPROVED, REJECTED
	PayoutAmountCents int64          `gorm:"not null;default:0" json:"payout_amount_cents"`
	PaidAt            *time.Time     `json:"paid_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Campaign Campaign `gorm:"foreignKey:CampaignID" json:"-"`
	Clipper  User     `gorm:"foreignKey:ClipperID" json:"-"`
}

func (Submission) TableName() string {
	return "submissions"
}
