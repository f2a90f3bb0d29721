package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign is a streamer-funded budget that clippers submit clips against.
// CPMRateCents is earnings per 1000 views, in cents.
type Campaign struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	StreamerID           uint           `gorm:"not null;index" json:"streamer_id"`
	Title                string         `gorm:"size:255;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	CPMRateCents         int64          `gorm:"not null" json:"cpm_rate_cents"`
	BudgetCents          int64          `gorm:"not null;default:0" json:"budget_cents"`
	RemainingBudgetCents int64          `gorm:"not null;default:0" json:"remaining_budget_cents"`
	Status               string         `gorm:"size:20;not null;index;default:'DRAFT'" json:"status"` // DRAFT, ACTIVE, PAUSED, CLOSED
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Streamer User `gorm:"foreignKey:StreamerID" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (c *Campaign) AcceptsSubmissions() bool {
	return c.Status == "ACTIVE" && c.RemainingBudgetCents > 0
}
