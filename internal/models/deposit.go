package models

import (
	"time"

	"gorm.io/gorm"
)

// Deposit tracks a Stripe payment intent from creation until the webhook
// confirms it. The wallet credit happens only on confirmation.
type Deposit struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	ProviderRef string         `gorm:"size:255;uniqueIndex" json:"provider_ref"` // Stripe payment intent id
	Status      string         `gorm:"size:20;not null;index" json:"status"`     // PENDING, COMPLETED, FAILED
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Deposit) TableName() string {
	return "deposits"
}
