package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal moves ledger funds to the user's Stripe Connect account.
// The wallet reserve is taken when the row is created; OrderID doubles as the
// Stripe idempotency key so a dispatch can be retried safely.
type Withdrawal struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	OrderID      string         `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountCents  int64          `gorm:"not null" json:"amount_cents"`
	SubmissionID *uint          `gorm:"index" json:"submission_id"` // set for direct submission payouts
	Status       string         `gorm:"size:20;not null;index" json:"status"` // REQUESTED, PROCESSING, COMPLETED, FAILED
	ProviderRef  string         `gorm:"size:128" json:"provider_ref"`         // Stripe transfer id
	FailureNote  string         `gorm:"size:255" json:"failure_note"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ProcessedAt  *time.Time     `json:"processed_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
