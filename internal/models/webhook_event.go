package models

import "time"

// WebhookEvent records every processed provider event id. The unique index is
// what makes webhook delivery effectively exactly-once: a replayed event id
// fails the insert and is acknowledged without touching the ledger.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:255;uniqueIndex;not null" json:"event_id"`
	EventType string    `gorm:"size:64;not null;index" json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
