package repository

import (
	"errors"

	"klipz/internal/models"

	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) WithTx(tx *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: tx}
}

// MarkProcessed records an event id. Returns false when the id was already
// recorded, which is how replayed deliveries get short-circuited. Run inside
// the same transaction as the ledger effect so a failed credit also rolls the
// marker back.
func (r *WebhookEventRepository) MarkProcessed(eventID, eventType string) (bool, error) {
	ev := &models.WebhookEvent{EventID: eventID, EventType: eventType}
	err := r.db.Create(ev).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	// Not all drivers translate duplicate-key errors; fall back to a lookup.
	var count int64
	if cErr := r.db.Model(&models.WebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error; cErr == nil && count > 0 {
		return false, nil
	}
	return false, err
}
