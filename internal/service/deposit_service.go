package service

import (
	"errors"
	"time"

	"klipz/internal/domain"
	"klipz/internal/models"
	"klipz/internal/repository"

	"gorm.io/gorm"
)

// DepositService applies confirmed payment events to the ledger. The event
// marker, the wallet credit and the deposit status all commit together, so a
// crashed delivery is fully retried and a replayed one is fully ignored.
type DepositService struct {
	db          *gorm.DB
	eventRepo   *repository.WebhookEventRepository
	depositRepo *repository.DepositRepository
	ledger      *LedgerService
}

func NewDepositService(db *gorm.DB, eventRepo *repository.WebhookEventRepository, depositRepo *repository.DepositRepository, ledger *LedgerService) *DepositService {
	return &DepositService{db: db, eventRepo: eventRepo, depositRepo: depositRepo, ledger: ledger}
}

// HandlePaymentSucceeded credits the user's wallet for a confirmed payment.
// Returns credited=false when the event id was already processed.
func (s *DepositService) HandlePaymentSucceeded(eventID, eventType, providerRef string, userID uint, amountCents int64) (credited bool, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		first, err := s.eventRepo.WithTx(tx).MarkProcessed(eventID, eventType)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
		credited = true
		if err := s.ledger.CreditInTx(tx, userID, amountCents, domain.TxTypeDeposit, eventID); err != nil {
			return err
		}
		// The deposit row exists when the intent was created through our API;
		// events for intents created elsewhere still credit the wallet.
		dr := s.depositRepo.WithTx(tx)
		d, err := dr.GetByProviderRef(providerRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if d.Status == domain.DepositStatusCompleted {
			return nil
		}
		now := time.Now()
		d.Status = domain.DepositStatusCompleted
		d.CompletedAt = &now
		return dr.Update(d)
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

// HandlePaymentFailed marks the pending deposit failed. No ledger effect.
func (s *DepositService) HandlePaymentFailed(eventID, eventType, providerRef string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		first, err := s.eventRepo.WithTx(tx).MarkProcessed(eventID, eventType)
		if err != nil || !first {
			return err
		}
		dr := s.depositRepo.WithTx(tx)
		d, err := dr.GetByProviderRef(providerRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if d.Status != domain.DepositStatusPending {
			return nil
		}
		d.Status = domain.DepositStatusFailed
		return dr.Update(d)
	})
}

// RecordPendingDeposit persists the intent created for a user so the webhook
// can later reconcile it.
func (s *DepositService) RecordPendingDeposit(userID uint, amountCents int64, currency, providerRef string) (*models.Deposit, error) {
	d := &models.Deposit{
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    currency,
		ProviderRef: providerRef,
		Status:      domain.DepositStatusPending,
	}
	if err := s.depositRepo.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}
