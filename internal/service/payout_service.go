package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"klipz/internal/domain"
	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/pkg/payout"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoPayoutAccount   = errors.New("no payout account linked")
	ErrBelowMinimum      = errors.New("amount below withdrawal minimum")
	ErrAlreadyFinal      = errors.New("withdrawal already in a terminal state")
	ErrInsufficientFunds = repository.ErrInsufficientBalance
)

// PayoutService runs the withdrawal pipeline. The wallet reserve is taken
// atomically with the withdrawal row; the external transfer only happens after
// that, keyed by the order id, so a retry can never pay twice and a crash can
// never leave money paid out but not debited.
type PayoutService struct {
	db             *gorm.DB
	walletRepo     *repository.WalletRepository
	withdrawalRepo *repository.WithdrawalRepository
	userRepo       *repository.UserRepository
	ledger         *LedgerService
	provider       payout.Provider
	notifSvc       *NotificationService
	auditRepo      *repository.AuditLogRepository
	currency       string
	minCents       int64
}

func NewPayoutService(
	db *gorm.DB,
	walletRepo *repository.WalletRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	userRepo *repository.UserRepository,
	ledger *LedgerService,
	provider payout.Provider,
	notifSvc *NotificationService,
	auditRepo *repository.AuditLogRepository,
	currency string,
	minWithdrawalCents int64,
) *PayoutService {
	return &PayoutService{
		db:             db,
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		ledger:         ledger,
		provider:       provider,
		notifSvc:       notifSvc,
		auditRepo:      auditRepo,
		currency:       currency,
		minCents:       minWithdrawalCents,
	}
}

// RequestWithdrawal reserves funds and dispatches the transfer. The returned
// withdrawal reflects the post-dispatch status.
func (s *PayoutService) RequestWithdrawal(ctx context.Context, userID uint, amountCents int64) (*models.Withdrawal, error) {
	if amountCents < s.minCents {
		return nil, ErrBelowMinimum
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !u.HasPayoutAccount() {
		return nil, ErrNoPayoutAccount
	}
	w, err := s.reserve(userID, amountCents, nil)
	if err != nil {
		return nil, err
	}
	if err := s.Dispatch(ctx, w); err != nil {
		return w, err
	}
	return w, nil
}

// DirectPayout is the admin variant: push an amount to a clipper's payout
// account, optionally tied to a submission. Same reserve-then-transfer order.
func (s *PayoutService) DirectPayout(ctx context.Context, clipperID uint, amountCents int64, submissionID *uint) (*models.Withdrawal, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	u, err := s.userRepo.GetByID(clipperID)
	if err != nil {
		return nil, err
	}
	if !u.HasPayoutAccount() {
		return nil, ErrNoPayoutAccount
	}
	w, err := s.reserve(clipperID, amountCents, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.Dispatch(ctx, w); err != nil {
		return w, err
	}
	return w, nil
}

// reserve debits the wallet and creates the REQUESTED withdrawal in one DB
// transaction. Either both happen or neither does.
func (s *PayoutService) reserve(userID uint, amountCents int64, submissionID *uint) (*models.Withdrawal, error) {
	orderID := "wd-" + uuid.New().String()
	w := &models.Withdrawal{
		UserID:       userID,
		OrderID:      orderID,
		AmountCents:  amountCents,
		SubmissionID: submissionID,
		Status:       domain.WithdrawalStatusRequested,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.DebitInTx(tx, userID, amountCents, domain.TxTypeWithdrawal, orderID); err != nil {
			return err
		}
		return s.withdrawalRepo.WithTx(tx).Create(w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Dispatch moves a REQUESTED or PROCESSING withdrawal through the external
// transfer. Safe to call again on the same withdrawal: COMPLETED is a no-op,
// and a repeated transfer call reuses the order id as idempotency key.
func (s *PayoutService) Dispatch(ctx context.Context, w *models.Withdrawal) error {
	switch w.Status {
	case domain.WithdrawalStatusCompleted:
		return nil
	case domain.WithdrawalStatusFailed:
		return ErrAlreadyFinal
	}

	u, err := s.userRepo.GetByID(w.UserID)
	if err != nil {
		return err
	}
	if !u.HasPayoutAccount() {
		return s.fail(w, "payout account missing at dispatch")
	}

	// Persist PROCESSING before calling out so a crash mid-transfer is visible
	// and the withdrawal can be re-dispatched.
	w.Status = domain.WithdrawalStatusProcessing
	if err := s.withdrawalRepo.Update(w); err != nil {
		return err
	}

	tr, err := s.provider.Transfer(ctx, payout.TransferRequest{
		AmountCents:          w.AmountCents,
		Currency:             s.currency,
		DestinationAccountID: *u.StripeAccountID,
		IdempotencyKey:       w.OrderID,
		Description:          "KLIPZ withdrawal " + w.OrderID,
	})
	if err != nil {
		log.Printf("[Payout] transfer failed for %s: %v", w.OrderID, err)
		if failErr := s.fail(w, err.Error()); failErr != nil {
			return failErr
		}
		return err
	}

	now := time.Now()
	w.Status = domain.WithdrawalStatusCompleted
	w.ProviderRef = tr.ID
	w.ProcessedAt = &now
	if err := s.withdrawalRepo.Update(w); err != nil {
		// Transfer went out but we could not record it. Reverse so the next
		// dispatch attempt starts clean; if the reversal also fails the
		// discrepancy is logged for manual reconciliation.
		log.Printf("[Payout] status update failed after transfer %s for %s: %v", tr.ID, w.OrderID, err)
		if revErr := s.provider.ReverseTransfer(ctx, tr.ID); revErr != nil {
			log.Printf("[Payout] ALERT reversal of %s failed, manual reconciliation needed: %v", tr.ID, revErr)
		}
		return err
	}
	s.audit(w.UserID, "withdrawal_completed", w.OrderID)
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifyWithdrawalCompleted(w.UserID, w.AmountCents, w.OrderID)
	}
	return nil
}

// RetryByID re-dispatches a stuck withdrawal (admin action).
func (s *PayoutService) RetryByID(ctx context.Context, withdrawalID uint) (*models.Withdrawal, error) {
	w, err := s.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := s.Dispatch(ctx, w); err != nil {
		return w, err
	}
	return w, nil
}

// fail marks the withdrawal FAILED and returns the reserve to the wallet.
func (s *PayoutService) fail(w *models.Withdrawal, note string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		w.Status = domain.WithdrawalStatusFailed
		if len(note) > 255 {
			note = note[:255]
		}
		w.FailureNote = note
		if err := s.withdrawalRepo.WithTx(tx).Update(w); err != nil {
			return err
		}
		if err := s.ledger.CreditInTx(tx, w.UserID, w.AmountCents, domain.TxTypeWithdrawalRefund, w.OrderID); err != nil {
			return err
		}
		s.audit(w.UserID, "withdrawal_failed", w.OrderID)
		if s.notifSvc != nil {
			_ = s.notifSvc.NotifyWithdrawalFailed(w.UserID, w.AmountCents, w.OrderID)
		}
		return nil
	})
}

func (s *PayoutService) audit(userID uint, action, resourceID string) {
	if s.auditRepo == nil {
		return
	}
	uid := userID
	_ = s.auditRepo.Create(&models.AuditLog{
		UserID:     &uid,
		Action:     action,
		Resource:   "withdrawal",
		ResourceID: resourceID,
	})
}
