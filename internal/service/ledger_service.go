package service

import (
	"klipz/internal/models"
	"klipz/internal/repository"

	"gorm.io/gorm"
)

// LedgerService is the only writer of wallet balances. Every mutation pairs
// the guarded balance UPDATE with a wallet_transactions row in one DB
// transaction, so the history always matches the balance.
type LedgerService struct {
	db         *gorm.DB
	walletRepo *repository.WalletRepository
}

func NewLedgerService(db *gorm.DB, walletRepo *repository.WalletRepository) *LedgerService {
	return &LedgerService{db: db, walletRepo: walletRepo}
}

func (s *LedgerService) Credit(userID uint, amountCents int64, txType, reference string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.CreditInTx(tx, userID, amountCents, txType, reference)
	})
}

func (s *LedgerService) Debit(userID uint, amountCents int64, txType, reference string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DebitInTx(tx, userID, amountCents, txType, reference)
	})
}

// CreditInTx composes a credit into a caller-owned transaction (webhook
// processing, campaign funding).
func (s *LedgerService) CreditInTx(tx *gorm.DB, userID uint, amountCents int64, txType, reference string) error {
	wr := s.walletRepo.WithTx(tx)
	if err := wr.Credit(userID, amountCents); err != nil {
		return err
	}
	w, err := wr.GetByUserID(userID)
	if err != nil {
		return err
	}
	return wr.CreateTransaction(&models.WalletTransaction{
		UserID:            userID,
		AmountCents:       amountCents,
		Type:              txType,
		Reference:         reference,
		BalanceAfterCents: w.BalanceCents,
	})
}

// DebitInTx composes a debit into a caller-owned transaction. Returns
// repository.ErrInsufficientBalance without touching anything when the balance
// cannot cover the amount.
func (s *LedgerService) DebitInTx(tx *gorm.DB, userID uint, amountCents int64, txType, reference string) error {
	wr := s.walletRepo.WithTx(tx)
	if err := wr.Debit(userID, amountCents); err != nil {
		return err
	}
	w, err := wr.GetByUserID(userID)
	if err != nil {
		return err
	}
	return wr.CreateTransaction(&models.WalletTransaction{
		UserID:            userID,
		AmountCents:       -amountCents,
		Type:              txType,
		Reference:         reference,
		BalanceAfterCents: w.BalanceCents,
	})
}

// Balance reads the authoritative balance, creating the wallet on first touch.
func (s *LedgerService) Balance(userID uint) (*models.Wallet, error) {
	return s.walletRepo.GetOrCreate(userID)
}
