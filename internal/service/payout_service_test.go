package service_test

import (
	"context"
	"errors"
	"testing"

	"klipz/internal/domain"
	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/internal/service"
	"klipz/internal/testutil"
	"klipz/pkg/payout"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type failingProvider struct {
	*payout.StubProvider
	failTransfer bool
}

func (p *failingProvider) Transfer(ctx context.Context, req payout.TransferRequest) (*payout.Transfer, error) {
	if p.failTransfer {
		return nil, errors.New("provider unavailable")
	}
	return p.StubProvider.Transfer(ctx, req)
}

func newPayoutFixture(t *testing.T, provider payout.Provider) (*gorm.DB, *service.PayoutService, *service.LedgerService) {
	t.Helper()
	db := testutil.NewTestDB(t)
	walletRepo := repository.NewWalletRepository(db)
	ledger := service.NewLedgerService(db, walletRepo)
	svc := service.NewPayoutService(
		db,
		walletRepo,
		repository.NewWithdrawalRepository(db),
		repository.NewUserRepository(db),
		ledger,
		provider,
		nil,
		repository.NewAuditLogRepository(db),
		"usd",
		1000,
	)
	return db, svc, ledger
}

func seedClipper(t *testing.T, db *gorm.DB, ledger *service.LedgerService, balanceCents int64, withAccount bool) *models.User {
	t.Helper()
	u := &models.User{Username: "clipper", Email: "clipper@example.com", Role: domain.RoleClipper}
	if withAccount {
		acct := "acct_test_1"
		u.StripeAccountID = &acct
	}
	require.NoError(t, db.Create(u).Error)
	if balanceCents > 0 {
		require.NoError(t, ledger.Credit(u.ID, balanceCents, domain.TxTypeDeposit, "seed"))
	}
	return u
}

func TestRequestWithdrawalHappyPath(t *testing.T) {
	db, svc, ledger := newPayoutFixture(t, payout.NewStubProvider())
	u := seedClipper(t, db, ledger, 5000, true)

	w, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.NoError(t, err)
	require.Equal(t, domain.WithdrawalStatusCompleted, w.Status)
	require.NotEmpty(t, w.ProviderRef)
	require.NotNil(t, w.ProcessedAt)

	wallet, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3000), wallet.BalanceCents)
}

func TestRequestWithdrawalBelowMinimum(t *testing.T) {
	db, svc, ledger := newPayoutFixture(t, payout.NewStubProvider())
	u := seedClipper(t, db, ledger, 5000, true)

	_, err := svc.RequestWithdrawal(context.Background(), u.ID, 500)
	require.ErrorIs(t, err, service.ErrBelowMinimum)

	wallet, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5000), wallet.BalanceCents)
}

func TestRequestWithdrawalNoPayoutAccount(t *testing.T) {
	db, svc, ledger := newPayoutFixture(t, payout.NewStubProvider())
	u := seedClipper(t, db, ledger, 5000, false)

	_, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.ErrorIs(t, err, service.ErrNoPayoutAccount)
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	db, svc, ledger := newPayoutFixture(t, payout.NewStubProvider())
	u := seedClipper(t, db, ledger, 1500, true)

	_, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	// Failed reserve leaves no withdrawal row behind.
	var count int64
	require.NoError(t, db.Model(&models.Withdrawal{}).Count(&count).Error)
	require.Equal(t, int64(0), count)

	wallet, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1500), wallet.BalanceCents)
}

func TestWithdrawalTransferFailureRefunds(t *testing.T) {
	provider := &failingProvider{StubProvider: payout.NewStubProvider(), failTransfer: true}
	db, svc, ledger := newPayoutFixture(t, provider)
	u := seedClipper(t, db, ledger, 5000, true)

	w, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.Error(t, err)
	require.Equal(t, domain.WithdrawalStatusFailed, w.Status)
	require.NotEmpty(t, w.FailureNote)

	wallet, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5000), wallet.BalanceCents, "reserve must be returned on failure")

	// The ledger keeps both legs: the debit and the refund.
	txns, err := repository.NewWalletRepository(db).ListTransactions(u.ID, 10, 0)
	require.NoError(t, err)
	var debit, refund bool
	for _, tx := range txns {
		switch tx.Type {
		case domain.TxTypeWithdrawal:
			debit = true
		case domain.TxTypeWithdrawalRefund:
			refund = true
		}
	}
	require.True(t, debit)
	require.True(t, refund)
}

func TestDispatchCompletedIsNoop(t *testing.T) {
	db, svc, ledger := newPayoutFixture(t, payout.NewStubProvider())
	u := seedClipper(t, db, ledger, 5000, true)

	w, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.NoError(t, err)
	firstRef := w.ProviderRef

	require.NoError(t, svc.Dispatch(context.Background(), w))
	require.Equal(t, firstRef, w.ProviderRef)

	wallet, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3000), wallet.BalanceCents, "re-dispatch must not debit again")
}

func TestRetryFailedWithdrawalRejected(t *testing.T) {
	provider := &failingProvider{StubProvider: payout.NewStubProvider(), failTransfer: true}
	db, svc, ledger := newPayoutFixture(t, provider)
	u := seedClipper(t, db, ledger, 5000, true)

	w, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.Error(t, err)
	require.Equal(t, domain.WithdrawalStatusFailed, w.Status)

	_, err = svc.RetryByID(context.Background(), w.ID)
	require.ErrorIs(t, err, service.ErrAlreadyFinal)
}

func TestRetryProcessingWithdrawalReusesIdempotencyKey(t *testing.T) {
	provider := payout.NewStubProvider()
	db, svc, ledger := newPayoutFixture(t, provider)
	u := seedClipper(t, db, ledger, 5000, true)

	w, err := svc.RequestWithdrawal(context.Background(), u.ID, 2000)
	require.NoError(t, err)
	firstRef := w.ProviderRef

	// Simulate a crash after the transfer: status stuck at PROCESSING.
	w.Status = domain.WithdrawalStatusProcessing
	require.NoError(t, db.Save(w).Error)

	retried, err := svc.RetryByID(context.Background(), w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.WithdrawalStatusCompleted, retried.Status)
	require.Equal(t, firstRef, retried.ProviderRef, "same order id must map to the same transfer")
}

func TestDirectPayout(t *testing.T) {
	db, svc, ledger := newPayoutFixture(t, payout.NewStubProvider())
	u := seedClipper(t, db, ledger, 5000, true)

	subID := uint(7)
	w, err := svc.DirectPayout(context.Background(), u.ID, 700, &subID)
	require.NoError(t, err)
	require.Equal(t, domain.WithdrawalStatusCompleted, w.Status)
	require.NotNil(t, w.SubmissionID)
	require.Equal(t, subID, *w.SubmissionID)

	wallet, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(4300), wallet.BalanceCents)
}
