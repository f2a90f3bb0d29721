package service_test

import (
	"testing"

	"klipz/internal/domain"
	"klipz/internal/repository"
	"klipz/internal/service"
	"klipz/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDepositFixture(t *testing.T) (*gorm.DB, *service.DepositService, *service.LedgerService) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ledger := service.NewLedgerService(db, repository.NewWalletRepository(db))
	svc := service.NewDepositService(db, repository.NewWebhookEventRepository(db), repository.NewDepositRepository(db), ledger)
	return db, svc, ledger
}

func TestHandlePaymentSucceededCreditsOnce(t *testing.T) {
	_, svc, ledger := newDepositFixture(t)

	credited, err := svc.HandlePaymentSucceeded("evt_1", "payment_intent.succeeded", "pi_1", 1, 5000)
	require.NoError(t, err)
	require.True(t, credited)

	// Stripe redelivers the same event.
	credited, err = svc.HandlePaymentSucceeded("evt_1", "payment_intent.succeeded", "pi_1", 1, 5000)
	require.NoError(t, err)
	require.False(t, credited)

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(5000), wallet.BalanceCents, "duplicate delivery must not credit twice")
}

func TestHandlePaymentSucceededCompletesPendingDeposit(t *testing.T) {
	db, svc, _ := newDepositFixture(t)

	d, err := svc.RecordPendingDeposit(1, 5000, "usd", "pi_1")
	require.NoError(t, err)
	require.Equal(t, domain.DepositStatusPending, d.Status)

	_, err = svc.HandlePaymentSucceeded("evt_1", "payment_intent.succeeded", "pi_1", 1, 5000)
	require.NoError(t, err)

	got, err := repository.NewDepositRepository(db).GetByProviderRef("pi_1")
	require.NoError(t, err)
	require.Equal(t, domain.DepositStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestHandlePaymentSucceededWithoutDepositRow(t *testing.T) {
	_, svc, ledger := newDepositFixture(t)

	// Intent created outside our API still credits by metadata.
	credited, err := svc.HandlePaymentSucceeded("evt_2", "checkout.session.completed", "pi_other", 3, 1200)
	require.NoError(t, err)
	require.True(t, credited)

	wallet, err := ledger.Balance(3)
	require.NoError(t, err)
	require.Equal(t, int64(1200), wallet.BalanceCents)
}

func TestHandlePaymentFailedMarksDeposit(t *testing.T) {
	db, svc, ledger := newDepositFixture(t)

	_, err := svc.RecordPendingDeposit(1, 5000, "usd", "pi_1")
	require.NoError(t, err)

	require.NoError(t, svc.HandlePaymentFailed("evt_1", "payment_intent.payment_failed", "pi_1"))

	got, err := repository.NewDepositRepository(db).GetByProviderRef("pi_1")
	require.NoError(t, err)
	require.Equal(t, domain.DepositStatusFailed, got.Status)

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(0), wallet.BalanceCents, "failed payment must not credit")
}
