package repository_test

import (
	"sync"
	"testing"

	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestWalletCreditConcurrent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewWalletRepository(db)

	_, err := repo.GetOrCreate(1)
	require.NoError(t, err)

	const workers = 20
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			errs <- repo.Credit(1, 100)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	require.Equal(t, int64(workers*100), w.BalanceCents)
}

func TestWalletDebitInsufficient(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewWalletRepository(db)

	require.NoError(t, repo.Credit(1, 500))

	err := repo.Debit(1, 600)
	require.ErrorIs(t, err, repository.ErrInsufficientBalance)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	require.Equal(t, int64(500), w.BalanceCents, "failed debit must not change the balance")
}

func TestWalletDebitMissingWallet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewWalletRepository(db)

	err := repo.Debit(42, 100)
	require.ErrorIs(t, err, repository.ErrInsufficientBalance)
}

func TestWalletDebitExactBalance(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewWalletRepository(db)

	require.NoError(t, repo.Credit(1, 300))
	require.NoError(t, repo.Debit(1, 300))

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	require.Equal(t, int64(0), w.BalanceCents)
}

func TestWebhookEventMarkProcessedOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewWebhookEventRepository(db)

	first, err := repo.MarkProcessed("evt_1", "payment_intent.succeeded")
	require.NoError(t, err)
	require.True(t, first)

	again, err := repo.MarkProcessed("evt_1", "payment_intent.succeeded")
	require.NoError(t, err)
	require.False(t, again)

	var count int64
	require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
