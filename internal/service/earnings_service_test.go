package service_test

import (
	"testing"

	"klipz/internal/domain"
	"klipz/internal/models"
	"klipz/internal/repository"
	"klipz/internal/service"
	"klipz/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestComputeEarningsCents(t *testing.T) {
	// 15,000 views at 30 cents per 1000 views pays 450 cents.
	require.Equal(t, int64(450), service.ComputeEarningsCents(15000, 30))
	require.Equal(t, int64(0), service.ComputeEarningsCents(0, 30))
	require.Equal(t, int64(0), service.ComputeEarningsCents(999, 1))
	require.Equal(t, int64(1), service.ComputeEarningsCents(1000, 1))
	require.Equal(t, int64(0), service.ComputeEarningsCents(-5, 30))
}

type earningsFixture struct {
	db          *gorm.DB
	ledger      *service.LedgerService
	campaignSvc *service.CampaignService
	earningsSvc *service.EarningsService
	streamer    *models.User
	clipper     *models.User
}

func newEarningsFixture(t *testing.T) *earningsFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	walletRepo := repository.NewWalletRepository(db)
	ledger := service.NewLedgerService(db, walletRepo)
	campaignRepo := repository.NewCampaignRepository(db)
	f := &earningsFixture{
		db:          db,
		ledger:      ledger,
		campaignSvc: service.NewCampaignService(db, campaignRepo, ledger),
		earningsSvc: service.NewEarningsService(db, repository.NewSubmissionRepository(db), campaignRepo, ledger, nil),
	}
	f.streamer = &models.User{Username: "streamer", Email: "streamer@example.com", Role: domain.RoleStreamer}
	require.NoError(t, db.Create(f.streamer).Error)
	f.clipper = &models.User{Username: "clipper", Email: "clipper@example.com", Role: domain.RoleClipper}
	require.NoError(t, db.Create(f.clipper).Error)
	return f
}

// fundedCampaign creates an ACTIVE campaign funded from the streamer's wallet.
func (f *earningsFixture) fundedCampaign(t *testing.T, cpmRateCents, budgetCents int64) *models.Campaign {
	t.Helper()
	require.NoError(t, f.ledger.Credit(f.streamer.ID, budgetCents, domain.TxTypeDeposit, "seed"))
	c, err := f.campaignSvc.Create(f.streamer.ID, "Best moments", "", cpmRateCents)
	require.NoError(t, err)
	c, err = f.campaignSvc.Fund(f.streamer.ID, c.ID, budgetCents)
	require.NoError(t, err)
	require.Equal(t, domain.CampaignStatusActive, c.Status)
	return c
}

func TestCampaignFundMovesWalletToBudget(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)

	require.Equal(t, int64(10000), c.BudgetCents)
	require.Equal(t, int64(10000), c.RemainingBudgetCents)

	wallet, err := f.ledger.Balance(f.streamer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), wallet.BalanceCents)
}

func TestCampaignFundInsufficientBalance(t *testing.T) {
	f := newEarningsFixture(t)
	c, err := f.campaignSvc.Create(f.streamer.ID, "Best moments", "", 30)
	require.NoError(t, err)

	_, err = f.campaignSvc.Fund(f.streamer.ID, c.ID, 10000)
	require.ErrorIs(t, err, repository.ErrInsufficientBalance)

	got, err := repository.NewCampaignRepository(f.db).GetByID(c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.BudgetCents)
	require.Equal(t, domain.CampaignStatusDraft, got.Status)
}

func TestCampaignFundWrongOwner(t *testing.T) {
	f := newEarningsFixture(t)
	c, err := f.campaignSvc.Create(f.streamer.ID, "Best moments", "", 30)
	require.NoError(t, err)

	_, err = f.campaignSvc.Fund(f.clipper.ID, c.ID, 1000)
	require.ErrorIs(t, err, service.ErrNotCampaignOwner)
}

func TestApproveCreditsClipperAndSpendsBudget(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)

	sub, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/x", "", 15000)
	require.NoError(t, err)
	require.Equal(t, int64(450), sub.EarningsCents)

	approved, err := f.earningsSvc.Approve(sub.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusApproved, approved.Status)
	require.Equal(t, int64(450), approved.PayoutAmountCents)
	require.NotNil(t, approved.PaidAt)

	wallet, err := f.ledger.Balance(f.clipper.ID)
	require.NoError(t, err)
	require.Equal(t, int64(450), wallet.BalanceCents)

	got, err := repository.NewCampaignRepository(f.db).GetByID(c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(9550), got.RemainingBudgetCents)
}

func TestApprovePayoutCappedByRemainingBudget(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 100, 1000)

	// 50,000 views at 100 cents CPM earns 5000 but only 1000 remains.
	sub, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/x", "", 50000)
	require.NoError(t, err)
	require.Equal(t, int64(5000), sub.EarningsCents)

	approved, err := f.earningsSvc.Approve(sub.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), approved.PayoutAmountCents)

	wallet, err := f.ledger.Balance(f.clipper.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), wallet.BalanceCents)

	got, err := repository.NewCampaignRepository(f.db).GetByID(c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.RemainingBudgetCents)
}

func TestApproveTerminalSubmissionDoesNotRepay(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)

	sub, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/x", "", 15000)
	require.NoError(t, err)
	_, err = f.earningsSvc.Approve(sub.ID)
	require.NoError(t, err)

	_, err = f.earningsSvc.Approve(sub.ID)
	require.ErrorIs(t, err, service.ErrSubmissionFinal)

	wallet, err := f.ledger.Balance(f.clipper.ID)
	require.NoError(t, err)
	require.Equal(t, int64(450), wallet.BalanceCents, "second approve must not credit again")
}

func TestSubmitToClosedCampaignRejected(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)
	_, err := f.campaignSvc.SetStatus(f.streamer.ID, c.ID, domain.CampaignStatusPaused)
	require.NoError(t, err)

	_, err = f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/x", "", 100)
	require.ErrorIs(t, err, service.ErrCampaignNotOpen)
}

func TestUpdateMetricsRecomputesEarnings(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)

	sub, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/x", "", 1000)
	require.NoError(t, err)
	require.Equal(t, int64(30), sub.EarningsCents)

	sub, err = f.earningsSvc.UpdateMetrics(sub.ID, 20000)
	require.NoError(t, err)
	require.Equal(t, int64(600), sub.EarningsCents)
}

func TestUpdateMetricsOnApprovedRejected(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)

	sub, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/x", "", 1000)
	require.NoError(t, err)
	_, err = f.earningsSvc.Approve(sub.ID)
	require.NoError(t, err)

	_, err = f.earningsSvc.UpdateMetrics(sub.ID, 99999)
	require.ErrorIs(t, err, service.ErrSubmissionFinal)
}

func TestRefreshPendingAutoApproves(t *testing.T) {
	f := newEarningsFixture(t)
	c := f.fundedCampaign(t, 30, 10000)

	small, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/a", "", 1000)
	require.NoError(t, err)
	big, err := f.earningsSvc.Submit(f.clipper.ID, c.ID, "https://clips.twitch.tv/b", "", 20000)
	require.NoError(t, err)

	f.earningsSvc.RefreshPending(500)

	subRepo := repository.NewSubmissionRepository(f.db)
	got, err := subRepo.GetByID(small.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusPending, got.Status)

	got, err = subRepo.GetByID(big.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusApproved, got.Status)
	require.Equal(t, int64(600), got.PayoutAmountCents)
}
