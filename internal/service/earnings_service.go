package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"klipz/internal/domain"
	"klipz/internal/models"
	"klipz/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrSubmissionFinal   = errors.New("submission already approved or rejected")
	ErrCampaignNotOpen   = errors.New("campaign is not accepting submissions")
	ErrCampaignExhausted = errors.New("campaign budget exhausted")
)

// ComputeEarningsCents derives a submission's earnings from its view count
// and the campaign CPM (cents per 1000 views). Integer math throughout; the
// sub-cent remainder is truncated.
func ComputeEarningsCents(views, cpmRateCents int64) int64 {
	if views <= 0 || cpmRateCents <= 0 {
		return 0
	}
	return views * cpmRateCents / 1000
}

// EarningsService owns the submission lifecycle: insert-time earnings,
// metrics-driven recomputation, and the approval payout from the campaign
// budget into the clipper's wallet.
type EarningsService struct {
	db             *gorm.DB
	submissionRepo *repository.SubmissionRepository
	campaignRepo   *repository.CampaignRepository
	ledger         *LedgerService
	notifSvc       *NotificationService
}

func NewEarningsService(
	db *gorm.DB,
	submissionRepo *repository.SubmissionRepository,
	campaignRepo *repository.CampaignRepository,
	ledger *LedgerService,
	notifSvc *NotificationService,
) *EarningsService {
	return &EarningsService{
		db:             db,
		submissionRepo: submissionRepo,
		campaignRepo:   campaignRepo,
		ledger:         ledger,
		notifSvc:       notifSvc,
	}
}

func (s *EarningsService) Submit(clipperID, campaignID uint, clipURL, thumbnailURL string, views int64) (*models.Submission, error) {
	c, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if !c.AcceptsSubmissions() {
		return nil, ErrCampaignNotOpen
	}
	sub := &models.Submission{
		CampaignID:    campaignID,
		ClipperID:     clipperID,
		ClipURL:       clipURL,
		ThumbnailURL:  thumbnailURL,
		Views:         views,
		EarningsCents: ComputeEarningsCents(views, c.CPMRateCents),
		Status:        domain.SubmissionStatusPending,
	}
	if err := s.submissionRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateMetrics sets the view count and recomputes earnings. Approved and
// rejected submissions are left alone; their payout is already settled.
func (s *EarningsService) UpdateMetrics(submissionID uint, views int64) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubmissionStatusPending {
		return nil, ErrSubmissionFinal
	}
	c, err := s.campaignRepo.GetByID(sub.CampaignID)
	if err != nil {
		return nil, err
	}
	sub.Views = views
	sub.EarningsCents = ComputeEarningsCents(views, c.CPMRateCents)
	if err := s.submissionRepo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Approve pays the clipper from the campaign budget. The budget spend, the
// wallet credit and the status flip all commit together; the payout is capped
// at the campaign's remaining budget. Terminal submissions never re-pay.
func (s *EarningsService) Approve(submissionID uint) (*models.Submission, error) {
	var sub *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sr := s.submissionRepo.WithTx(tx)
		cr := s.campaignRepo.WithTx(tx)
		var err error
		sub, err = sr.GetByID(submissionID)
		if err != nil {
			return err
		}
		if sub.Status != domain.SubmissionStatusPending {
			return ErrSubmissionFinal
		}
		c, err := cr.GetByID(sub.CampaignID)
		if err != nil {
			return err
		}
		payout := sub.EarningsCents
		if payout > c.RemainingBudgetCents {
			payout = c.RemainingBudgetCents
		}
		if payout <= 0 {
			return ErrCampaignExhausted
		}
		ok, err := cr.SpendBudget(c.ID, payout)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCampaignExhausted
		}
		ref := submissionRef(sub.ID)
		if err := s.ledger.CreditInTx(tx, sub.ClipperID, payout, domain.TxTypeEarning, ref); err != nil {
			return err
		}
		now := time.Now()
		sub.Status = domain.SubmissionStatusApproved
		sub.PayoutAmountCents = payout
		sub.PaidAt = &now
		return sr.Update(sub)
	})
	if err != nil {
		return nil, err
	}
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifySubmissionApproved(sub.ClipperID, sub.ID, sub.PayoutAmountCents)
	}
	return sub, nil
}

func (s *EarningsService) Reject(submissionID uint) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubmissionStatusPending {
		return nil, ErrSubmissionFinal
	}
	sub.Status = domain.SubmissionStatusRejected
	if err := s.submissionRepo.Update(sub); err != nil {
		return nil, err
	}
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifySubmissionRejected(sub.ClipperID, sub.ID)
	}
	return sub, nil
}

// RefreshPending recomputes earnings for pending submissions against current
// campaign CPM rates, and auto-approves any whose earnings have crossed the
// threshold (0 disables auto-approval). Run from the cron job.
func (s *EarningsService) RefreshPending(autoApproveCents int64) {
	subs, err := s.submissionRepo.ListPending(500)
	if err != nil {
		log.Printf("[Earnings refresh] list pending failed: %v", err)
		return
	}
	for i := range subs {
		sub := &subs[i]
		c, err := s.campaignRepo.GetByID(sub.CampaignID)
		if err != nil {
			log.Printf("[Earnings refresh] campaign %d lookup failed: %v", sub.CampaignID, err)
			continue
		}
		recomputed := ComputeEarningsCents(sub.Views, c.CPMRateCents)
		if recomputed != sub.EarningsCents {
			sub.EarningsCents = recomputed
			if err := s.submissionRepo.Update(sub); err != nil {
				log.Printf("[Earnings refresh] submission %d update failed: %v", sub.ID, err)
				continue
			}
		}
		if autoApproveCents > 0 && sub.EarningsCents >= autoApproveCents {
			if _, err := s.Approve(sub.ID); err != nil {
				log.Printf("[Earnings refresh] auto-approve of submission %d failed: %v", sub.ID, err)
			}
		}
	}
}

func submissionRef(id uint) string {
	return fmt.Sprintf("submission:%d", id)
}
