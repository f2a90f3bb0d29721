package service

import (
	"errors"
	"fmt"

	"klipz/internal/domain"
	"klipz/internal/models"
	"klipz/internal/repository"

	"gorm.io/gorm"
)

var ErrNotCampaignOwner = errors.New("campaign belongs to another streamer")

type CampaignService struct {
	db           *gorm.DB
	campaignRepo *repository.CampaignRepository
	ledger       *LedgerService
}

func NewCampaignService(db *gorm.DB, campaignRepo *repository.CampaignRepository, ledger *LedgerService) *CampaignService {
	return &CampaignService{db: db, campaignRepo: campaignRepo, ledger: ledger}
}

func (s *CampaignService) Create(streamerID uint, title, description string, cpmRateCents int64) (*models.Campaign, error) {
	if cpmRateCents <= 0 {
		return nil, fmt.Errorf("cpm rate must be positive")
	}
	c := &models.Campaign{
		StreamerID:   streamerID,
		Title:        title,
		Description:  description,
		CPMRateCents: cpmRateCents,
		Status:       domain.CampaignStatusDraft,
	}
	if err := s.campaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Fund moves money from the streamer's wallet into the campaign budget. Both
// sides commit together; an underfunded wallet rejects with
// ErrInsufficientBalance and no budget change.
func (s *CampaignService) Fund(streamerID, campaignID uint, amountCents int64) (*models.Campaign, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	c, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if c.StreamerID != streamerID {
		return nil, ErrNotCampaignOwner
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ref := fmt.Sprintf("campaign:%d", campaignID)
		if err := s.ledger.DebitInTx(tx, streamerID, amountCents, domain.TxTypeCampaignFunding, ref); err != nil {
			return err
		}
		return s.campaignRepo.WithTx(tx).AddBudget(campaignID, amountCents)
	})
	if err != nil {
		return nil, err
	}
	// First funding activates a draft campaign.
	c, err = s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CampaignStatusDraft {
		c.Status = domain.CampaignStatusActive
		if err := s.campaignRepo.Update(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *CampaignService) SetStatus(streamerID, campaignID uint, status string) (*models.Campaign, error) {
	switch status {
	case domain.CampaignStatusActive, domain.CampaignStatusPaused, domain.CampaignStatusClosed:
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}
	c, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if c.StreamerID != streamerID {
		return nil, ErrNotCampaignOwner
	}
	c.Status = status
	if err := s.campaignRepo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}
