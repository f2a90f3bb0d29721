package repository

import (
	"klipz/internal/domain"
	"klipz/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) WithTx(tx *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: tx}
}

func (r *CampaignRepository) Create(c *models.Campaign) error {
	return r.db.Create(c).Error
}

func (r *CampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	var c models.Campaign
	err := r.db.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) Update(c *models.Campaign) error {
	return r.db.Save(c).Error
}

func (r *CampaignRepository) ListByStreamer(streamerID uint) ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Where("streamer_id = ?", streamerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *CampaignRepository) ListActive(limit, offset int) ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Where("status = ?", domain.CampaignStatusActive).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// AddBudget atomically increases both total and remaining budget.
func (r *CampaignRepository) AddBudget(campaignID uint, amountCents int64) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", campaignID).
		Updates(map[string]interface{}{
			"budget_cents":           gorm.Expr("budget_cents + ?", amountCents),
			"remaining_budget_cents": gorm.Expr("remaining_budget_cents + ?", amountCents),
		}).Error
}

// SpendBudget atomically decreases the remaining budget, guarded so it can
// never go negative. Returns false when the budget could not cover the amount.
func (r *CampaignRepository) SpendBudget(campaignID uint, amountCents int64) (bool, error) {
	res := r.db.Model(&models.Campaign{}).
		Where("id = ? AND remaining_budget_cents >= ?", campaignID, amountCents).
		Update("remaining_budget_cents", gorm.Expr("remaining_budget_cents - ?", amountCents))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
