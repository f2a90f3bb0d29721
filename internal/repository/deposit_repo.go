package repository

import (
	"klipz/internal/models"

	"gorm.io/gorm"
)

type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) WithTx(tx *gorm.DB) *DepositRepository {
	return &DepositRepository{db: tx}
}

func (r *DepositRepository) Create(d *models.Deposit) error {
	return r.db.Create(d).Error
}

func (r *DepositRepository) GetByProviderRef(ref string) (*models.Deposit, error) {
	var d models.Deposit
	err := r.db.Where("provider_ref = ?", ref).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepositRepository) Update(d *models.Deposit) error {
	return r.db.Save(d).Error
}

func (r *DepositRepository) ListByUser(userID uint, limit, offset int) ([]models.Deposit, error) {
	var list []models.Deposit
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
