package repository

import (
	"klipz/internal/domain"
	"klipz/internal/models"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: tx}
}

func (r *SubmissionRepository) Create(s *models.Submission) error {
	return r.db.Create(s).Error
}

func (r *SubmissionRepository) GetByID(id uint) (*models.Submission, error) {
	var s models.Submission
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) Update(s *models.Submission) error {
	return r.db.Save(s).Error
}

func (r *SubmissionRepository) ListByClipper(clipperID uint, limit, offset int) ([]models.Submission, error) {
	var list []models.Submission
	err := r.db.Where("clipper_id = ?", clipperID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) ListByCampaign(campaignID uint, limit, offset int) ([]models.Submission, error) {
	var list []models.Submission
	err := r.db.Where("campaign_id = ?", campaignID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) ListPending(limit int) ([]models.Submission, error) {
	var list []models.Submission
	err := r.db.Where("status = ?", domain.SubmissionStatusPending).Order("id").Limit(limit).Find(&list).Error
	return list, err
}
