package repository

import (
	"errors"
	"time"

	"afilia/internal/domain"
	"afilia/internal/models"

	"gorm.io/gorm"
)

// WithdrawalRepository persists withdrawal requests. As with commissions,
// status flips carry the expected current status in the WHERE clause so
// concurrent duplicate commands cannot both succeed.
type WithdrawalRepository interface {
	WithTx(tx *gorm.DB) WithdrawalRepository
	Create(w *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByReference(ref string) (*models.WithdrawalRequest, error)
	ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.WithdrawalRequest, error)
	ListByStatus(status string, limit, offset int) ([]models.WithdrawalRequest, error)
	MarkCompleted(id uint, at time.Time) (bool, error)
	MarkRejected(id uint) (bool, error)
}

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	if tx == nil {
		return r
	}
	return &withdrawalRepository{db: tx}
}

func (r *withdrawalRepository) Create(w *models.WithdrawalRequest) error {
	return r.db.Create(w).Error
}

func (r *withdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepository) GetByReference(ref string) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.db.Where("reference = ?", ref).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepository) ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *withdrawalRepository) ListByStatus(status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *withdrawalRepository) transition(id uint, from string, cols map[string]interface{}) (bool, error) {
	res := r.db.Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *withdrawalRepository) MarkCompleted(id uint, at time.Time) (bool, error) {
	return r.transition(id, domain.WithdrawalStatusPending, map[string]interface{}{
		"status":       domain.WithdrawalStatusCompleted,
		"completed_at": at,
		"updated_at":   at,
	})
}

func (r *withdrawalRepository) MarkRejected(id uint) (bool, error) {
	return r.transition(id, domain.WithdrawalStatusPending, map[string]interface{}{
		"status":     domain.WithdrawalStatusRejected,
		"updated_at": time.Now(),
	})
}
