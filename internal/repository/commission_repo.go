package repository

import (
	"errors"
	"time"

	"afilia/internal/domain"
	"afilia/internal/models"

	"gorm.io/gorm"
)

// CommissionRepository persists commission records. Status flips are
// conditional single-statement updates: the expected current status sits
// in the WHERE clause, so of two concurrent commands only one can win.
type CommissionRepository interface {
	WithTx(tx *gorm.DB) CommissionRepository
	CreateBatch(records []models.CommissionRecord) error
	GetByID(id uint) (*models.CommissionRecord, error)
	ListByOrderID(orderID string) ([]models.CommissionRecord, error)
	ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.CommissionRecord, error)
	ListByStatus(status string, limit, offset int) ([]models.CommissionRecord, error)
	MarkApproved(id uint, at time.Time) (bool, error)
	MarkPaid(id uint, at time.Time) (bool, error)
	MarkRejected(id uint) (bool, error)
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &commissionRepository{db: tx}
}

func (r *commissionRepository) CreateBatch(records []models.CommissionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

func (r *commissionRepository) GetByID(id uint) (*models.CommissionRecord, error) {
	var rec models.CommissionRecord
	if err := r.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommissionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *commissionRepository) ListByOrderID(orderID string) ([]models.CommissionRecord, error) {
	var list []models.CommissionRecord
	err := r.db.Where("order_id = ?", orderID).Order("level ASC").Find(&list).Error
	return list, err
}

func (r *commissionRepository) ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.CommissionRecord, error) {
	var list []models.CommissionRecord
	err := r.db.Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *commissionRepository) ListByStatus(status string, limit, offset int) ([]models.CommissionRecord, error) {
	var list []models.CommissionRecord
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *commissionRepository) transition(id uint, from string, cols map[string]interface{}) (bool, error) {
	res := r.db.Model(&models.CommissionRecord{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *commissionRepository) MarkApproved(id uint, at time.Time) (bool, error) {
	return r.transition(id, domain.CommissionStatusPending, map[string]interface{}{
		"status":      domain.CommissionStatusApproved,
		"approved_at": at,
		"updated_at":  at,
	})
}

func (r *commissionRepository) MarkPaid(id uint, at time.Time) (bool, error) {
	return r.transition(id, domain.CommissionStatusApproved, map[string]interface{}{
		"status":     domain.CommissionStatusPaid,
		"paid_at":    at,
		"updated_at": at,
	})
}

func (r *commissionRepository) MarkRejected(id uint) (bool, error) {
	return r.transition(id, domain.CommissionStatusPending, map[string]interface{}{
		"status":     domain.CommissionStatusRejected,
		"updated_at": time.Now(),
	})
}
