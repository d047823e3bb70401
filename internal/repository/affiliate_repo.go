package repository

import (
	"errors"

	"afilia/internal/domain"
	"afilia/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AffiliateRepository persists affiliate rows. Balance mutations are
// expression updates so concurrent approvals and withdrawals cannot lose
// writes or drive the balance negative.
type AffiliateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AffiliateRepository
	Create(a *models.Affiliate) error
	GetByID(id uint) (*models.Affiliate, error)
	GetByEmail(email string) (*models.Affiliate, error)
	GetByReferralCode(code string) (*models.Affiliate, error)
	TransitionStatus(id uint, from, to string) (bool, error)
	List(status string, limit, offset int) ([]models.Affiliate, error)
	ListAll() ([]models.Affiliate, error)
	ListBySponsorID(sponsorID uint) ([]models.Affiliate, error)
	AddBalance(id uint, amount decimal.Decimal) error
	DebitBalance(id uint, amount decimal.Decimal) error
	AddSalesVolume(id uint, amount decimal.Decimal) error
	AddTeamSalesVolume(id uint, amount decimal.Decimal) error
	AddDirectEarnings(id uint, amount decimal.Decimal) error
	AddTeamEarnings(id uint, amount decimal.Decimal) error
	IncrementDirectReferrals(id uint) error
	UpdateDerived(id uint, points int, tierName string, ratePercent decimal.Decimal) error
}

type affiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

func (r *affiliateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *affiliateRepository) WithTx(tx *gorm.DB) AffiliateRepository {
	if tx == nil {
		return r
	}
	return &affiliateRepository{db: tx}
}

func (r *affiliateRepository) Create(a *models.Affiliate) error {
	return r.db.Create(a).Error
}

func (r *affiliateRepository) GetByID(id uint) (*models.Affiliate, error) {
	var a models.Affiliate
	if err := r.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAffiliateNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *affiliateRepository) GetByEmail(email string) (*models.Affiliate, error) {
	var a models.Affiliate
	if err := r.db.Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAffiliateNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *affiliateRepository) GetByReferralCode(code string) (*models.Affiliate, error) {
	var a models.Affiliate
	if err := r.db.Where("referral_code = ?", code).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAffiliateNotFound
		}
		return nil, err
	}
	return &a, nil
}

// TransitionStatus flips the status only while the row still holds from.
// False with no error means another command changed it first.
func (r *affiliateRepository) TransitionStatus(id uint, from, to string) (bool, error) {
	res := r.db.Model(&models.Affiliate{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *affiliateRepository) List(status string, limit, offset int) ([]models.Affiliate, error) {
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Affiliate
	err := q.Find(&list).Error
	return list, err
}

// ListAll loads the full affiliate set for hierarchy traversal. Single
// query so the traversal runs against one consistent snapshot.
func (r *affiliateRepository) ListAll() ([]models.Affiliate, error) {
	var list []models.Affiliate
	err := r.db.Find(&list).Error
	return list, err
}

func (r *affiliateRepository) ListBySponsorID(sponsorID uint) ([]models.Affiliate, error) {
	var list []models.Affiliate
	err := r.db.Where("sponsor_id = ?", sponsorID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *affiliateRepository) AddBalance(id uint, amount decimal.Decimal) error {
	res := r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("available_balance", gorm.Expr("available_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAffiliateNotFound
	}
	return nil
}

// DebitBalance conditionally subtracts amount from available_balance. The
// balance check and the write are a single statement, so two concurrent
// debits can never both pass against the same stale read.
func (r *affiliateRepository) DebitBalance(id uint, amount decimal.Decimal) error {
	res := r.db.Model(&models.Affiliate{}).
		Where("id = ? AND available_balance >= ?", id, amount).
		UpdateColumn("available_balance", gorm.Expr("available_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *affiliateRepository) addToColumn(id uint, column string, amount decimal.Decimal) error {
	return r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", amount)).Error
}

func (r *affiliateRepository) AddSalesVolume(id uint, amount decimal.Decimal) error {
	return r.addToColumn(id, "total_sales_volume", amount)
}

func (r *affiliateRepository) AddTeamSalesVolume(id uint, amount decimal.Decimal) error {
	return r.addToColumn(id, "team_sales_volume", amount)
}

func (r *affiliateRepository) AddDirectEarnings(id uint, amount decimal.Decimal) error {
	return r.addToColumn(id, "total_earnings", amount)
}

func (r *affiliateRepository) AddTeamEarnings(id uint, amount decimal.Decimal) error {
	return r.addToColumn(id, "team_earnings", amount)
}

func (r *affiliateRepository) IncrementDirectReferrals(id uint) error {
	return r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("direct_referrals", gorm.Expr("direct_referrals + 1")).Error
}

// UpdateDerived writes only the classification columns, leaving the
// metric columns to their expression updates.
func (r *affiliateRepository) UpdateDerived(id uint, points int, tierName string, ratePercent decimal.Decimal) error {
	return r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"points":          points,
			"tier":            tierName,
			"commission_rate": ratePercent,
		}).Error
}
