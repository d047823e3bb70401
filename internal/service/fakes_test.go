package service

import (
	"fmt"
	"time"

	"afilia/internal/domain"
	"afilia/internal/models"
	"afilia/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes. Transaction runs the callback directly and
// WithTx returns the fake itself, so service logic can be exercised
// without a database. Reads hand out copies the way a real query would.

type fakeAffiliateRepo struct {
	rows   map[uint]*models.Affiliate
	nextID uint
}

func newFakeAffiliateRepo() *fakeAffiliateRepo {
	return &fakeAffiliateRepo{rows: make(map[uint]*models.Affiliate), nextID: 1}
}

func (f *fakeAffiliateRepo) seed(a models.Affiliate) *models.Affiliate {
	if a.ID == 0 {
		a.ID = f.nextID
	}
	if a.ID >= f.nextID {
		f.nextID = a.ID + 1
	}
	f.rows[a.ID] = &a
	return &a
}

func (f *fakeAffiliateRepo) Transaction(fn func(tx *gorm.DB) error) error { return fn(nil) }

func (f *fakeAffiliateRepo) WithTx(tx *gorm.DB) repository.AffiliateRepository { return f }

func (f *fakeAffiliateRepo) Create(a *models.Affiliate) error {
	for _, row := range f.rows {
		if row.Email == a.Email {
			return fmt.Errorf("duplicate email %s", a.Email)
		}
		if row.ReferralCode == a.ReferralCode {
			return fmt.Errorf("duplicate referral code %s", a.ReferralCode)
		}
	}
	a.ID = f.nextID
	f.nextID++
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAffiliateRepo) GetByID(id uint) (*models.Affiliate, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrAffiliateNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeAffiliateRepo) GetByEmail(email string) (*models.Affiliate, error) {
	for _, row := range f.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrAffiliateNotFound
}

func (f *fakeAffiliateRepo) GetByReferralCode(code string) (*models.Affiliate, error) {
	for _, row := range f.rows {
		if row.ReferralCode == code {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrAffiliateNotFound
}

func (f *fakeAffiliateRepo) TransitionStatus(id uint, from, to string) (bool, error) {
	row, ok := f.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	return true, nil
}

func (f *fakeAffiliateRepo) List(status string, limit, offset int) ([]models.Affiliate, error) {
	var out []models.Affiliate
	for _, row := range f.rows {
		if status == "" || row.Status == status {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAffiliateRepo) ListAll() ([]models.Affiliate, error) {
	out := make([]models.Affiliate, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeAffiliateRepo) ListBySponsorID(sponsorID uint) ([]models.Affiliate, error) {
	var out []models.Affiliate
	for _, row := range f.rows {
		if row.SponsorID != nil && *row.SponsorID == sponsorID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAffiliateRepo) AddBalance(id uint, amount decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.AvailableBalance = row.AvailableBalance.Add(amount)
	return nil
}

func (f *fakeAffiliateRepo) DebitBalance(id uint, amount decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	if row.AvailableBalance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	row.AvailableBalance = row.AvailableBalance.Sub(amount)
	return nil
}

func (f *fakeAffiliateRepo) AddSalesVolume(id uint, amount decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.TotalSalesVolume = row.TotalSalesVolume.Add(amount)
	return nil
}

func (f *fakeAffiliateRepo) AddTeamSalesVolume(id uint, amount decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.TeamSalesVolume = row.TeamSalesVolume.Add(amount)
	return nil
}

func (f *fakeAffiliateRepo) AddDirectEarnings(id uint, amount decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.TotalEarnings = row.TotalEarnings.Add(amount)
	return nil
}

func (f *fakeAffiliateRepo) AddTeamEarnings(id uint, amount decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.TeamEarnings = row.TeamEarnings.Add(amount)
	return nil
}

func (f *fakeAffiliateRepo) IncrementDirectReferrals(id uint) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.DirectReferrals++
	return nil
}

func (f *fakeAffiliateRepo) UpdateDerived(id uint, points int, tierName string, ratePercent decimal.Decimal) error {
	row, ok := f.rows[id]
	if !ok {
		return domain.ErrAffiliateNotFound
	}
	row.Points = points
	row.Tier = tierName
	row.CommissionRate = ratePercent
	return nil
}

type fakeCommissionRepo struct {
	rows   []models.CommissionRecord
	nextID uint
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{nextID: 1}
}

func (f *fakeCommissionRepo) WithTx(tx *gorm.DB) repository.CommissionRepository { return f }

func (f *fakeCommissionRepo) CreateBatch(records []models.CommissionRecord) error {
	for i := range records {
		for _, row := range f.rows {
			if row.OrderID == records[i].OrderID &&
				row.AffiliateID == records[i].AffiliateID &&
				row.Level == records[i].Level {
				return fmt.Errorf("order %s: %w", records[i].OrderID, gorm.ErrDuplicatedKey)
			}
		}
		records[i].ID = f.nextID
		f.nextID++
		f.rows = append(f.rows, records[i])
	}
	return nil
}

func (f *fakeCommissionRepo) GetByID(id uint) (*models.CommissionRecord, error) {
	for _, row := range f.rows {
		if row.ID == id {
			cp := row
			return &cp, nil
		}
	}
	return nil, domain.ErrCommissionNotFound
}

func (f *fakeCommissionRepo) ListByOrderID(orderID string) ([]models.CommissionRecord, error) {
	var out []models.CommissionRecord
	for _, row := range f.rows {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeCommissionRepo) ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.CommissionRecord, error) {
	var out []models.CommissionRecord
	for _, row := range f.rows {
		if row.AffiliateID == affiliateID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeCommissionRepo) ListByStatus(status string, limit, offset int) ([]models.CommissionRecord, error) {
	var out []models.CommissionRecord
	for _, row := range f.rows {
		if row.Status == status {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeCommissionRepo) transition(id uint, from string, flip func(*models.CommissionRecord)) (bool, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].Status == from {
			flip(&f.rows[i])
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCommissionRepo) MarkApproved(id uint, at time.Time) (bool, error) {
	return f.transition(id, domain.CommissionStatusPending, func(rec *models.CommissionRecord) {
		rec.Status = domain.CommissionStatusApproved
		rec.ApprovedAt = &at
	})
}

func (f *fakeCommissionRepo) MarkPaid(id uint, at time.Time) (bool, error) {
	return f.transition(id, domain.CommissionStatusApproved, func(rec *models.CommissionRecord) {
		rec.Status = domain.CommissionStatusPaid
		rec.PaidAt = &at
	})
}

func (f *fakeCommissionRepo) MarkRejected(id uint) (bool, error) {
	return f.transition(id, domain.CommissionStatusPending, func(rec *models.CommissionRecord) {
		rec.Status = domain.CommissionStatusRejected
	})
}

type fakeWithdrawalRepo struct {
	rows   []models.WithdrawalRequest
	nextID uint
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{nextID: 1}
}

func (f *fakeWithdrawalRepo) WithTx(tx *gorm.DB) repository.WithdrawalRepository { return f }

func (f *fakeWithdrawalRepo) Create(w *models.WithdrawalRequest) error {
	w.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, *w)
	return nil
}

func (f *fakeWithdrawalRepo) GetByID(id uint) (*models.WithdrawalRequest, error) {
	for _, row := range f.rows {
		if row.ID == id {
			cp := row
			return &cp, nil
		}
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (f *fakeWithdrawalRepo) GetByReference(ref string) (*models.WithdrawalRequest, error) {
	for _, row := range f.rows {
		if row.Reference == ref {
			cp := row
			return &cp, nil
		}
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (f *fakeWithdrawalRepo) ListByAffiliateID(affiliateID uint, limit, offset int) ([]models.WithdrawalRequest, error) {
	var out []models.WithdrawalRequest
	for _, row := range f.rows {
		if row.AffiliateID == affiliateID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeWithdrawalRepo) ListByStatus(status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	var out []models.WithdrawalRequest
	for _, row := range f.rows {
		if row.Status == status {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeWithdrawalRepo) transition(id uint, flip func(*models.WithdrawalRequest)) (bool, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].Status == domain.WithdrawalStatusPending {
			flip(&f.rows[i])
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWithdrawalRepo) MarkCompleted(id uint, at time.Time) (bool, error) {
	return f.transition(id, func(w *models.WithdrawalRequest) {
		w.Status = domain.WithdrawalStatusCompleted
		w.CompletedAt = &at
	})
}

func (f *fakeWithdrawalRepo) MarkRejected(id uint) (bool, error) {
	return f.transition(id, func(w *models.WithdrawalRequest) {
		w.Status = domain.WithdrawalStatusRejected
	})
}
