package service

import (
	"errors"

	"afilia/internal/domain"
	"afilia/internal/hierarchy"
	"afilia/internal/models"
	"afilia/internal/repository"
	"afilia/internal/tier"
	"afilia/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sale is the inbound event fired once per completed, paid order.
type Sale struct {
	OrderID    string
	OrderTotal decimal.Decimal
	SellerID   uint
}

// CommissionService distributes commission across the seller's upline when
// a qualifying sale occurs. Distribution for one order is atomic: either
// every eligible record is created or none are.
type CommissionService struct {
	affiliates  repository.AffiliateRepository
	commissions repository.CommissionRepository
	log         *zap.Logger
}

func NewCommissionService(
	affiliates repository.AffiliateRepository,
	commissions repository.CommissionRepository,
	log *zap.Logger,
) *CommissionService {
	return &CommissionService{affiliates: affiliates, commissions: commissions, log: log}
}

// Distribute emits one pending CommissionRecord per eligible level for the
// given sale. The seller earns at level 0 at its tier's direct rate; each
// approved upline member within MaxCommissionDepth earns at that level's
// override rate. Non-approved upline members are skipped but still consume
// their level slot. Re-invoking for an already-distributed order is a
// no-op returning the existing records.
func (s *CommissionService) Distribute(sale Sale) ([]models.CommissionRecord, error) {
	if sale.OrderTotal.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if sale.OrderTotal.IsZero() {
		return nil, nil
	}

	existing, err := s.commissions.ListByOrderID(sale.OrderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.log.Info("order already distributed",
			zap.String("order_id", sale.OrderID),
			zap.Int("records", len(existing)))
		return existing, nil
	}

	all, err := s.affiliates.ListAll()
	if err != nil {
		return nil, err
	}
	set := hierarchy.NewSet(all)
	seller := set.Get(sale.SellerID)
	if seller == nil {
		return nil, domain.ErrAffiliateNotFound
	}
	if seller.Status != domain.AffiliateStatusApproved {
		return nil, domain.ErrAffiliateNotApproved
	}

	upline, err := set.UplineOf(seller.ID)
	if err != nil {
		s.log.Error("upline traversal failed, no commission emitted",
			zap.String("order_id", sale.OrderID),
			zap.Uint("seller_id", seller.ID),
			zap.Error(err))
		return nil, err
	}

	records, err := s.buildRecords(sale, seller, upline)
	if err != nil {
		return nil, err
	}

	err = s.affiliates.Transaction(func(tx *gorm.DB) error {
		affTx := s.affiliates.WithTx(tx)
		comTx := s.commissions.WithTx(tx)

		if err := comTx.CreateBatch(records); err != nil {
			return err
		}
		if err := s.creditSalesVolume(affTx, seller.ID, sale.OrderTotal, false); err != nil {
			return err
		}
		for _, rec := range records {
			if rec.Level == 0 {
				continue
			}
			if err := s.creditSalesVolume(affTx, rec.AffiliateID, sale.OrderTotal, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent delivery of the same order may commit between our
		// precheck and CreateBatch; the unique index turns the loser into
		// the same no-op as a plain redelivery.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, lerr := s.commissions.ListByOrderID(sale.OrderID)
			if lerr == nil && len(existing) > 0 {
				s.log.Info("order already distributed",
					zap.String("order_id", sale.OrderID),
					zap.Int("records", len(existing)))
				return existing, nil
			}
		}
		return nil, err
	}

	s.log.Info("sale distributed",
		zap.String("order_id", sale.OrderID),
		zap.Uint("seller_id", seller.ID),
		zap.Int("records", len(records)))
	return records, nil
}

func (s *CommissionService) buildRecords(sale Sale, seller *models.Affiliate, upline []*models.Affiliate) ([]models.CommissionRecord, error) {
	cls := tier.Classify(seller.DirectReferrals, seller.TotalSalesVolume, seller.Points)
	records := []models.CommissionRecord{{
		OrderID:     sale.OrderID,
		AffiliateID: seller.ID,
		Level:       0,
		Type:        domain.CommissionTypeForLevel[0],
		OrderTotal:  sale.OrderTotal,
		Rate:        cls.RatePercent,
		Amount:      money.Percent(sale.OrderTotal, cls.RatePercent),
		Status:      domain.CommissionStatusPending,
	}}

	for level := 1; level <= domain.MaxCommissionDepth && level <= len(upline); level++ {
		ancestor := upline[level-1]
		if ancestor.Status != domain.AffiliateStatusApproved {
			continue // slot stays consumed, next ancestor keeps its own depth
		}
		rate := domain.LevelOverrideRates[level]
		records = append(records, models.CommissionRecord{
			OrderID:     sale.OrderID,
			AffiliateID: ancestor.ID,
			Level:       level,
			Type:        domain.CommissionTypeForLevel[level],
			OrderTotal:  sale.OrderTotal,
			Rate:        rate,
			Amount:      money.Percent(sale.OrderTotal, rate),
			Status:      domain.CommissionStatusPending,
		})
	}

	sum := decimal.Zero
	for _, rec := range records {
		sum = sum.Add(rec.Amount)
	}
	if sum.GreaterThan(sale.OrderTotal) {
		return nil, domain.ErrCommissionOverflow
	}
	return records, nil
}

// creditSalesVolume bumps the volume metric and refreshes the derived
// tier columns from the post-update row.
func (s *CommissionService) creditSalesVolume(affTx repository.AffiliateRepository, id uint, amount decimal.Decimal, team bool) error {
	var err error
	if team {
		err = affTx.AddTeamSalesVolume(id, amount)
	} else {
		err = affTx.AddSalesVolume(id, amount)
	}
	if err != nil {
		return err
	}
	return refreshDerived(affTx, id)
}

// refreshDerived recomputes points, tier and direct rate from an
// affiliate's current metrics and persists only those columns.
func refreshDerived(affTx repository.AffiliateRepository, id uint) error {
	a, err := affTx.GetByID(id)
	if err != nil {
		return err
	}
	points := tier.Points(a.TotalSalesVolume, a.TeamSalesVolume)
	cls := tier.Classify(a.DirectReferrals, a.TotalSalesVolume, points)
	return affTx.UpdateDerived(id, points, cls.Tier, cls.RatePercent)
}
