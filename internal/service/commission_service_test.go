package service

import (
	"testing"

	"afilia/internal/domain"
	"afilia/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func uintPtr(v uint) *uint { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}

// Three approved affiliates chained C <- B <- A, with A the seller.
func seedChain(affs *fakeAffiliateRepo) (c, b, a *models.Affiliate) {
	c = affs.seed(models.Affiliate{
		ID: 1, Name: "Carla", Email: "carla@example.com", ReferralCode: "c0de0001",
		Status: domain.AffiliateStatusApproved, Tier: domain.TierBronze,
	})
	b = affs.seed(models.Affiliate{
		ID: 2, Name: "Bruno", Email: "bruno@example.com", ReferralCode: "c0de0002",
		SponsorID: uintPtr(c.ID),
		Status:    domain.AffiliateStatusApproved, Tier: domain.TierBronze,
	})
	a = affs.seed(models.Affiliate{
		ID: 3, Name: "Ana", Email: "ana@example.com", ReferralCode: "c0de0003",
		SponsorID: uintPtr(b.ID),
		Status:    domain.AffiliateStatusApproved, Tier: domain.TierBronze,
	})
	return c, b, a
}

func TestDistributeThreeLevels(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	c, b, a := seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	records, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("1000"), SellerID: a.ID})
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, a.ID, records[0].AffiliateID)
	require.Equal(t, 0, records[0].Level)
	require.Equal(t, domain.CommissionTypeDirect, records[0].Type)
	requireAmount(t, "100.00", records[0].Amount)

	require.Equal(t, b.ID, records[1].AffiliateID)
	require.Equal(t, 1, records[1].Level)
	require.Equal(t, domain.CommissionTypeMLMLevel1, records[1].Type)
	requireAmount(t, "30.00", records[1].Amount)

	require.Equal(t, c.ID, records[2].AffiliateID)
	require.Equal(t, 2, records[2].Level)
	require.Equal(t, domain.CommissionTypeMLMLevel2, records[2].Type)
	requireAmount(t, "10.00", records[2].Amount)

	for _, rec := range records {
		require.Equal(t, domain.CommissionStatusPending, rec.Status)
		requireAmount(t, "1000.00", rec.OrderTotal)
	}
}

func TestDistributeCreditsSalesVolume(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	c, b, a := seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	_, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("1000"), SellerID: a.ID})
	require.NoError(t, err)

	seller, err := affs.GetByID(a.ID)
	require.NoError(t, err)
	requireAmount(t, "1000.00", seller.TotalSalesVolume)
	require.Equal(t, 1000, seller.Points)
	// Points alone are not enough for silver without referrals.
	require.Equal(t, domain.TierBronze, seller.Tier)

	for _, id := range []uint{b.ID, c.ID} {
		up, err := affs.GetByID(id)
		require.NoError(t, err)
		requireAmount(t, "1000.00", up.TeamSalesVolume)
		requireAmount(t, "0.00", up.TotalSalesVolume)
	}
}

func TestDistributePromotesSellerTier(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	seller := affs.seed(models.Affiliate{
		ID: 1, Email: "solo@example.com", ReferralCode: "c0desolo",
		Status:           domain.AffiliateStatusApproved,
		DirectReferrals:  5,
		TotalSalesVolume: dec("400"),
		Tier:             domain.TierBronze,
	})
	svc := NewCommissionService(affs, coms, zap.NewNop())

	_, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("200"), SellerID: seller.ID})
	require.NoError(t, err)

	got, err := affs.GetByID(seller.ID)
	require.NoError(t, err)
	requireAmount(t, "600.00", got.TotalSalesVolume)
	require.Equal(t, 600, got.Points)
	require.Equal(t, domain.TierSilver, got.Tier)
	requireAmount(t, "12.00", got.CommissionRate)
}

func TestDistributeZeroTotalEmitsNothing(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	_, _, a := seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	records, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: decimal.Zero, SellerID: a.ID})
	require.NoError(t, err)
	require.Empty(t, records)
	require.Empty(t, coms.rows)
}

func TestDistributeNegativeTotal(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	_, _, a := seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	_, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("-10"), SellerID: a.ID})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDistributeIdempotent(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	_, _, a := seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	sale := Sale{OrderID: "ord-1", OrderTotal: dec("1000"), SellerID: a.ID}
	first, err := svc.Distribute(sale)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := svc.Distribute(sale)
	require.NoError(t, err)
	require.Len(t, second, 3)
	require.Len(t, coms.rows, 3)

	// Replays must not re-credit the seller's volume either.
	seller, err := affs.GetByID(a.ID)
	require.NoError(t, err)
	requireAmount(t, "1000.00", seller.TotalSalesVolume)
}

// racingCommissionRepo hides existing records from the first ListByOrderID
// call, as if a competing delivery committed after our precheck.
type racingCommissionRepo struct {
	*fakeCommissionRepo
	prechecks int
}

func (r *racingCommissionRepo) ListByOrderID(orderID string) ([]models.CommissionRecord, error) {
	r.prechecks++
	if r.prechecks == 1 {
		return nil, nil
	}
	return r.fakeCommissionRepo.ListByOrderID(orderID)
}

func TestDistributeLosingRaceReturnsExisting(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := &racingCommissionRepo{fakeCommissionRepo: newFakeCommissionRepo()}
	_, _, a := seedChain(affs)
	require.NoError(t, coms.fakeCommissionRepo.CreateBatch([]models.CommissionRecord{{
		OrderID: "ord-1", AffiliateID: a.ID, Level: 0,
		Type: domain.CommissionTypeDirect, OrderTotal: dec("1000"),
		Rate: dec("10"), Amount: dec("100"), Status: domain.CommissionStatusPending,
	}}))
	svc := NewCommissionService(affs, coms, zap.NewNop())

	// The unique index rejects our batch; the caller still sees the
	// winner's records, not an error.
	records, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("1000"), SellerID: a.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, coms.fakeCommissionRepo.rows, 1)
}

func TestDistributeNoUpline(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	root := affs.seed(models.Affiliate{
		ID: 1, Email: "root@example.com", ReferralCode: "c0deroot",
		Status: domain.AffiliateStatusApproved, Tier: domain.TierBronze,
	})
	svc := NewCommissionService(affs, coms, zap.NewNop())

	records, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("500"), SellerID: root.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 0, records[0].Level)
	requireAmount(t, "50.00", records[0].Amount)
}

func TestDistributeSkipsSuspendedAncestorKeepingSlot(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	grand := affs.seed(models.Affiliate{
		ID: 1, Email: "fern@example.com", ReferralCode: "c0defern",
		Status: domain.AffiliateStatusApproved,
	})
	suspended := affs.seed(models.Affiliate{
		ID: 2, Email: "eva@example.com", ReferralCode: "c0deeva0",
		SponsorID: uintPtr(grand.ID),
		Status:    domain.AffiliateStatusSuspended,
	})
	seller := affs.seed(models.Affiliate{
		ID: 3, Email: "dani@example.com", ReferralCode: "c0dedani",
		SponsorID: uintPtr(suspended.ID),
		Status:    domain.AffiliateStatusApproved,
	})
	svc := NewCommissionService(affs, coms, zap.NewNop())

	records, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("1000"), SellerID: seller.ID})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// The suspended parent earns nothing but still occupies level 1, so the
	// grandparent stays at level 2 with the level-2 rate.
	require.Equal(t, seller.ID, records[0].AffiliateID)
	require.Equal(t, grand.ID, records[1].AffiliateID)
	require.Equal(t, 2, records[1].Level)
	require.Equal(t, domain.CommissionTypeMLMLevel2, records[1].Type)
	requireAmount(t, "10.00", records[1].Amount)

	for _, rec := range records {
		require.NotEqual(t, suspended.ID, rec.AffiliateID)
	}
}

func TestDistributeUnknownSeller(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	_, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("100"), SellerID: 99})
	require.ErrorIs(t, err, domain.ErrAffiliateNotFound)
	require.Empty(t, coms.rows)
}

func TestDistributeSellerNotApproved(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	pending := affs.seed(models.Affiliate{
		ID: 1, Email: "new@example.com", ReferralCode: "c0denew0",
		Status: domain.AffiliateStatusPending,
	})
	svc := NewCommissionService(affs, coms, zap.NewNop())

	_, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("100"), SellerID: pending.ID})
	require.ErrorIs(t, err, domain.ErrAffiliateNotApproved)
	require.Empty(t, coms.rows)
}

func TestDistributeCorruptHierarchyEmitsNothing(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	// Two-node sponsor cycle above the seller.
	x := affs.seed(models.Affiliate{
		ID: 1, Email: "x@example.com", ReferralCode: "c0dex000",
		SponsorID: uintPtr(2), Status: domain.AffiliateStatusApproved,
	})
	affs.seed(models.Affiliate{
		ID: 2, Email: "y@example.com", ReferralCode: "c0dey000",
		SponsorID: uintPtr(1), Status: domain.AffiliateStatusApproved,
	})
	seller := affs.seed(models.Affiliate{
		ID: 3, Email: "z@example.com", ReferralCode: "c0dez000",
		SponsorID: uintPtr(x.ID), Status: domain.AffiliateStatusApproved,
	})
	svc := NewCommissionService(affs, coms, zap.NewNop())

	_, err := svc.Distribute(Sale{OrderID: "ord-1", OrderTotal: dec("100"), SellerID: seller.ID})
	require.ErrorIs(t, err, domain.ErrCorruptHierarchy)
	require.Empty(t, coms.rows)
}

func TestDistributeSumNeverExceedsOrderTotal(t *testing.T) {
	affs := newFakeAffiliateRepo()
	coms := newFakeCommissionRepo()
	_, _, a := seedChain(affs)
	svc := NewCommissionService(affs, coms, zap.NewNop())

	for _, total := range []string{"0.01", "0.99", "1", "33.33", "1000", "99999.99"} {
		records, err := svc.Distribute(Sale{OrderID: "ord-" + total, OrderTotal: dec(total), SellerID: a.ID})
		require.NoError(t, err)
		sum := decimal.Zero
		for _, rec := range records {
			require.False(t, rec.Amount.IsNegative())
			sum = sum.Add(rec.Amount)
		}
		require.True(t, sum.LessThanOrEqual(dec(total)), "total %s: sum %s", total, sum)
	}
}
