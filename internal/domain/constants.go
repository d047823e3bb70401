package domain

import "github.com/shopspring/decimal"

const (
	RoleAffiliate = "AFFILIATE"
	RoleAdmin     = "ADMIN"
)

// Affiliate lifecycle. Only APPROVED affiliates earn commission.
const (
	AffiliateStatusPending   = "PENDING"
	AffiliateStatusApproved  = "APPROVED"
	AffiliateStatusRejected  = "REJECTED"
	AffiliateStatusSuspended = "SUSPENDED"
)

const (
	TierBronze  = "BRONZE"
	TierSilver  = "SILVER"
	TierGold    = "GOLD"
	TierDiamond = "DIAMOND"
)

const (
	CommissionStatusPending  = "PENDING"
	CommissionStatusApproved = "APPROVED"
	CommissionStatusPaid     = "PAID"
	CommissionStatusRejected = "REJECTED"
	// Reserved for the refund path; no transition produces it yet.
	CommissionStatusReversed = "REVERSED"
)

const (
	CommissionTypeDirect    = "DIRECT"
	CommissionTypeMLMLevel1 = "MLM_LEVEL1"
	CommissionTypeMLMLevel2 = "MLM_LEVEL2"
)

const (
	WithdrawalStatusPending   = "PENDING"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusRejected  = "REJECTED"
)

// MaxCommissionDepth is how many upline levels above the seller can earn
// on a single sale. Levels are positional: an ineligible ancestor still
// consumes its slot.
const MaxCommissionDepth = 2

// TierRule is one rung of the tier ladder. An affiliate holds a tier only
// when all three minimums are met.
type TierRule struct {
	Name         string
	MinReferrals int
	MinSales     decimal.Decimal
	MinPoints    int
	RatePercent  decimal.Decimal
}

// TierTable is the single source of truth for tier thresholds and direct
// commission rates, ordered bronze -> diamond. Both the classifier and the
// commission engine read from here.
var TierTable = []TierRule{
	{Name: TierBronze, MinReferrals: 0, MinSales: decimal.Zero, MinPoints: 0, RatePercent: decimal.NewFromInt(10)},
	{Name: TierSilver, MinReferrals: 5, MinSales: decimal.NewFromInt(500), MinPoints: 500, RatePercent: decimal.NewFromInt(12)},
	{Name: TierGold, MinReferrals: 15, MinSales: decimal.NewFromInt(2000), MinPoints: 2000, RatePercent: decimal.NewFromInt(15)},
	{Name: TierDiamond, MinReferrals: 50, MinSales: decimal.NewFromInt(10000), MinPoints: 10000, RatePercent: decimal.NewFromInt(20)},
}

// Override rates paid to upline members, keyed by commission level.
// Flat per-level rates, independent of the member's own tier.
var LevelOverrideRates = map[int]decimal.Decimal{
	1: decimal.NewFromInt(3),
	2: decimal.NewFromInt(1),
}

// CommissionTypeForLevel maps a commission level to its record type.
var CommissionTypeForLevel = map[int]string{
	0: CommissionTypeDirect,
	1: CommissionTypeMLMLevel1,
	2: CommissionTypeMLMLevel2,
}

// Points weighting. Tier thresholds are calibrated against these, so they
// must change together.
var (
	DirectSalesPointsWeight   = decimal.NewFromInt(1)
	DownlineSalesPointsWeight = decimal.RequireFromString("0.5")
)

// WithdrawalFeePercent is deducted from every withdrawal request.
var WithdrawalFeePercent = decimal.NewFromInt(2)
