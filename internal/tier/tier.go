// Package tier classifies affiliates into performance tiers and converts
// sales volume into the points score the thresholds are defined over.
package tier

import (
	"afilia/internal/domain"

	"github.com/shopspring/decimal"
)

// Classification is the result of evaluating an affiliate against the tier
// table. ProgressToNext is the percentage of the points gap to the next
// tier already closed, clamped to [0,100]; at the top tier it is 100 and
// NextTier is empty.
type Classification struct {
	Tier           string
	RatePercent    decimal.Decimal
	NextTier       string
	ProgressToNext float64
}

// Classify returns the highest tier whose referral, sales-volume and
// points minimums are all satisfied. Meeting only some of a rung's
// minimums does not qualify.
func Classify(directReferrals int, totalSalesVolume decimal.Decimal, points int) Classification {
	table := domain.TierTable
	idx := 0
	for i, rule := range table {
		if directReferrals >= rule.MinReferrals &&
			totalSalesVolume.GreaterThanOrEqual(rule.MinSales) &&
			points >= rule.MinPoints {
			idx = i
		}
	}

	c := Classification{
		Tier:        table[idx].Name,
		RatePercent: table[idx].RatePercent,
	}
	if idx == len(table)-1 {
		c.ProgressToNext = 100
		return c
	}

	next := table[idx+1]
	c.NextTier = next.Name
	gap := next.MinPoints - table[idx].MinPoints
	if gap <= 0 {
		c.ProgressToNext = 100
		return c
	}
	progress := float64(points-table[idx].MinPoints) / float64(gap) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	c.ProgressToNext = progress
	return c
}

// Points converts sales amounts into the integer points score. Direct
// sales count at full weight, downline sales at the reduced weight.
func Points(directSales, downlineSales decimal.Decimal) int {
	total := directSales.Mul(domain.DirectSalesPointsWeight).
		Add(downlineSales.Mul(domain.DownlineSalesPointsWeight))
	return int(total.Round(0).IntPart())
}
