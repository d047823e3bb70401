package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Affiliate is one participant in the compensation program. SponsorID links
// to the affiliate who recruited this one; nil means a root of the network.
// Tier, CommissionRate and Points are derived from the performance metrics
// and recomputed whenever those metrics change, never set directly.
type Affiliate struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:120;not null" json:"name"`
	Email        string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	ReferralCode string  `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	SponsorID    *uint   `gorm:"index" json:"sponsor_id,omitempty"`
	Status       string  `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED, SUSPENDED

	DirectReferrals  int             `gorm:"not null;default:0" json:"direct_referrals"`
	TotalSalesVolume decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_sales_volume"` // own sales
	TeamSalesVolume  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"team_sales_volume"`  // downline sales within the commission depth
	TotalEarnings    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_earnings"`     // approved direct commission
	TeamEarnings     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"team_earnings"`      // approved override commission
	AvailableBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"available_balance"`

	Points         int             `gorm:"not null;default:0" json:"points"`
	Tier           string          `gorm:"size:20;not null;index" json:"tier"` // BRONZE, SILVER, GOLD, DIAMOND
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sponsor *Affiliate `gorm:"foreignKey:SponsorID" json:"-"`
}

func (Affiliate) TableName() string { return "affiliates" }
