package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionRecord is one monetary credit tied to one sale and one
// beneficiary. The composite unique index enforces at most one record per
// (order, affiliate, level), which is what makes distribution idempotent.
type CommissionRecord struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     string          `gorm:"size:64;not null;index;index:idx_commission_order_unique,unique" json:"order_id"`
	AffiliateID uint            `gorm:"not null;index;index:idx_commission_order_unique,unique" json:"affiliate_id"`
	Level       int             `gorm:"not null;index:idx_commission_order_unique,unique" json:"level"` // 0 = seller, 1+ = upline
	Type        string          `gorm:"size:20;not null;index" json:"type"`                             // DIRECT, MLM_LEVEL1, MLM_LEVEL2
	OrderTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"order_total"`
	Rate        decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"rate"` // percent actually applied
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status      string          `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, PAID, REJECTED, REVERSED
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"-"`
}

func (CommissionRecord) TableName() string { return "commission_records" }
