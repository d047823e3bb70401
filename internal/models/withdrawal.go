package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalRequest is an affiliate's request to cash out available
// balance. The amount is reserved (debited) when the request is created;
// rejection refunds it, completion only finalizes state.
type WithdrawalRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	AffiliateID   uint            `gorm:"not null;index" json:"affiliate_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Fee           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	PaymentMethod string          `gorm:"size:30;not null" json:"payment_method"`
	Status        string          `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, REJECTED
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"-"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }
