package service

import (
	"fmt"
	"time"

	"afilia/internal/domain"
	"afilia/internal/models"
	"afilia/internal/repository"
	"afilia/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayoutService owns the commission and withdrawal state machines and the
// affiliate balance they feed.
//
// Commission: PENDING --approve--> APPROVED --pay--> PAID,
// PENDING --reject--> REJECTED. Approval is the only operation that
// credits the beneficiary's available balance.
//
// Withdrawal: PENDING --complete--> COMPLETED, PENDING --reject-->
// REJECTED. The amount is reserved at request time, so rejection refunds
// and completion touches no balance.
type PayoutService struct {
	affiliates  repository.AffiliateRepository
	commissions repository.CommissionRepository
	withdrawals repository.WithdrawalRepository
	log         *zap.Logger
}

func NewPayoutService(
	affiliates repository.AffiliateRepository,
	commissions repository.CommissionRepository,
	withdrawals repository.WithdrawalRepository,
	log *zap.Logger,
) *PayoutService {
	return &PayoutService{
		affiliates:  affiliates,
		commissions: commissions,
		withdrawals: withdrawals,
		log:         log,
	}
}

// commissionTransitionErr reports why a conditional status flip matched
// no row: either the record is gone or it already left the expected state.
func commissionTransitionErr(repo repository.CommissionRepository, id uint, action string) error {
	rec, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	return &domain.TransitionError{Entity: "commission", ID: id, From: rec.Status, Attempted: action}
}

func withdrawalTransitionErr(repo repository.WithdrawalRepository, id uint, action string) error {
	w, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	return &domain.TransitionError{Entity: "withdrawal", ID: id, From: w.Status, Attempted: action}
}

// ApproveCommission moves a pending record to APPROVED and atomically
// credits the beneficiary's balance and earnings. The flip is a
// conditional update, so a concurrent duplicate approval loses the race
// and cannot credit the balance a second time.
func (s *PayoutService) ApproveCommission(id uint) (*models.CommissionRecord, error) {
	var rec *models.CommissionRecord
	err := s.affiliates.Transaction(func(tx *gorm.DB) error {
		affTx := s.affiliates.WithTx(tx)
		comTx := s.commissions.WithTx(tx)

		ok, err := comTx.MarkApproved(id, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return commissionTransitionErr(comTx, id, "approve")
		}
		rec, err = comTx.GetByID(id)
		if err != nil {
			return err
		}
		if err := affTx.AddBalance(rec.AffiliateID, rec.Amount); err != nil {
			return err
		}
		if rec.Level == 0 {
			return affTx.AddDirectEarnings(rec.AffiliateID, rec.Amount)
		}
		return affTx.AddTeamEarnings(rec.AffiliateID, rec.Amount)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("commission approved",
		zap.Uint("commission_id", rec.ID),
		zap.Uint("affiliate_id", rec.AffiliateID),
		zap.String("amount", rec.Amount.StringFixed(2)))
	return rec, nil
}

// PayCommission marks an approved record as paid out. The balance was
// already credited at approval.
func (s *PayoutService) PayCommission(id uint) (*models.CommissionRecord, error) {
	ok, err := s.commissions.MarkPaid(id, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, commissionTransitionErr(s.commissions, id, "pay")
	}
	return s.commissions.GetByID(id)
}

// RejectCommission terminates a pending record without touching balances.
func (s *PayoutService) RejectCommission(id uint) (*models.CommissionRecord, error) {
	ok, err := s.commissions.MarkRejected(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, commissionTransitionErr(s.commissions, id, "reject")
	}
	return s.commissions.GetByID(id)
}

// RequestWithdrawal reserves the amount against the affiliate's available
// balance and opens a pending request. The reservation is what prevents a
// set of concurrent requests from together exceeding the balance.
func (s *PayoutService) RequestWithdrawal(affiliateID uint, amount decimal.Decimal, paymentMethod string) (*models.WithdrawalRequest, error) {
	amount = money.Round(amount)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	a, err := s.affiliates.GetByID(affiliateID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AffiliateStatusApproved {
		return nil, domain.ErrAffiliateNotApproved
	}

	fee := money.Percent(amount, domain.WithdrawalFeePercent)
	req := &models.WithdrawalRequest{
		Reference:     fmt.Sprintf("wd-%s", uuid.New().String()),
		AffiliateID:   affiliateID,
		Amount:        amount,
		Fee:           fee,
		NetAmount:     amount.Sub(fee),
		PaymentMethod: paymentMethod,
		Status:        domain.WithdrawalStatusPending,
	}
	err = s.affiliates.Transaction(func(tx *gorm.DB) error {
		if err := s.affiliates.WithTx(tx).DebitBalance(affiliateID, amount); err != nil {
			return err
		}
		return s.withdrawals.WithTx(tx).Create(req)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("withdrawal requested",
		zap.Uint("affiliate_id", affiliateID),
		zap.String("reference", req.Reference),
		zap.String("amount", amount.StringFixed(2)))
	return req, nil
}

// CompleteWithdrawal finalizes a pending request. The funds were reserved
// at creation, so only the state advances here.
func (s *PayoutService) CompleteWithdrawal(id uint) (*models.WithdrawalRequest, error) {
	ok, err := s.withdrawals.MarkCompleted(id, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, withdrawalTransitionErr(s.withdrawals, id, "complete")
	}
	return s.withdrawals.GetByID(id)
}

// RejectWithdrawal cancels a pending request and refunds the reserved
// amount. The conditional flip keeps a concurrent duplicate rejection
// from refunding twice.
func (s *PayoutService) RejectWithdrawal(id uint) (*models.WithdrawalRequest, error) {
	var w *models.WithdrawalRequest
	err := s.affiliates.Transaction(func(tx *gorm.DB) error {
		wdrTx := s.withdrawals.WithTx(tx)
		ok, err := wdrTx.MarkRejected(id)
		if err != nil {
			return err
		}
		if !ok {
			return withdrawalTransitionErr(wdrTx, id, "reject")
		}
		w, err = wdrTx.GetByID(id)
		if err != nil {
			return err
		}
		return s.affiliates.WithTx(tx).AddBalance(w.AffiliateID, w.Amount)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}
