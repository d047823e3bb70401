package handler

import (
	"net/http"

	"afilia/internal/middleware"
	"afilia/internal/models"
	"afilia/internal/repository"
	"afilia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AffiliateHandler struct {
	affiliateSvc *service.AffiliateService
	payoutSvc    *service.PayoutService
	commissions  repository.CommissionRepository
	withdrawals  repository.WithdrawalRepository
}

func NewAffiliateHandler(
	affiliateSvc *service.AffiliateService,
	payoutSvc *service.PayoutService,
	commissions repository.CommissionRepository,
	withdrawals repository.WithdrawalRepository,
) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateSvc: affiliateSvc,
		payoutSvc:    payoutSvc,
		commissions:  commissions,
		withdrawals:  withdrawals,
	}
}

type EnrollRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=120"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referral_code"` // optional: sponsor's code
}

// Enroll registers a new affiliate in PENDING status.
// POST /affiliates/register
func (h *AffiliateHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.affiliateSvc.Enroll(req.Name, req.Email, req.Password, req.ReferralCode)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":            a.ID,
		"referral_code": a.ReferralCode,
		"status":        a.Status,
		"tier":          a.Tier,
	})
}

// GetProfile returns the affiliate's own row plus live tier progress.
// GET /me/profile
func (h *AffiliateHandler) GetProfile(c *gin.Context) {
	p, err := h.affiliateSvc.Profile(middleware.GetAccountID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"affiliate": p.Affiliate,
		"tier_progress": gin.H{
			"tier":             p.Classification.Tier,
			"commission_rate":  p.Classification.RatePercent,
			"next_tier":        p.Classification.NextTier,
			"progress_to_next": p.Classification.ProgressToNext,
		},
	})
}

// GetNetwork returns the affiliate's upline chain and direct downline.
// GET /me/network
func (h *AffiliateHandler) GetNetwork(c *gin.Context) {
	n, err := h.affiliateSvc.Network(middleware.GetAccountID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upline":   networkMembers(n.Upline),
		"downline": networkMembers(n.Downline),
	})
}

func networkMembers(list []*models.Affiliate) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, a := range list {
		out = append(out, gin.H{
			"id":     a.ID,
			"name":   a.Name,
			"tier":   a.Tier,
			"status": a.Status,
		})
	}
	return out
}

// ListCommissions returns the affiliate's commission records.
// GET /me/commissions
func (h *AffiliateHandler) ListCommissions(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.commissions.ListByAffiliateID(middleware.GetAccountID(c), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}

// ListWithdrawals returns the affiliate's withdrawal requests.
// GET /me/withdrawals
func (h *AffiliateHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.withdrawals.ListByAffiliateID(middleware.GetAccountID(c), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,min=2,max=30"`
}

// CreateWithdrawal opens a withdrawal request, reserving the amount.
// POST /me/withdrawals
func (h *AffiliateHandler) CreateWithdrawal(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.payoutSvc.RequestWithdrawal(middleware.GetAccountID(c), req.Amount, req.PaymentMethod)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         w.ID,
		"reference":  w.Reference,
		"amount":     w.Amount,
		"fee":        w.Fee,
		"net_amount": w.NetAmount,
		"status":     w.Status,
	})
}
