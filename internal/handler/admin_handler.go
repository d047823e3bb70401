package handler

import (
	"net/http"

	"afilia/internal/domain"
	"afilia/internal/repository"
	"afilia/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler is the back-office surface: affiliate status transitions,
// the commission approval queue and the withdrawal queue.
type AdminHandler struct {
	affiliateSvc *service.AffiliateService
	payoutSvc    *service.PayoutService
	affiliates   repository.AffiliateRepository
	commissions  repository.CommissionRepository
	withdrawals  repository.WithdrawalRepository
}

func NewAdminHandler(
	affiliateSvc *service.AffiliateService,
	payoutSvc *service.PayoutService,
	affiliates repository.AffiliateRepository,
	commissions repository.CommissionRepository,
	withdrawals repository.WithdrawalRepository,
) *AdminHandler {
	return &AdminHandler{
		affiliateSvc: affiliateSvc,
		payoutSvc:    payoutSvc,
		affiliates:   affiliates,
		commissions:  commissions,
		withdrawals:  withdrawals,
	}
}

// ListAffiliates lists affiliates, optionally filtered by status.
// GET /admin/affiliates?status=PENDING
func (h *AdminHandler) ListAffiliates(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.affiliates.List(c.Query("status"), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affiliates": list})
}

// POST /admin/affiliates/:id/approve
func (h *AdminHandler) ApproveAffiliate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, err := h.affiliateSvc.Approve(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "status": a.Status})
}

// POST /admin/affiliates/:id/reject
func (h *AdminHandler) RejectAffiliate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, err := h.affiliateSvc.Reject(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "status": a.Status})
}

// POST /admin/affiliates/:id/suspend
func (h *AdminHandler) SuspendAffiliate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, err := h.affiliateSvc.Suspend(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "status": a.Status})
}

// POST /admin/affiliates/:id/reinstate
func (h *AdminHandler) ReinstateAffiliate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, err := h.affiliateSvc.Reinstate(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "status": a.Status})
}

// ListCommissions returns the commission queue for a status (default
// pending, the approval inbox).
// GET /admin/commissions?status=PENDING
func (h *AdminHandler) ListCommissions(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.DefaultQuery("status", domain.CommissionStatusPending)
	list, err := h.commissions.ListByStatus(status, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}

// POST /admin/commissions/:id/approve
func (h *AdminHandler) ApproveCommission(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.payoutSvc.ApproveCommission(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// POST /admin/commissions/:id/reject
func (h *AdminHandler) RejectCommission(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.payoutSvc.RejectCommission(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// POST /admin/commissions/:id/pay
func (h *AdminHandler) PayCommission(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.payoutSvc.PayCommission(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /admin/withdrawals?status=PENDING
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.DefaultQuery("status", domain.WithdrawalStatusPending)
	list, err := h.withdrawals.ListByStatus(status, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

// POST /admin/withdrawals/:id/complete
func (h *AdminHandler) CompleteWithdrawal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	w, err := h.payoutSvc.CompleteWithdrawal(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// POST /admin/withdrawals/:id/reject
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	w, err := h.payoutSvc.RejectWithdrawal(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
