package handler

import (
	"net/http"

	"afilia/internal/repository"
	"afilia/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the read-only aggregates the admin dashboards
// render.
type ReportHandler struct {
	reports      repository.ReportRepository
	affiliateSvc *service.AffiliateService
}

func NewReportHandler(reports repository.ReportRepository, affiliateSvc *service.AffiliateService) *ReportHandler {
	return &ReportHandler{reports: reports, affiliateSvc: affiliateSvc}
}

// GET /admin/reports/commissions
func (h *ReportHandler) CommissionTotals(c *gin.Context) {
	byStatus, err := h.reports.CommissionTotalsByStatus()
	if err != nil {
		respondErr(c, err)
		return
	}
	byType, err := h.reports.CommissionTotalsByType()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_status": byStatus, "by_type": byType})
}

// GET /admin/reports/tiers
func (h *ReportHandler) TierDistribution(c *gin.Context) {
	rows, err := h.reports.TierDistribution()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": rows})
}

// GET /admin/affiliates/:id/network
func (h *ReportHandler) AffiliateNetwork(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	n, err := h.affiliateSvc.Network(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upline":   networkMembers(n.Upline),
		"downline": networkMembers(n.Downline),
	})
}
