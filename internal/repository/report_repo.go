package repository

import (
	"afilia/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatusTotal struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type TypeTotal struct {
	Type  string          `json:"type"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type TierCount struct {
	Tier  string `json:"tier"`
	Count int64  `json:"count"`
}

// ReportRepository serves the read-only aggregates consumed by the admin
// dashboards.
type ReportRepository interface {
	CommissionTotalsByStatus() ([]StatusTotal, error)
	CommissionTotalsByType() ([]TypeTotal, error)
	TierDistribution() ([]TierCount, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CommissionTotalsByStatus() ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.Model(&models.CommissionRecord{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CommissionTotalsByType() ([]TypeTotal, error) {
	var rows []TypeTotal
	err := r.db.Model(&models.CommissionRecord{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) TierDistribution() ([]TierCount, error) {
	var rows []TierCount
	err := r.db.Model(&models.Affiliate{}).
		Select("tier, COUNT(*) AS count").
		Group("tier").
		Scan(&rows).Error
	return rows, err
}
