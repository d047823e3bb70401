package router

import (
	"time"

	"afilia/config"
	"afilia/internal/handler"
	"afilia/internal/middleware"
	"afilia/internal/repository"
	"afilia/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	affiliateRepo := repository.NewAffiliateRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, affiliateRepo, adminRepo)
	affiliateSvc := service.NewAffiliateService(affiliateRepo, log)
	commissionSvc := service.NewCommissionService(affiliateRepo, commissionRepo, log)
	payoutSvc := service.NewPayoutService(affiliateRepo, commissionRepo, withdrawalRepo, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	affiliateHandler := handler.NewAffiliateHandler(affiliateSvc, payoutSvc, commissionRepo, withdrawalRepo)
	saleWebhookHandler := handler.NewSaleWebhookHandler(cfg, commissionSvc, affiliateRepo)
	adminHandler := handler.NewAdminHandler(affiliateSvc, payoutSvc, affiliateRepo, commissionRepo, withdrawalRepo)
	reportHandler := handler.NewReportHandler(reportRepo, affiliateSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/admin/login", authHandler.AdminLogin)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.POST("/affiliates/register", affiliateHandler.Enroll)
		api.POST("/webhooks/sale", saleWebhookHandler.Handle)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", affiliateHandler.GetProfile)
			me.GET("/network", affiliateHandler.GetNetwork)
			me.GET("/commissions", affiliateHandler.ListCommissions)
			me.GET("/withdrawals", affiliateHandler.ListWithdrawals)
			me.POST("/withdrawals", affiliateHandler.CreateWithdrawal)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/affiliates", adminHandler.ListAffiliates)
			admin.POST("/affiliates/:id/approve", adminHandler.ApproveAffiliate)
			admin.POST("/affiliates/:id/reject", adminHandler.RejectAffiliate)
			admin.POST("/affiliates/:id/suspend", adminHandler.SuspendAffiliate)
			admin.POST("/affiliates/:id/reinstate", adminHandler.ReinstateAffiliate)
			admin.GET("/affiliates/:id/network", reportHandler.AffiliateNetwork)

			admin.GET("/commissions", adminHandler.ListCommissions)
			admin.POST("/commissions/:id/approve", adminHandler.ApproveCommission)
			admin.POST("/commissions/:id/reject", adminHandler.RejectCommission)
			admin.POST("/commissions/:id/pay", adminHandler.PayCommission)

			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/complete", adminHandler.CompleteWithdrawal)
			admin.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)

			admin.GET("/reports/commissions", reportHandler.CommissionTotals)
			admin.GET("/reports/tiers", reportHandler.TierDistribution)
		}
	}

	return r
}
