package router

import (
	"time"

	"klipz/config"
	"klipz/internal/domain"
	"klipz/internal/handler"
	"klipz/internal/middleware"
	"klipz/internal/repository"
	"klipz/internal/service"
	"klipz/internal/ws"
	"klipz/pkg/cloudinary"
	"klipz/pkg/payout"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and routes. The earnings service is
// returned alongside the engine so main can hand it to the job scheduler.
func Setup(cfg *config.Config, db *gorm.DB, provider payout.Provider, cloud cloudinary.Client) (*gin.Engine, *service.EarningsService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	hub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	ledger := service.NewLedgerService(db, walletRepo)
	notifSvc := service.NewNotificationService(notificationRepo, hub)
	depositSvc := service.NewDepositService(db, eventRepo, depositRepo, ledger)
	payoutSvc := service.NewPayoutService(db, walletRepo, withdrawalRepo, userRepo, ledger, provider, notifSvc, auditRepo, cfg.Stripe.Currency, cfg.Payout.MinWithdrawalCents)
	campaignSvc := service.NewCampaignService(db, campaignRepo, ledger)
	earningsSvc := service.NewEarningsService(db, submissionRepo, campaignRepo, ledger, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	twitchHandler := handler.NewTwitchOAuthHandler(cfg, userRepo, auditRepo)
	meHandler := handler.NewMeHandler(userRepo, ledger, campaignRepo, submissionRepo, withdrawalRepo)
	walletHandler := handler.NewWalletHandler(ledger, walletRepo)
	paymentHandler := handler.NewPaymentHandler(cfg, provider, depositSvc)
	webhookHandler := handler.NewStripeWebhookHandler(cfg, depositSvc, notifSvc, auditRepo)
	connectHandler := handler.NewConnectHandler(cfg, userRepo, provider)
	withdrawalHandler := handler.NewWithdrawalHandler(payoutSvc, withdrawalRepo)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, campaignRepo, submissionRepo)
	submissionHandler := handler.NewSubmissionHandler(earningsSvc, submissionRepo, campaignRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud)
	adminHandler := handler.NewAdminHandler(userRepo, withdrawalRepo, payoutSvc, earningsSvc, submissionRepo, auditRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/twitch", twitchHandler.Redirect)
			authGroup.POST("/twitch/link", authMw, twitchHandler.Link)
			authGroup.DELETE("/twitch/link", authMw, twitchHandler.Unlink)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.Profile)
			me.GET("/dashboard", meHandler.Dashboard)
			me.GET("/wallet", walletHandler.Balance)
			me.GET("/wallet/transactions", walletHandler.Transactions)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.POST("/upload/thumbnail", uploadHandler.Thumbnail)
			me.POST("/withdrawals", withdrawalHandler.Create)
			me.GET("/withdrawals", withdrawalHandler.List)
			me.GET("/withdrawals/:id", withdrawalHandler.Get)
		}

		api.POST("/payments/intent", authMw, paymentHandler.CreateIntent)

		connect := api.Group("/connect")
		connect.Use(authMw)
		{
			connect.POST("/onboard", connectHandler.Onboard)
			connect.GET("/status", connectHandler.Status)
		}

		api.GET("/campaigns", authMw, campaignHandler.ListActive)
		api.GET("/campaigns/:id", authMw, campaignHandler.Get)

		streamer := api.Group("/campaigns")
		streamer.Use(authMw, middleware.RequireRole(domain.RoleStreamer))
		{
			streamer.POST("", campaignHandler.Create)
			streamer.GET("/mine", campaignHandler.ListMine)
			streamer.POST("/:id/fund", campaignHandler.Fund)
			streamer.PATCH("/:id/status", campaignHandler.SetStatus)
			streamer.GET("/:id/submissions", campaignHandler.Submissions)
		}

		api.POST("/submissions", authMw, middleware.RequireRole(domain.RoleClipper), submissionHandler.Create)
		api.GET("/submissions/mine", authMw, middleware.RequireRole(domain.RoleClipper), submissionHandler.ListMine)
		api.GET("/submissions/:id", authMw, submissionHandler.Get)
		api.PATCH("/submissions/:id/metrics", authMw, middleware.RequireRole(domain.RoleClipper), submissionHandler.UpdateMetrics)
		api.POST("/submissions/:id/approve", authMw, middleware.RequireRole(domain.RoleStreamer), submissionHandler.Approve)
		api.POST("/submissions/:id/reject", authMw, middleware.RequireRole(domain.RoleStreamer), submissionHandler.Reject)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/retry", adminHandler.RetryWithdrawal)
			admin.POST("/payouts", adminHandler.DirectPayout)
			admin.GET("/submissions/pending", adminHandler.ListPendingSubmissions)
			admin.POST("/submissions/:id/approve", adminHandler.ApproveSubmission)
			admin.POST("/submissions/:id/reject", adminHandler.RejectSubmission)
			admin.PATCH("/submissions/:id/metrics", adminHandler.UpdateSubmissionMetrics)
			admin.GET("/audit-log", adminHandler.AuditLog)
		}

		// Raw body endpoint, signature-verified instead of JWT-authenticated.
		api.POST("/webhooks/stripe", webhookHandler.Handle)
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationWS(&cfg.JWT, hub))

	return r, earningsSvc
}
