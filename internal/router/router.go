package router

import (
	"fmt"
	"strings"

	"github.com/vale-cashback/api/internal/cache"
	"github.com/vale-cashback/api/internal/config"
	"github.com/vale-cashback/api/internal/constants"
	adminhandlers "github.com/vale-cashback/api/internal/http/handlers/admin"
	clienthandlers "github.com/vale-cashback/api/internal/http/handlers/client"
	merchanthandlers "github.com/vale-cashback/api/internal/http/handlers/merchant"
	"github.com/vale-cashback/api/internal/logger"
	"github.com/vale-cashback/api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按角色分组）
	clientHandler := clienthandlers.New(c)
	merchantHandler := merchanthandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vcb"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", clientHandler.GetConfig)
			public.GET("/captcha/image", clientHandler.GetCaptcha)
		}

		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", clientHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), clientHandler.Login)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", clientHandler.GetProfile)
			user.PUT("/me/profile", clientHandler.UpdateProfile)
			user.PUT("/me/password", clientHandler.ChangePassword)
			user.POST("/me/logout", clientHandler.Logout)

			user.GET("/balance", clientHandler.GetBalance)
			user.GET("/balance/entries", clientHandler.ListBalanceEntries)

			user.GET("/transactions", clientHandler.ListTransactions)
			user.GET("/transactions/:id", clientHandler.GetTransaction)

			user.GET("/qr/:code", clientHandler.VerifyQRCode)
			user.POST("/qr/pay", clientHandler.PayQRCode)

			user.POST("/transfers", clientHandler.CreateTransfer)
			user.GET("/transfers", clientHandler.ListTransfers)

			user.POST("/withdrawals", clientHandler.ApplyWithdrawal)
			user.GET("/withdrawals", clientHandler.ListWithdrawals)
			user.GET("/withdrawals/:id", clientHandler.GetWithdrawal)
			user.DELETE("/withdrawals/:id", clientHandler.CancelWithdrawal)

			user.GET("/referrals", clientHandler.ListReferrals)
			user.GET("/referrals/summary", clientHandler.GetReferralSummary)

			user.GET("/notifications", clientHandler.ListNotifications)
			user.GET("/notifications/unread-count", clientHandler.CountUnreadNotifications)
			user.PUT("/notifications/:id/read", clientHandler.MarkNotificationRead)
			user.PUT("/notifications/read-all", clientHandler.MarkAllNotificationsRead)
		}

		// 商户接口
		merchant := apiV1.Group("/merchant")
		merchant.Use(
			UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo),
			RequireRole(constants.RoleMerchant),
		)
		{
			merchant.GET("/store", merchantHandler.GetStoreProfile)
			merchant.PUT("/store", merchantHandler.UpdateStoreProfile)

			merchant.POST("/qr-codes", merchantHandler.GenerateQRCode)
			merchant.GET("/qr-codes", merchantHandler.ListQRCodes)
			merchant.GET("/qr-codes/:id", merchantHandler.GetQRCode)

			merchant.POST("/transactions", merchantHandler.RecordTransaction)
			merchant.GET("/transactions", merchantHandler.ListTransactions)
			merchant.GET("/transactions/:id", merchantHandler.GetTransaction)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(
			UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo),
			RequireRole(constants.RoleAdmin),
		)
		{
			admin.GET("/dashboard", adminHandler.GetDashboardSummary)

			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/merchants", adminHandler.ListMerchants)
			admin.PUT("/merchants/:id/approve", adminHandler.ApproveMerchant)
			admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
			admin.POST("/users/:id/balance/adjust", adminHandler.AdjustBalance)
			admin.GET("/login-logs", adminHandler.ListLoginLogs)
			admin.GET("/referrals", adminHandler.ListReferrals)

			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
			admin.PUT("/withdrawals/:id/review", adminHandler.ReviewWithdrawal)

			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.GET("/transactions/:id", adminHandler.GetTransaction)

			admin.GET("/settings/commission", adminHandler.GetCommissionSetting)
			admin.PUT("/settings/commission", adminHandler.UpdateCommissionSetting)
			admin.GET("/settings/withdrawal", adminHandler.GetWithdrawalSetting)
			admin.PUT("/settings/withdrawal", adminHandler.UpdateWithdrawalSetting)
			admin.GET("/settings/referral", adminHandler.GetReferralSetting)
			admin.PUT("/settings/referral", adminHandler.UpdateReferralSetting)
			admin.GET("/settings/site", adminHandler.GetSiteSetting)
			admin.PUT("/settings/site", adminHandler.UpdateSiteSetting)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
