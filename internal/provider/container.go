package provider

import (
	"github.com/vale-cashback/api/internal/cache"
	"github.com/vale-cashback/api/internal/config"
	"github.com/vale-cashback/api/internal/logger"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/queue"
	"github.com/vale-cashback/api/internal/repository"
	"github.com/vale-cashback/api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	MerchantRepo     repository.MerchantRepository
	BalanceRepo      repository.BalanceRepository
	TransactionRepo  repository.TransactionRepository
	QRCodeRepo       repository.QRCodeRepository
	TransferRepo     repository.TransferRepository
	ReferralRepo     repository.ReferralRepository
	WithdrawalRepo   repository.WithdrawalRepository
	NotificationRepo repository.NotificationRepository
	SettingRepo      repository.SettingRepository
	DashboardRepo    repository.DashboardRepository

	// Services
	AuthService         *service.AuthService
	UserService         *service.UserService
	CaptchaService      *service.CaptchaService
	SettingService      *service.SettingService
	BalanceService      *service.BalanceService
	NotificationService *service.NotificationService
	SettlementService   *service.SettlementService
	QRService           *service.QRService
	WithdrawalService   *service.WithdrawalService
	TransferService     *service.TransferService
	DashboardService    *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.BalanceRepo = repository.NewBalanceRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.QRCodeRepo = repository.NewQRCodeRepository(db)
	c.TransferRepo = repository.NewTransferRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserService = service.NewUserService(c.Config, c.UserRepo, c.MerchantRepo, c.ReferralRepo, c.AuthService)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.BalanceService = service.NewBalanceService(c.BalanceRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.SettlementService = service.NewSettlementService(
		c.TransactionRepo,
		c.ReferralRepo,
		c.UserRepo,
		c.MerchantRepo,
		c.BalanceService,
		c.SettingService,
		c.NotificationService,
	)
	c.QRService = service.NewQRService(
		c.QRCodeRepo,
		c.UserRepo,
		c.MerchantRepo,
		c.SettlementService,
		c.QueueClient,
		c.Config.Cashback.QRExpireMinutes,
		c.Config.Cashback.QRImageSize,
	)
	c.WithdrawalService = service.NewWithdrawalService(
		c.WithdrawalRepo,
		c.BalanceRepo,
		c.BalanceService,
		c.SettingService,
		c.NotificationService,
	)
	c.TransferService = service.NewTransferService(
		c.TransferRepo,
		c.UserRepo,
		c.BalanceService,
		c.NotificationService,
	)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
}
