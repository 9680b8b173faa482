package main

import (
	"fmt"
	"strings"

	"github.com/vale-cashback/api/internal/config"
	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/logger"
	"github.com/vale-cashback/api/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "Cashback123"

type demoUser struct {
	Email        string
	DisplayName  string
	Role         string
	ReferralCode string
	Store        *models.MerchantProfile
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	// 演示账号：一个商户 + 两个客户（maria 推荐 joao）
	demos := []demoUser{
		{
			Email:        "loja@vale-cashback.local",
			DisplayName:  "Mercado Central",
			Role:         constants.RoleMerchant,
			ReferralCode: "LOJA2024",
			Store: &models.MerchantProfile{
				StoreName:   "Mercado Central",
				Category:    "supermercado",
				TaxID:       "12.345.678/0001-90",
				Address:     "Av. Paulista, 1000",
				City:        "São Paulo",
				Description: "Supermercado de bairro com entrega rápida.",
			},
		},
		{
			Email:        "maria@vale-cashback.local",
			DisplayName:  "Maria Silva",
			Role:         constants.RoleClient,
			ReferralCode: "MARIA234",
		},
		{
			Email:        "joao@vale-cashback.local",
			DisplayName:  "João Souza",
			Role:         constants.RoleClient,
			ReferralCode: "JOAO2345",
		},
	}

	created := map[string]uint{}
	for _, demo := range demos {
		email := strings.ToLower(demo.Email)
		var existing models.User
		if err := models.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", email)
			created[email] = existing.ID
			continue
		}
		user := models.User{
			Email:        email,
			PasswordHash: string(hash),
			DisplayName:  demo.DisplayName,
			Role:         demo.Role,
			ReferralCode: demo.ReferralCode,
			Locale:       constants.LocalePtBR,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", email, err)
			continue
		}
		created[email] = user.ID
		stdLog.Printf("Created user: %s (%s)", email, demo.Role)

		if demo.Store != nil {
			store := *demo.Store
			store.UserID = user.ID
			if err := models.DB.Create(&store).Error; err != nil {
				stdLog.Printf("Failed to create merchant profile for %s: %v", email, err)
			} else {
				stdLog.Printf("Created merchant profile: %s", store.StoreName)
			}
		}
	}

	// maria 推荐 joao
	mariaID := created["maria@vale-cashback.local"]
	joaoID := created["joao@vale-cashback.local"]
	if mariaID != 0 && joaoID != 0 {
		var count int64
		models.DB.Model(&models.Referral{}).
			Where("referrer_id = ? AND referred_id = ?", mariaID, joaoID).
			Count(&count)
		if count == 0 {
			if err := models.DB.Model(&models.User{}).Where("id = ?", joaoID).
				Update("referred_by_id", mariaID).Error; err != nil {
				stdLog.Printf("Failed to link referral: %v", err)
			}
			referral := models.Referral{
				ReferrerID: mariaID,
				ReferredID: joaoID,
				Status:     constants.ReferralStatusPending,
			}
			if err := models.DB.Create(&referral).Error; err != nil {
				stdLog.Printf("Failed to create referral: %v", err)
			} else {
				stdLog.Println("Created referral: maria -> joao")
			}
		} else {
			stdLog.Println("Referral already exists: maria -> joao")
		}
	}

	// 默认佣金分配配置
	seedSetting(stdLog.Printf, constants.SettingKeyCommissionConfig, map[string]interface{}{
		"fee_rate_percent": "5.00",
		"cashback_percent": "2.00",
		"referral_percent": "1.00",
	})
	seedSetting(stdLog.Printf, constants.SettingKeyWithdrawalConfig, map[string]interface{}{
		"min_amount": "20.00",
	})
	seedSetting(stdLog.Printf, constants.SettingKeyReferralConfig, map[string]interface{}{
		"min_transaction_amount": "50.00",
	})

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 1 Merchant (loja@vale-cashback.local)")
	fmt.Println("- 2 Clients (maria referred joao)")
	fmt.Println("- Commission / withdrawal / referral settings")
	fmt.Printf("- Password for all demo accounts: %s\n", demoPassword)
}

func seedSetting(printf func(format string, v ...interface{}), key string, value map[string]interface{}) {
	var setting models.Setting
	if err := models.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		setting = models.Setting{
			Key:       key,
			ValueJSON: models.JSON(value),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			printf("Failed to create setting %s: %v", key, err)
			return
		}
		printf("Created setting: %s", key)
		return
	}
	printf("Setting already exists: %s", key)
}
