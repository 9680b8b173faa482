package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/cache"
	"github.com/vale-cashback/api/internal/config"
	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"gorm.io/gorm"
)

const referralCodeLength = 8

// UserService 用户注册与资料服务
type UserService struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	merchantRepo repository.MerchantRepository
	referralRepo repository.ReferralRepository
	authSvc      *AuthService
}

// NewUserService 创建用户服务
func NewUserService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	merchantRepo repository.MerchantRepository,
	referralRepo repository.ReferralRepository,
	authSvc *AuthService,
) *UserService {
	return &UserService{
		cfg:          cfg,
		userRepo:     userRepo,
		merchantRepo: merchantRepo,
		referralRepo: referralRepo,
		authSvc:      authSvc,
	}
}

// MerchantRegisterInput 商户注册附加资料
type MerchantRegisterInput struct {
	StoreName   string
	Category    string
	TaxID       string
	Address     string
	City        string
	Description string
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email        string
	Password     string
	DisplayName  string
	Phone        string
	Role         string
	ReferralCode string
	Locale       string
	Merchant     *MerchantRegisterInput
}

// Register 注册用户（被推荐人在注册时建立 pending 推荐关系）
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.RoleClient
	}
	if role != constants.RoleClient && role != constants.RoleMerchant {
		return nil, ErrRoleInvalid
	}

	if err := s.authSvc.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	var referrer *models.User
	if code := strings.ToUpper(strings.TrimSpace(input.ReferralCode)); code != "" {
		referrer, err = s.userRepo.GetByReferralCode(code)
		if err != nil {
			return nil, err
		}
		if referrer == nil || referrer.Status != constants.UserStatusActive {
			return nil, ErrReferralCodeInvalid
		}
	}

	var merchantInput *MerchantRegisterInput
	if role == constants.RoleMerchant {
		if input.Merchant == nil || strings.TrimSpace(input.Merchant.StoreName) == "" {
			return nil, ErrMerchantProfileRequired
		}
		merchantInput = input.Merchant
	}

	passwordHash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	locale := strings.TrimSpace(input.Locale)
	if !isSupportedLocale(locale) {
		locale = constants.LocalePtBR
	}

	var user *models.User
	if err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)

		created, createErr := s.createUserWithReferralCode(userRepo, &models.User{
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  strings.TrimSpace(input.DisplayName),
			Phone:        strings.TrimSpace(input.Phone),
			Role:         role,
			Locale:       locale,
			Status:       constants.UserStatusActive,
		})
		if createErr != nil {
			return createErr
		}
		user = created

		if merchantInput != nil {
			profile := &models.MerchantProfile{
				UserID:      user.ID,
				StoreName:   strings.TrimSpace(merchantInput.StoreName),
				Category:    strings.TrimSpace(merchantInput.Category),
				TaxID:       strings.TrimSpace(merchantInput.TaxID),
				Address:     strings.TrimSpace(merchantInput.Address),
				City:        strings.TrimSpace(merchantInput.City),
				Description: strings.TrimSpace(merchantInput.Description),
			}
			if err := s.merchantRepo.WithTx(tx).Create(profile); err != nil {
				return err
			}
			user.MerchantProfile = profile
		}

		if referrer != nil {
			user.ReferredByID = &referrer.ID
			if err := userRepo.Update(user); err != nil {
				return err
			}
			if err := s.referralRepo.WithTx(tx).Create(&models.Referral{
				ReferrerID: referrer.ID,
				ReferredID: user.ID,
				Status:     constants.ReferralStatusPending,
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return user, nil
}

// GetProfile 获取用户资料（商户附带店铺资料）
func (s *UserService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role == constants.RoleMerchant {
		profile, err := s.merchantRepo.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
		user.MerchantProfile = profile
	}
	return user, nil
}

// ProfileUpdateInput 资料更新输入
type ProfileUpdateInput struct {
	DisplayName *string
	Phone       *string
	Locale      *string
}

// UpdateProfile 更新用户基础资料
func (s *UserService) UpdateProfile(userID uint, input ProfileUpdateInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Locale != nil {
		locale := strings.TrimSpace(*input.Locale)
		if !isSupportedLocale(locale) {
			return nil, ErrSettingInvalid
		}
		user.Locale = locale
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// MerchantProfileUpdateInput 商户资料更新输入
type MerchantProfileUpdateInput struct {
	StoreName   *string
	Category    *string
	TaxID       *string
	Address     *string
	City        *string
	LogoURL     *string
	Description *string
}

// UpdateMerchantProfile 更新商户店铺资料
func (s *UserService) UpdateMerchantProfile(userID uint, input MerchantProfileUpdateInput) (*models.MerchantProfile, error) {
	profile, err := s.merchantRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantNotFound
	}

	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, ErrMerchantProfileRequired
		}
		profile.StoreName = name
	}
	if input.Category != nil {
		profile.Category = strings.TrimSpace(*input.Category)
	}
	if input.TaxID != nil {
		profile.TaxID = strings.TrimSpace(*input.TaxID)
	}
	if input.Address != nil {
		profile.Address = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		profile.City = strings.TrimSpace(*input.City)
	}
	if input.LogoURL != nil {
		profile.LogoURL = strings.TrimSpace(*input.LogoURL)
	}
	if input.Description != nil {
		profile.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.merchantRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ApproveMerchantInput 商户审核输入
type ApproveMerchantInput struct {
	ProfileID      uint
	ReviewerID     uint
	CommissionRate *models.Money // 商户级费率，nil 时保持不变
}

// ApproveMerchant 管理端审核通过商户（重复审核为幂等操作）
// 审核通过前商户不可收款、不可生成收款码。
func (s *UserService) ApproveMerchant(input ApproveMerchantInput) (*models.MerchantProfile, error) {
	profile, err := s.merchantRepo.GetByID(input.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantNotFound
	}

	if input.CommissionRate != nil {
		rate := input.CommissionRate.Decimal.Round(2)
		if rate.IsNegative() {
			return nil, ErrSettingInvalid
		}
		profile.CommissionRate = models.NewMoneyFromDecimal(rate)
	}
	if !profile.Approved {
		now := time.Now()
		profile.Approved = true
		profile.ApprovedBy = &input.ReviewerID
		profile.ApprovedAt = &now
	}
	profile.UpdatedAt = time.Now()
	if err := s.merchantRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// List 管理端用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// ListMerchants 管理端商户列表
func (s *UserService) ListMerchants(filter repository.MerchantListFilter) ([]models.MerchantProfile, int64, error) {
	return s.merchantRepo.List(filter)
}

// SetStatus 管理端启用/禁用用户（禁用时同步失效全部会话）
func (s *UserService) SetStatus(userID uint, status string) (*models.User, error) {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrSettingInvalid
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == status {
		return user, nil
	}

	user.Status = status
	if status == constants.UserStatusDisabled {
		now := time.Now()
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

// ListReferrals 查询推荐关系
func (s *UserService) ListReferrals(filter repository.ReferralListFilter) ([]models.Referral, int64, error) {
	return s.referralRepo.List(filter)
}

// ReferralSummary 推荐概要
type ReferralSummary struct {
	ReferralCode   string `json:"referral_code"`
	TotalReferred  int64  `json:"total_referred"`
	TotalQualified int64  `json:"total_qualified"`
}

// GetReferralSummary 获取用户的推荐概要
func (s *UserService) GetReferralSummary(userID uint) (*ReferralSummary, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	total, err := s.referralRepo.CountByReferrer(userID, "")
	if err != nil {
		return nil, err
	}
	qualified, err := s.referralRepo.CountByReferrer(userID, constants.ReferralStatusQualified)
	if err != nil {
		return nil, err
	}
	return &ReferralSummary{
		ReferralCode:   user.ReferralCode,
		TotalReferred:  total,
		TotalQualified: qualified,
	}, nil
}

func (s *UserService) createUserWithReferralCode(repo *repository.GormUserRepository, user *models.User) (*models.User, error) {
	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		user.ReferralCode = code
		if err := repo.Create(user); err != nil {
			if isUniqueViolation(err) {
				// 推荐码撞库时换码重试；邮箱冲突也会走到这里，重试后仍失败
				user.ID = 0
				continue
			}
			return nil, err
		}
		return user, nil
	}
	return nil, ErrEmailTaken
}

func generateReferralCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(referralCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func isSupportedLocale(locale string) bool {
	for _, supported := range constants.SupportedLocales {
		if locale == supported {
			return true
		}
	}
	return false
}
