package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vale-cashback/api/internal/config"
	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:             "unit-test-secret-key-0123456789abcdef",
			ExpireHours:           24,
			RememberMeExpireHours: 168,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		},
	}
}

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "auth_service_test")
	return NewAuthService(testAuthConfig(), repository.NewUserRepository(db)), db
}

func createTestUserWithPassword(t *testing.T, svc *AuthService, db *gorm.DB, id uint, password string) *models.User {
	t.Helper()
	user := createCashbackTestUser(t, db, id, constants.RoleClient)
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
		t.Fatalf("store hash failed: %v", err)
	}
	user.PasswordHash = hash
	return user
}

func TestAuthLogin(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestUserWithPassword(t, svc, db, 1, "Cashback123")
	meta := LoginMeta{ClientIP: "127.0.0.1", UserAgent: "go-test", RequestID: "req-1"}

	user, token, expiresAt, err := svc.Login(LoginInput{
		Email:    "USER_1@example.com",
		Password: "Cashback123",
	}, meta)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != 1 || token == "" {
		t.Fatalf("unexpected login result")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last_login_at not recorded")
	}
	if remaining := time.Until(expiresAt); remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Fatalf("unexpected expiry window: %s", remaining)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != 1 || claims.Role != constants.RoleClient {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var logs []models.UserLoginLog
	if err := db.Where("user_id = ?", 1).Find(&logs).Error; err != nil {
		t.Fatalf("load login logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != constants.LoginLogStatusSuccess {
		t.Fatalf("success login log missing: %+v", logs)
	}
	if logs[0].ClientIP != "127.0.0.1" || logs[0].RequestID != "req-1" {
		t.Fatalf("login log meta not recorded: %+v", logs[0])
	}
}

func TestAuthLoginRememberMe(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestUserWithPassword(t, svc, db, 2, "Cashback123")

	_, _, expiresAt, err := svc.Login(LoginInput{
		Email:      "user_2@example.com",
		Password:   "Cashback123",
		RememberMe: true,
	}, LoginMeta{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 167*time.Hour {
		t.Fatalf("remember-me expiry not extended: %s", remaining)
	}
}

func TestAuthLoginFailures(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createTestUserWithPassword(t, svc, db, 3, "Cashback123")

	if _, _, _, err := svc.Login(LoginInput{Email: "nobody@example.com", Password: "x"}, LoginMeta{}); err != ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown email, got: %v", err)
	}
	if _, _, _, err := svc.Login(LoginInput{Email: "user_3@example.com", Password: "wrong"}, LoginMeta{}); err != ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for wrong password, got: %v", err)
	}

	if err := db.Model(user).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login(LoginInput{Email: "user_3@example.com", Password: "Cashback123"}, LoginMeta{}); err != ErrUserDisabled {
		t.Fatalf("expected disabled, got: %v", err)
	}

	var count int64
	if err := db.Model(&models.UserLoginLog{}).Where("status = ?", constants.LoginLogStatusFailed).Count(&count).Error; err != nil {
		t.Fatalf("count failed logs failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 failed login logs, got %d", count)
	}
}

func TestAuthChangePassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createTestUserWithPassword(t, svc, db, 4, "Cashback123")
	versionBefore := user.TokenVersion

	if err := svc.ChangePassword(4, "wrong", "NewSecret123"); err != ErrInvalidCredentials {
		t.Fatalf("expected invalid old password, got: %v", err)
	}
	if err := svc.ChangePassword(4, "Cashback123", "weak"); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected policy violation, got: %v", err)
	}
	if err := svc.ChangePassword(4, "Cashback123", "NewSecret123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var updated models.User
	if err := db.First(&updated, 4).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if updated.TokenVersion != versionBefore+1 {
		t.Fatalf("token version not bumped: %d", updated.TokenVersion)
	}
	if updated.TokenInvalidBefore == nil {
		t.Fatalf("token_invalid_before not set")
	}
	if err := svc.VerifyPassword(updated.PasswordHash, "NewSecret123"); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}

	// 旧 Token 因版本号变化而失效
	if _, _, _, err := svc.Login(LoginInput{Email: "user_4@example.com", Password: "Cashback123"}, LoginMeta{}); err != ErrInvalidCredentials {
		t.Fatalf("old password still accepted: %v", err)
	}
}

func TestAuthInvalidateSessions(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createTestUserWithPassword(t, svc, db, 5, "Cashback123")
	versionBefore := user.TokenVersion

	if err := svc.InvalidateSessions(5); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	var updated models.User
	if err := db.First(&updated, 5).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if updated.TokenVersion != versionBefore+1 || updated.TokenInvalidBefore == nil {
		t.Fatalf("sessions not invalidated: %+v", updated)
	}

	if err := svc.InvalidateSessions(404); err != ErrUserNotFound {
		t.Fatalf("expected user not found, got: %v", err)
	}
}

func TestAuthParseJWTRejectsTampering(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createTestUserWithPassword(t, svc, db, 6, "Cashback123")

	token, _, err := svc.GenerateJWT(user, false)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := svc.ParseJWT(token); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Fatalf("tampered token accepted")
	}

	other := NewAuthService(&config.Config{
		JWT: config.JWTConfig{SecretKey: "another-secret-key-needs-32-bytes!", ExpireHours: 1},
	}, nil)
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}
