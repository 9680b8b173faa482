package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vale-cashback/api/internal/config"
	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if generated := strings.TrimSpace(w2.Header().Get(requestIDHeader)); generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestUserJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(UserJWTAuthMiddleware("", nil))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func openAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserLoginLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func issueTestToken(t *testing.T, secret string, user *models.User) string {
	t.Helper()
	authSvc := service.NewAuthService(&config.Config{
		JWT: config.JWTConfig{SecretKey: secret, ExpireHours: 1},
	}, nil)
	token, _, err := authSvc.GenerateJWT(user, false)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return token
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "router-test-secret-key-0123456789ab"

	db := openAuthTestDB(t)
	user := &models.User{
		ID:           1,
		Email:        "maria@example.com",
		PasswordHash: "hash",
		Role:         constants.RoleClient,
		ReferralCode: "CODE0001",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(secret, repository.NewUserRepository(db)))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint("user_id"),
			"role":    c.GetString(userRoleContextKey),
		})
	})

	statusCodeOf := func(token string) (int, string) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		return resp.StatusCode, w.Body.String()
	}

	// 无 Authorization 头
	if code, _ := statusCodeOf(""); code != 401 {
		t.Fatalf("missing header status_code want 401 got %d", code)
	}

	token := issueTestToken(t, secret, user)
	code, body := statusCodeOf(token)
	if code != 0 {
		t.Fatalf("valid token rejected: %s", body)
	}
	if !strings.Contains(body, `"user_id":1`) || !strings.Contains(body, `"role":"client"`) {
		t.Fatalf("identity not set in context: %s", body)
	}

	// 错误密钥签发的 Token
	if code, _ := statusCodeOf(issueTestToken(t, "another-secret-key-0123456789abcdef", user)); code != 401 {
		t.Fatalf("wrong-secret token status_code want 401 got %d", code)
	}

	// Token 版本号落后（改密/登出后撤销）
	stale := issueTestToken(t, secret, user)
	if err := db.Model(user).Update("token_version", user.TokenVersion+1).Error; err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	if code, _ := statusCodeOf(stale); code != 401 {
		t.Fatalf("stale token status_code want 401 got %d", code)
	}

	// 账号被禁用
	refreshed := &models.User{}
	if err := db.First(refreshed, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	current := issueTestToken(t, secret, refreshed)
	if err := db.Model(user).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if code, _ := statusCodeOf(current); code != 401 {
		t.Fatalf("disabled user status_code want 401 got %d", code)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(role string, set bool) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if set {
				c.Set(userRoleContextKey, role)
			}
			c.Next()
		})
		r.Use(RequireRole(constants.RoleAdmin))
		r.GET("/admin/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return r
	}

	statusCodeOf := func(r *gin.Engine) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		r.ServeHTTP(w, req)
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		return resp.StatusCode
	}

	if code := statusCodeOf(newRouter(constants.RoleAdmin, true)); code != 0 {
		t.Fatalf("admin should pass, status_code got %d", code)
	}
	if code := statusCodeOf(newRouter("Admin", true)); code != 0 {
		t.Fatalf("role match should be case-insensitive, status_code got %d", code)
	}
	if code := statusCodeOf(newRouter(constants.RoleClient, true)); code != 403 {
		t.Fatalf("client status_code want 403 got %d", code)
	}
	if code := statusCodeOf(newRouter("", false)); code != 401 {
		t.Fatalf("missing role status_code want 401 got %d", code)
	}
}

func TestIsIssuedAfterInvalidBefore(t *testing.T) {
	now := time.Now()
	issued := jwt.NewNumericDate(now)

	if !isIssuedAfterInvalidBefore(issued, nil) {
		t.Fatalf("nil invalid-before should pass")
	}
	earlier := now.Add(-time.Hour)
	if !isIssuedAfterInvalidBefore(issued, &earlier) {
		t.Fatalf("token issued after invalid-before should pass")
	}
	later := now.Add(time.Hour)
	if isIssuedAfterInvalidBefore(issued, &later) {
		t.Fatalf("token issued before invalid-before should fail")
	}
	if isIssuedAfterInvalidBefore(nil, &earlier) {
		t.Fatalf("missing issued-at should fail when invalid-before set")
	}

	if !isIssuedAfterInvalidBeforeUnix(issued, 0) {
		t.Fatalf("zero invalid-before should pass")
	}
	if isIssuedAfterInvalidBeforeUnix(issued, later.Unix()) {
		t.Fatalf("unix variant should fail for revoked token")
	}
}
