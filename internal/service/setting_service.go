package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/cache"
	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	commissionCacheKey = "setting:commission_rates"
	commissionCacheTTL = 5 * time.Minute
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, models.JSON(value))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// CommissionSetting 佣金分配配置（百分比）
type CommissionSetting struct {
	FeeRatePercent  decimal.Decimal `json:"fee_rate_percent"`  // 平台手续费比例
	CashbackPercent decimal.Decimal `json:"cashback_percent"`  // 客户返现比例
	ReferralPercent decimal.Decimal `json:"referral_percent"`  // 推荐奖励比例
}

// CommissionDefaultSetting 默认佣金分配配置
func CommissionDefaultSetting() CommissionSetting {
	return CommissionSetting{
		FeeRatePercent:  decimal.NewFromInt(5),
		CashbackPercent: decimal.NewFromInt(2),
		ReferralPercent: decimal.NewFromInt(1),
	}
}

// Validate 校验佣金配置：各比例非负，返现与推荐奖励之和不超过平台费率。
func (c CommissionSetting) Validate() error {
	hundred := decimal.NewFromInt(100)
	if c.FeeRatePercent.IsNegative() || c.FeeRatePercent.GreaterThan(hundred) {
		return ErrCommissionRateInvalid
	}
	if c.CashbackPercent.IsNegative() || c.ReferralPercent.IsNegative() {
		return ErrCommissionRateInvalid
	}
	if c.CashbackPercent.Add(c.ReferralPercent).GreaterThan(c.FeeRatePercent) {
		return ErrCommissionRateInvalid
	}
	return nil
}

// GetCommissionSetting 获取佣金分配配置（缺失字段回退默认值）
// 结算路径每笔都读取费率，命中 Redis 缓存时不落库；更新时失效。
func (s *SettingService) GetCommissionSetting() (CommissionSetting, error) {
	setting := CommissionDefaultSetting()
	if s == nil {
		return setting, nil
	}

	var cached CommissionSetting
	if hit, err := cache.GetJSON(context.Background(), commissionCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	value, err := s.GetByKey(constants.SettingKeyCommissionConfig)
	if err != nil {
		return setting, err
	}
	if value == nil {
		return setting, nil
	}
	if raw, ok := value["fee_rate_percent"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil {
			setting.FeeRatePercent = parsed
		}
	}
	if raw, ok := value["cashback_percent"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil {
			setting.CashbackPercent = parsed
		}
	}
	if raw, ok := value["referral_percent"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil {
			setting.ReferralPercent = parsed
		}
	}
	_ = cache.SetJSON(context.Background(), commissionCacheKey, setting, commissionCacheTTL)
	return setting, nil
}

// UpdateCommissionSetting 更新佣金分配配置
func (s *SettingService) UpdateCommissionSetting(setting CommissionSetting) (CommissionSetting, error) {
	if err := setting.Validate(); err != nil {
		return CommissionSetting{}, err
	}
	_, err := s.Update(constants.SettingKeyCommissionConfig, map[string]interface{}{
		"fee_rate_percent": setting.FeeRatePercent.StringFixed(2),
		"cashback_percent": setting.CashbackPercent.StringFixed(2),
		"referral_percent": setting.ReferralPercent.StringFixed(2),
	})
	if err != nil {
		return CommissionSetting{}, err
	}
	_ = cache.Del(context.Background(), commissionCacheKey)
	return setting, nil
}

// WithdrawalSetting 提现配置
type WithdrawalSetting struct {
	MinAmount decimal.Decimal `json:"min_amount"` // 最低提现金额
}

// WithdrawalDefaultSetting 默认提现配置
func WithdrawalDefaultSetting() WithdrawalSetting {
	return WithdrawalSetting{MinAmount: decimal.NewFromInt(20)}
}

// GetWithdrawalSetting 获取提现配置
func (s *SettingService) GetWithdrawalSetting() (WithdrawalSetting, error) {
	setting := WithdrawalDefaultSetting()
	if s == nil {
		return setting, nil
	}
	value, err := s.GetByKey(constants.SettingKeyWithdrawalConfig)
	if err != nil {
		return setting, err
	}
	if value == nil {
		return setting, nil
	}
	if raw, ok := value["min_amount"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && !parsed.IsNegative() {
			setting.MinAmount = parsed
		}
	}
	return setting, nil
}

// UpdateWithdrawalSetting 更新提现配置
func (s *SettingService) UpdateWithdrawalSetting(setting WithdrawalSetting) (WithdrawalSetting, error) {
	if setting.MinAmount.IsNegative() {
		return WithdrawalSetting{}, ErrSettingInvalid
	}
	_, err := s.Update(constants.SettingKeyWithdrawalConfig, map[string]interface{}{
		"min_amount": setting.MinAmount.StringFixed(2),
	})
	if err != nil {
		return WithdrawalSetting{}, err
	}
	return setting, nil
}

// ReferralSetting 推荐奖励配置
type ReferralSetting struct {
	MinTransactionAmount decimal.Decimal `json:"min_transaction_amount"` // 触发奖励的最低交易金额
}

// ReferralDefaultSetting 默认推荐奖励配置
func ReferralDefaultSetting() ReferralSetting {
	return ReferralSetting{MinTransactionAmount: decimal.Zero}
}

// GetReferralSetting 获取推荐奖励配置
func (s *SettingService) GetReferralSetting() (ReferralSetting, error) {
	setting := ReferralDefaultSetting()
	if s == nil {
		return setting, nil
	}
	value, err := s.GetByKey(constants.SettingKeyReferralConfig)
	if err != nil {
		return setting, err
	}
	if value == nil {
		return setting, nil
	}
	if raw, ok := value["min_transaction_amount"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && !parsed.IsNegative() {
			setting.MinTransactionAmount = parsed
		}
	}
	return setting, nil
}

// UpdateReferralSetting 更新推荐奖励配置
func (s *SettingService) UpdateReferralSetting(setting ReferralSetting) (ReferralSetting, error) {
	if setting.MinTransactionAmount.IsNegative() {
		return ReferralSetting{}, ErrSettingInvalid
	}
	_, err := s.Update(constants.SettingKeyReferralConfig, map[string]interface{}{
		"min_transaction_amount": setting.MinTransactionAmount.StringFixed(2),
	})
	if err != nil {
		return ReferralSetting{}, err
	}
	return setting, nil
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type")
	}
}

// SiteSetting 站点展示配置
type SiteSetting struct {
	SiteName string `json:"site_name"` // 站点名称
	Currency string `json:"currency"`  // 展示币种
}

// SiteDefaultSetting 默认站点配置
func SiteDefaultSetting() SiteSetting {
	return SiteSetting{
		SiteName: "Vale Cashback",
		Currency: constants.SiteCurrencyDefault,
	}
}

// GetSiteSetting 获取站点配置
func (s *SettingService) GetSiteSetting() (SiteSetting, error) {
	setting := SiteDefaultSetting()
	if s == nil {
		return setting, nil
	}
	value, err := s.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return setting, err
	}
	if value == nil {
		return setting, nil
	}
	if raw, ok := value["site_name"].(string); ok && strings.TrimSpace(raw) != "" {
		setting.SiteName = strings.TrimSpace(raw)
	}
	if raw, ok := value["currency"].(string); ok && strings.TrimSpace(raw) != "" {
		setting.Currency = strings.ToUpper(strings.TrimSpace(raw))
	}
	return setting, nil
}

// UpdateSiteSetting 更新站点配置
func (s *SettingService) UpdateSiteSetting(setting SiteSetting) (SiteSetting, error) {
	name := strings.TrimSpace(setting.SiteName)
	currency := strings.ToUpper(strings.TrimSpace(setting.Currency))
	if name == "" || len(currency) != 3 {
		return SiteSetting{}, ErrSettingInvalid
	}
	setting.SiteName = name
	setting.Currency = currency
	_, err := s.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"site_name": setting.SiteName,
		"currency":  setting.Currency,
	})
	if err != nil {
		return SiteSetting{}, err
	}
	return setting, nil
}
