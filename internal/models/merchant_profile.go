package models

import (
	"time"

	"gorm.io/gorm"
)

// MerchantProfile 商户资料表（与 users 一对一，仅 merchant 角色持有）
// 注册后默认未审核，审核通过前不允许收款与生成收款码。
type MerchantProfile struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	UserID         uint           `gorm:"not null;uniqueIndex" json:"user_id"`                           // 关联用户ID
	StoreName      string         `gorm:"type:varchar(128);not null" json:"store_name"`                  // 店铺名称
	Category       string         `gorm:"type:varchar(64);index" json:"category"`                        // 经营类目
	TaxID          string         `gorm:"type:varchar(32);index" json:"tax_id"`                          // 税号（CNPJ）
	Address        string         `gorm:"type:varchar(255)" json:"address"`                              // 地址
	City           string         `gorm:"type:varchar(64)" json:"city"`                                  // 城市
	LogoURL        string         `gorm:"type:varchar(255)" json:"logo_url"`                             // 店铺Logo
	Description    string         `gorm:"type:text" json:"description"`                                  // 店铺简介
	Approved       bool           `gorm:"not null;default:false;index" json:"approved"`                  // 审核通过标记
	ApprovedBy     *uint          `gorm:"index" json:"approved_by,omitempty"`                            // 审核管理员ID
	ApprovedAt     *time.Time     `gorm:"index" json:"approved_at,omitempty"`                            // 审核时间
	CommissionRate Money          `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`   // 商户级费率（0 表示使用全局费率）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 关联用户
}

// CanTransact 判断商户是否可以收款
func (m *MerchantProfile) CanTransact() bool {
	return m != nil && m.Approved
}

// TableName 指定表名
func (MerchantProfile) TableName() string {
	return "merchant_profiles"
}
