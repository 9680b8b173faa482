package models

import (
	"time"

	"gorm.io/gorm"
)

// QRCode 商户收款二维码（active -> used 恰好一次，过期后不可支付）
type QRCode struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 主键
	Code        string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`   // 对外码值（UUID）
	MerchantID  uint           `gorm:"not null;index" json:"merchant_id"`                   // 商户用户ID
	Amount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 收款金额
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"`       // 状态（active/used/expired）
	Description string         `gorm:"type:varchar(255)" json:"description"`                // 收款说明
	ExpiresAt   time.Time      `gorm:"index;not null" json:"expires_at"`                    // 过期时间
	UsedAt      *time.Time     `json:"used_at,omitempty"`                                   // 消费时间
	UsedByID    *uint          `gorm:"index" json:"used_by_id,omitempty"`                   // 支付客户ID
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间

	Merchant User  `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"` // 商户
	UsedBy   *User `gorm:"foreignKey:UsedByID" json:"used_by,omitempty"`    // 支付客户
}

// TableName 指定表名
func (QRCode) TableName() string {
	return "qr_codes"
}

// IsExpired 判断二维码是否已过期
func (q *QRCode) IsExpired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}
