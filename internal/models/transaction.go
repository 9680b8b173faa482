package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 消费交易表（返现结算的事实来源）
// 说明：platform_fee + merchant_net 必须精确等于 amount，余数计入 merchant_net。
type Transaction struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	ClientID        uint           `gorm:"not null;index" json:"client_id"`                               // 客户用户ID
	MerchantID      uint           `gorm:"not null;index" json:"merchant_id"`                             // 商户用户ID
	Type            string         `gorm:"type:varchar(20);not null;index" json:"type"`                   // 交易类型（purchase/qr_payment）
	Status          string         `gorm:"type:varchar(20);not null;index" json:"status"`                 // 交易状态
	Amount          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`           // 交易总额
	PlatformFee     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"platform_fee"`     // 平台手续费
	CashbackAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cashback_amount"`  // 客户返现金额
	ReferralBonus   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"referral_bonus"`   // 推荐人奖励金额（未触发为0）
	MerchantNet     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"merchant_net"`     // 商户净入账
	FeeRatePercent  Money          `gorm:"type:decimal(10,2);not null;default:0" json:"fee_rate_percent"` // 结算时平台费率快照
	CashbackPercent Money          `gorm:"type:decimal(10,2);not null;default:0" json:"cashback_percent"` // 结算时返现比例快照
	ReferralPercent Money          `gorm:"type:decimal(10,2);not null;default:0" json:"referral_percent"` // 结算时推荐奖励比例快照
	Reference       string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"`       // 幂等引用（重复提交返回原交易）
	QRCodeID        *uint          `gorm:"index" json:"qr_code_id,omitempty"`                             // 关联二维码（仅 qr_payment）
	Description     string         `gorm:"type:varchar(255)" json:"description"`                          // 交易描述
	SettledAt       *time.Time     `gorm:"index" json:"settled_at,omitempty"`                             // 结算完成时间
	CanceledAt      *time.Time     `json:"canceled_at,omitempty"`                                         // 取消时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Client   User              `gorm:"foreignKey:ClientID" json:"client,omitempty"`     // 客户
	Merchant User              `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"` // 商户
	QRCode   *QRCode           `gorm:"foreignKey:QRCodeID" json:"qr_code,omitempty"`    // 关联二维码
	Items    []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"` // 交易明细
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
