package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral 推荐关系表（每个被推荐人至多一条，奖励至多发放一次）
type Referral struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	ReferrerID    uint           `gorm:"not null;index" json:"referrer_id"`                         // 推荐人用户ID
	ReferredID    uint           `gorm:"not null;uniqueIndex" json:"referred_id"`                   // 被推荐人用户ID
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`             // 状态（pending/qualified）
	BonusAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"bonus_amount"` // 已发放奖励金额
	TransactionID *uint          `gorm:"index" json:"transaction_id,omitempty"`                     // 触发奖励的交易ID
	QualifiedAt   *time.Time     `gorm:"index" json:"qualified_at,omitempty"`                       // 奖励发放时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Referrer User `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"` // 推荐人
	Referred User `gorm:"foreignKey:ReferredID" json:"referred,omitempty"` // 被推荐人
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}
