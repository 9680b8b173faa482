package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest 提现申请表
// 说明：pending 金额计入占用额度；rejected/completed/canceled 为终态，不允许再次流转。
type WithdrawalRequest struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // 主键
	UserID        uint           `gorm:"not null;index" json:"user_id"`                       // 申请用户ID
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 提现金额
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`       // 状态（pending/approved/rejected/completed/canceled）
	Method        string         `gorm:"type:varchar(20);not null" json:"method"`             // 收款方式（bank/pix）
	AccountDetail JSON           `gorm:"type:json" json:"account_detail"`                     // 收款账户信息
	ReviewNote    string         `gorm:"type:varchar(255)" json:"review_note"`                // 审核备注
	ReviewedBy    *uint          `gorm:"index" json:"reviewed_by,omitempty"`                  // 审核管理员ID
	ReviewedAt    *time.Time     `gorm:"index" json:"reviewed_at,omitempty"`                  // 审核时间
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at,omitempty"`                 // 打款完成时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 申请用户
}

// TableName 指定表名
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// IsTerminal 判断是否处于终态
func (w *WithdrawalRequest) IsTerminal() bool {
	return w.Status == "rejected" || w.Status == "completed" || w.Status == "canceled"
}
