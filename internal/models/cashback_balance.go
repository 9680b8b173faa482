package models

import (
	"time"

	"gorm.io/gorm"
)

// CashbackBalance 返现余额账户（与 users 一对一）
type CashbackBalance struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                       // 主键
	UserID      uint           `gorm:"not null;uniqueIndex" json:"user_id"`                        // 关联用户ID
	Balance     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`       // 当前可用余额
	TotalEarned Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earned"`  // 累计入账
	TotalSpent  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_spent"`   // 累计出账
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (CashbackBalance) TableName() string {
	return "cashback_balances"
}

// BalanceEntry 余额流水（每次余额变动一条，余额快照可追溯）
type BalanceEntry struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID       uint      `gorm:"not null;index" json:"user_id"`                               // 关联用户ID
	Type         string    `gorm:"type:varchar(32);not null;index" json:"type"`                 // 流水类型
	Direction    string    `gorm:"type:varchar(8);not null" json:"direction"`                   // 方向（in/out）
	Amount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 变动金额（正数）
	BalanceAfter Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`  // 变动后余额
	Reference    string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"`     // 幂等引用（业务侧唯一）
	Remark       string    `gorm:"type:varchar(255)" json:"remark"`                             // 备注
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                     // 记录时间
}

// TableName 指定表名
func (BalanceEntry) TableName() string {
	return "balance_entries"
}
