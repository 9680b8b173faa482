package models

import "time"

// Notification 站内通知
type Notification struct {
	ID        uint       `gorm:"primarykey" json:"id"`                        // 主键
	UserID    uint       `gorm:"not null;index" json:"user_id"`               // 接收用户ID
	Type      string     `gorm:"type:varchar(32);not null;index" json:"type"` // 通知类型
	Title     string     `gorm:"type:varchar(128);not null" json:"title"`     // 标题
	Body      string     `gorm:"type:text" json:"body"`                       // 内容
	Payload   JSON       `gorm:"type:json" json:"payload"`                    // 结构化附加数据
	ReadAt    *time.Time `gorm:"index" json:"read_at,omitempty"`              // 已读时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
