package models

import "time"

// Transfer 用户间余额转账记录
type Transfer struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                  // 主键
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`                       // 转出用户ID
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`                     // 转入用户ID
	Amount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`   // 转账金额
	Status     string    `gorm:"type:varchar(20);not null;index" json:"status"`         // 状态
	Reference  string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"` // 幂等引用
	Remark     string    `gorm:"type:varchar(255)" json:"remark"`                       // 备注
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                               // 更新时间

	Sender   User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`     // 转出用户
	Receiver User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"` // 转入用户
}

// TableName 指定表名
func (Transfer) TableName() string {
	return "transfers"
}
