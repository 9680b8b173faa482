package models

import "time"

// TransactionItem 交易明细行
// item_type=purchase 为商户上送的购物明细；其余类型为结算拆分的审计行。
type TransactionItem struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                     // 主键
	TransactionID uint      `gorm:"not null;index" json:"transaction_id"`                     // 关联交易ID
	ItemType      string    `gorm:"type:varchar(20);not null;index" json:"item_type"`         // 明细类型（purchase/platform_fee/cashback/referral_bonus）
	Name          string    `gorm:"type:varchar(128);not null" json:"name"`                   // 商品/服务名称
	Quantity      int       `gorm:"not null;default:1" json:"quantity"`                       // 数量
	UnitPrice     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价
	Subtotal      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`    // 小计
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (TransactionItem) TableName() string {
	return "transaction_items"
}
