package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Role     string
	Status   string
	Search   string
}

// MerchantListFilter 查询商户列表的过滤条件
type MerchantListFilter struct {
	Page     int
	PageSize int
	Category string
	City     string
	Search   string
}

// TransactionListFilter 查询交易列表的过滤条件
type TransactionListFilter struct {
	Page        int
	PageSize    int
	ClientID    uint
	MerchantID  uint
	Type        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	WithItems   bool
}

// BalanceEntryListFilter 查询余额流水的过滤条件
type BalanceEntryListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TransferListFilter 查询转账记录的过滤条件
type TransferListFilter struct {
	Page     int
	PageSize int
	UserID   uint // 同时匹配转出与转入
}

// ReferralListFilter 查询推荐关系的过滤条件
type ReferralListFilter struct {
	Page       int
	PageSize   int
	ReferrerID uint
	Status     string
}

// QRCodeListFilter 查询二维码列表的过滤条件
type QRCodeListFilter struct {
	Page       int
	PageSize   int
	MerchantID uint
	Status     string
}

// WithdrawalListFilter 查询提现申请的过滤条件
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Type       string
	UnreadOnly bool
}

// LoginLogListFilter 查询登录日志的过滤条件
type LoginLogListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Email    string
	Status   string
}
