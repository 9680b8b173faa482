package constants

// 用户角色常量
const (
	RoleClient   = "client"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 交易状态常量
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusCanceled  = "canceled"
	TransactionStatusRefunded  = "refunded"
)

// 交易类型常量
const (
	TransactionTypePurchase  = "purchase"
	TransactionTypeQRPayment = "qr_payment"
)

// 交易明细行类型常量
const (
	TransactionItemTypePurchase      = "purchase"
	TransactionItemTypePlatformFee   = "platform_fee"
	TransactionItemTypeCashback      = "cashback"
	TransactionItemTypeReferralBonus = "referral_bonus"
)

// 余额流水类型常量
const (
	BalanceEntryTypeCashback       = "cashback"
	BalanceEntryTypeSaleSettlement = "sale_settlement"
	BalanceEntryTypeReferralBonus  = "referral_bonus"
	BalanceEntryTypeTransferIn     = "transfer_in"
	BalanceEntryTypeTransferOut    = "transfer_out"
	BalanceEntryTypeWithdrawal     = "withdrawal"
	BalanceEntryTypeWithdrawRefund = "withdrawal_refund"
	BalanceEntryTypeAdminAdjust    = "admin_adjust"
)

// 余额流水方向常量
const (
	BalanceDirectionIn  = "in"
	BalanceDirectionOut = "out"
)

// 二维码状态常量
const (
	QRCodeStatusActive  = "active"
	QRCodeStatusUsed    = "used"
	QRCodeStatusExpired = "expired"
)

// 提现状态常量
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusCanceled  = "canceled"
)

// 提现审核动作常量
const (
	WithdrawalActionApprove  = "approve"
	WithdrawalActionReject   = "reject"
	WithdrawalActionComplete = "complete"
)

// 提现收款方式常量
const (
	WithdrawalMethodBank = "bank"
	WithdrawalMethodPix  = "pix"
)

// 转账状态常量
const (
	TransferStatusCompleted = "completed"
)

// 推荐关系状态常量
const (
	ReferralStatusPending   = "pending"
	ReferralStatusQualified = "qualified"
)

// 通知类型常量
const (
	NotificationTypeCashbackReceived  = "cashback_received"
	NotificationTypeReferralBonus     = "referral_bonus"
	NotificationTypeTransferReceived  = "transfer_received"
	NotificationTypeWithdrawalUpdated = "withdrawal_updated"
	NotificationTypePaymentReceived   = "payment_received"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskNotificationDispatch = "notification:dispatch"
	TaskQRCodeExpireSweep    = "qr_code:expire_sweep"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "vcb"
)

// 设置键常量
const (
	SettingKeyCommissionConfig = "commission_config"
	SettingKeyWithdrawalConfig = "withdrawal_config"
	SettingKeyReferralConfig   = "referral_config"
	SettingKeySiteConfig       = "site_config"
)

// 币种常量
const (
	SiteCurrencyDefault = "BRL"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocalePtBR = "pt-BR"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocalePtBR, LocaleEnUS}

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaRequired    = "captcha_required"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)
