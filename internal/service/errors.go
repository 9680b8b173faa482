package service

import "errors"

// 用户与鉴权相关错误
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserDisabled            = errors.New("user disabled")
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrReferralCodeInvalid     = errors.New("referral code invalid")
	ErrPasswordPolicy          = errors.New("password does not meet policy")
	ErrCaptchaRequired         = errors.New("captcha required")
	ErrCaptchaInvalid          = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid    = errors.New("captcha config invalid")
	ErrMerchantNotFound        = errors.New("merchant not found")
	ErrMerchantNotApproved     = errors.New("merchant not approved")
	ErrRoleInvalid             = errors.New("role invalid")
	ErrMerchantProfileRequired = errors.New("merchant profile required")
)

// 余额相关错误
var (
	ErrBalanceNotFound          = errors.New("cashback balance not found")
	ErrInsufficientBalance      = errors.New("insufficient cashback balance")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrBalanceUpdateFailed      = errors.New("balance update failed")
	ErrBalanceEntryCreateFailed = errors.New("balance entry create failed")
)

// 交易与结算相关错误
var (
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionCreateFailed = errors.New("transaction create failed")
	ErrCommissionRateInvalid   = errors.New("commission rates invalid")
)

// 二维码相关错误
var (
	ErrQRCodeNotFound    = errors.New("qr code not found")
	ErrQRCodeExpired     = errors.New("qr code expired")
	ErrQRCodeAlreadyUsed = errors.New("qr code already used")
	ErrQRCodeSelfPayment = errors.New("cannot pay own qr code")
)

// 提现相关错误
var (
	ErrWithdrawalNotFound      = errors.New("withdrawal request not found")
	ErrWithdrawalNotPending    = errors.New("withdrawal request not pending")
	ErrWithdrawalTerminal      = errors.New("withdrawal request in terminal state")
	ErrWithdrawalBelowMinimum  = errors.New("withdrawal amount below minimum")
	ErrWithdrawalInvalidAction = errors.New("withdrawal review action invalid")
)

// 转账相关错误
var (
	ErrTransferSelf      = errors.New("cannot transfer to self")
	ErrRecipientNotFound = errors.New("transfer recipient not found")
)

// 通知相关错误
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// 设置相关错误
var (
	ErrSettingInvalid = errors.New("setting payload invalid")
)

// 仪表盘相关错误
var (
	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
)
