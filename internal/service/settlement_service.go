package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var settlementHundred = decimal.NewFromInt(100)

// SettlementService 返现结算服务
// 单笔交易在一个事务内完成拆分入账：
// platform_fee + merchant_net 精确等于 amount，四舍五入余数全部计入 merchant_net。
type SettlementService struct {
	txnRepo         repository.TransactionRepository
	referralRepo    repository.ReferralRepository
	userRepo        repository.UserRepository
	merchantRepo    repository.MerchantRepository
	balanceSvc      *BalanceService
	settingSvc      *SettingService
	notificationSvc *NotificationService
}

// SettleItemInput 交易明细输入
type SettleItemInput struct {
	Name      string
	Quantity  int
	UnitPrice models.Money
}

// SettleInput 结算输入
type SettleInput struct {
	ClientID    uint
	MerchantID  uint
	Amount      models.Money
	Type        string
	Reference   string
	Description string
	QRCodeID    *uint
	Items       []SettleItemInput
}

// settlementOutcome 事务内结算结果，通知在事务提交后发送
type settlementOutcome struct {
	txn           *models.Transaction
	referrerID    uint
	referralBonus decimal.Decimal
	replayed      bool
}

// NewSettlementService 创建结算服务
func NewSettlementService(
	txnRepo repository.TransactionRepository,
	referralRepo repository.ReferralRepository,
	userRepo repository.UserRepository,
	merchantRepo repository.MerchantRepository,
	balanceSvc *BalanceService,
	settingSvc *SettingService,
	notificationSvc *NotificationService,
) *SettlementService {
	return &SettlementService{
		txnRepo:         txnRepo,
		referralRepo:    referralRepo,
		userRepo:        userRepo,
		merchantRepo:    merchantRepo,
		balanceSvc:      balanceSvc,
		settingSvc:      settingSvc,
		notificationSvc: notificationSvc,
	}
}

// Settle 执行一笔消费交易的结算
// reference 为幂等键：重复提交直接返回首次结算的交易。
func (s *SettlementService) Settle(input SettleInput) (*models.Transaction, error) {
	if err := s.validateParties(input.ClientID, input.MerchantID); err != nil {
		return nil, err
	}

	var outcome *settlementOutcome
	if err := s.txnRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = s.settleInTx(tx, input)
		return err
	}); err != nil {
		return nil, err
	}

	s.notifyOutcome(outcome)
	return outcome.txn, nil
}

// validateParties 校验交易双方的角色与状态
func (s *SettlementService) validateParties(clientID, merchantID uint) error {
	client, err := s.userRepo.GetByID(clientID)
	if err != nil {
		return err
	}
	if client == nil || client.Role != constants.RoleClient {
		return ErrUserNotFound
	}
	if client.Status != constants.UserStatusActive {
		return ErrUserDisabled
	}
	merchant, err := s.userRepo.GetByID(merchantID)
	if err != nil {
		return err
	}
	if merchant == nil || merchant.Role != constants.RoleMerchant || merchant.Status != constants.UserStatusActive {
		return ErrMerchantNotFound
	}
	profile, err := s.merchantRepo.GetByUserID(merchantID)
	if err != nil {
		return err
	}
	if !profile.CanTransact() {
		return ErrMerchantNotApproved
	}
	return nil
}

// settleInTx 事务内完成交易拆分与入账
func (s *SettlementService) settleInTx(tx *gorm.DB, input SettleInput) (*settlementOutcome, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	commission, err := s.settingSvc.GetCommissionSetting()
	if err != nil {
		return nil, err
	}
	referralSetting, err := s.settingSvc.GetReferralSetting()
	if err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = fmt.Sprintf("txn:%s", uuid.NewString())
	}
	txnType := strings.TrimSpace(input.Type)
	if txnType == "" {
		txnType = constants.TransactionTypePurchase
	}

	fee := amount.Mul(commission.FeeRatePercent).Div(settlementHundred).Round(2)
	cashback := amount.Mul(commission.CashbackPercent).Div(settlementHundred).Round(2)
	merchantNet := amount.Sub(fee)

	repo := s.txnRepo.WithTx(tx)
	now := time.Now()

	existing, err := repo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &settlementOutcome{txn: existing, replayed: true}, nil
	}

	txn := &models.Transaction{
		ClientID:        input.ClientID,
		MerchantID:      input.MerchantID,
		Type:            txnType,
		Status:          constants.TransactionStatusCompleted,
		Amount:          models.NewMoneyFromDecimal(amount),
		PlatformFee:     models.NewMoneyFromDecimal(fee),
		CashbackAmount:  models.NewMoneyFromDecimal(cashback),
		MerchantNet:     models.NewMoneyFromDecimal(merchantNet),
		FeeRatePercent:  models.NewMoneyFromDecimal(commission.FeeRatePercent),
		CashbackPercent: models.NewMoneyFromDecimal(commission.CashbackPercent),
		ReferralPercent: models.NewMoneyFromDecimal(commission.ReferralPercent),
		Reference:       reference,
		QRCodeID:        input.QRCodeID,
		Description:     strings.TrimSpace(input.Description),
		SettledAt:       &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repo.Create(txn); err != nil {
		return nil, ErrTransactionCreateFailed
	}

	items := make([]models.TransactionItem, 0, len(input.Items)+2)
	for _, item := range input.Items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		unitPrice := item.UnitPrice.Decimal.Round(2)
		items = append(items, models.TransactionItem{
			TransactionID: txn.ID,
			ItemType:      constants.TransactionItemTypePurchase,
			Name:          strings.TrimSpace(item.Name),
			Quantity:      quantity,
			UnitPrice:     models.NewMoneyFromDecimal(unitPrice),
			Subtotal:      models.NewMoneyFromDecimal(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
			CreatedAt:     now,
		})
	}
	// 拆分审计行：留痕每一笔分账金额
	if fee.GreaterThan(decimal.Zero) {
		items = append(items, splitLegItem(txn.ID, constants.TransactionItemTypePlatformFee, "Taxa da plataforma", fee, now))
	}
	if cashback.GreaterThan(decimal.Zero) {
		items = append(items, splitLegItem(txn.ID, constants.TransactionItemTypeCashback, "Cashback do cliente", cashback, now))
	}
	if len(items) > 0 {
		if err := repo.CreateItems(items); err != nil {
			return nil, ErrTransactionCreateFailed
		}
	}

	// 商户净入账
	if merchantNet.GreaterThan(decimal.Zero) {
		if _, _, err := s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
			UserID:    input.MerchantID,
			Amount:    models.NewMoneyFromDecimal(merchantNet),
			EntryType: constants.BalanceEntryTypeSaleSettlement,
			Reference: fmt.Sprintf("%s:merchant", reference),
			Remark:    fmt.Sprintf("交易 #%d 商户入账", txn.ID),
		}); err != nil {
			return nil, err
		}
	}

	// 客户返现
	if cashback.GreaterThan(decimal.Zero) {
		if _, _, err := s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
			UserID:    input.ClientID,
			Amount:    models.NewMoneyFromDecimal(cashback),
			EntryType: constants.BalanceEntryTypeCashback,
			Reference: fmt.Sprintf("%s:cashback", reference),
			Remark:    fmt.Sprintf("交易 #%d 返现", txn.ID),
		}); err != nil {
			return nil, err
		}
	}

	// 推荐奖励：每个被推荐人至多发放一次，且需满足最低交易金额
	bonus, referrerID, err := s.settleReferralBonus(tx, txn, amount, commission.ReferralPercent, referralSetting.MinTransactionAmount)
	if err != nil {
		return nil, err
	}
	outcome := &settlementOutcome{txn: txn}
	if bonus.GreaterThan(decimal.Zero) {
		txn.ReferralBonus = models.NewMoneyFromDecimal(bonus)
		txn.UpdatedAt = time.Now()
		if err := repo.Update(txn); err != nil {
			return nil, ErrTransactionCreateFailed
		}
		if err := repo.CreateItems([]models.TransactionItem{
			splitLegItem(txn.ID, constants.TransactionItemTypeReferralBonus, "Bônus de indicação", bonus, now),
		}); err != nil {
			return nil, ErrTransactionCreateFailed
		}
		outcome.referralBonus = bonus
		outcome.referrerID = referrerID
	}
	return outcome, nil
}

// splitLegItem 构造一条结算拆分审计行
func splitLegItem(txnID uint, itemType string, name string, amount decimal.Decimal, at time.Time) models.TransactionItem {
	return models.TransactionItem{
		TransactionID: txnID,
		ItemType:      itemType,
		Name:          name,
		Quantity:      1,
		UnitPrice:     models.NewMoneyFromDecimal(amount),
		Subtotal:      models.NewMoneyFromDecimal(amount),
		CreatedAt:     at,
	}
}

// settleReferralBonus 在事务内发放推荐奖励，返回奖励金额与推荐人ID
func (s *SettlementService) settleReferralBonus(tx *gorm.DB, txn *models.Transaction, amount decimal.Decimal, referralPercent decimal.Decimal, minAmount decimal.Decimal) (decimal.Decimal, uint, error) {
	if referralPercent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, 0, nil
	}
	if amount.LessThan(minAmount) {
		return decimal.Zero, 0, nil
	}

	repo := s.referralRepo.WithTx(tx)
	referral, err := repo.GetByReferredIDForUpdate(txn.ClientID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if referral == nil || referral.Status != constants.ReferralStatusPending {
		return decimal.Zero, 0, nil
	}

	bonus := amount.Mul(referralPercent).Div(settlementHundred).Round(2)
	if bonus.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, 0, nil
	}

	if _, _, err := s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
		UserID:    referral.ReferrerID,
		Amount:    models.NewMoneyFromDecimal(bonus),
		EntryType: constants.BalanceEntryTypeReferralBonus,
		Reference: fmt.Sprintf("referral:%d:bonus", referral.ID),
		Remark:    fmt.Sprintf("推荐奖励（交易 #%d）", txn.ID),
	}); err != nil {
		return decimal.Zero, 0, err
	}

	now := time.Now()
	referral.Status = constants.ReferralStatusQualified
	referral.BonusAmount = models.NewMoneyFromDecimal(bonus)
	referral.TransactionID = &txn.ID
	referral.QualifiedAt = &now
	referral.UpdatedAt = now
	if err := repo.Update(referral); err != nil {
		return decimal.Zero, 0, err
	}
	return bonus, referral.ReferrerID, nil
}

// notifyOutcome 事务提交后发送结算相关通知
func (s *SettlementService) notifyOutcome(outcome *settlementOutcome) {
	if s.notificationSvc == nil || outcome == nil || outcome.txn == nil || outcome.replayed {
		return
	}
	txn := outcome.txn
	s.notificationSvc.Dispatch(NotificationInput{
		UserID: txn.ClientID,
		Type:   constants.NotificationTypeCashbackReceived,
		Title:  "Cashback recebido",
		Body:   fmt.Sprintf("Você recebeu %s de cashback na transação #%d.", txn.CashbackAmount.String(), txn.ID),
		Payload: models.JSON{
			"transaction_id": txn.ID,
			"amount":         txn.CashbackAmount.String(),
		},
	})
	s.notificationSvc.Dispatch(NotificationInput{
		UserID: txn.MerchantID,
		Type:   constants.NotificationTypePaymentReceived,
		Title:  "Pagamento recebido",
		Body:   fmt.Sprintf("Venda de %s liquidada, valor líquido %s.", txn.Amount.String(), txn.MerchantNet.String()),
		Payload: models.JSON{
			"transaction_id": txn.ID,
			"amount":         txn.Amount.String(),
			"merchant_net":   txn.MerchantNet.String(),
		},
	})
	if outcome.referrerID != 0 && outcome.referralBonus.GreaterThan(decimal.Zero) {
		s.notificationSvc.Dispatch(NotificationInput{
			UserID: outcome.referrerID,
			Type:   constants.NotificationTypeReferralBonus,
			Title:  "Bônus de indicação",
			Body:   fmt.Sprintf("Sua indicação qualificou e você recebeu %s.", models.NewMoneyFromDecimal(outcome.referralBonus).String()),
			Payload: models.JSON{
				"transaction_id": txn.ID,
				"bonus":          models.NewMoneyFromDecimal(outcome.referralBonus).String(),
			},
		})
	}
}

// GetTransaction 获取交易（预载明细）
func (s *SettlementService) GetTransaction(id uint) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetByIDWithItems(id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// ListTransactions 查询交易列表
func (s *SettlementService) ListTransactions(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	return s.txnRepo.List(filter)
}
