package service

import (
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceService 返现余额服务
type BalanceService struct {
	balanceRepo repository.BalanceRepository
}

// BalanceChangeInput 事务内余额变动输入
type BalanceChangeInput struct {
	UserID    uint
	Amount    models.Money
	EntryType string
	Reference string
	Remark    string
}

// NewBalanceService 创建余额服务
func NewBalanceService(balanceRepo repository.BalanceRepository) *BalanceService {
	return &BalanceService{balanceRepo: balanceRepo}
}

// GetBalance 获取余额账户（不存在时自动创建）
func (s *BalanceService) GetBalance(userID uint) (*models.CashbackBalance, error) {
	if userID == 0 {
		return nil, ErrBalanceNotFound
	}
	balance, err := s.balanceRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}

	balance = &models.CashbackBalance{UserID: userID}
	if err := s.balanceRepo.Create(balance); err != nil {
		// 并发创建时回读既有账户
		existing, getErr := s.balanceRepo.GetByUserID(userID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return balance, nil
}

// ListEntries 查询余额流水
func (s *BalanceService) ListEntries(filter repository.BalanceEntryListFilter) ([]models.BalanceEntry, int64, error) {
	return s.balanceRepo.ListEntries(filter)
}

// CreditInTx 事务内入账（reference 幂等，重复入账返回既有流水）
func (s *BalanceService) CreditInTx(tx *gorm.DB, input BalanceChangeInput) (*models.CashbackBalance, *models.BalanceEntry, error) {
	return s.changeInTx(tx, input, constants.BalanceDirectionIn)
}

// DebitInTx 事务内出账（余额不足返回 ErrInsufficientBalance）
func (s *BalanceService) DebitInTx(tx *gorm.DB, input BalanceChangeInput) (*models.CashbackBalance, *models.BalanceEntry, error) {
	return s.changeInTx(tx, input, constants.BalanceDirectionOut)
}

// AdminAdjust 管理员余额调整（正数入账、负数出账）
func (s *BalanceService) AdminAdjust(userID uint, delta models.Money, reference, remark string) (*models.CashbackBalance, *models.BalanceEntry, error) {
	if userID == 0 {
		return nil, nil, ErrBalanceNotFound
	}
	amount := delta.Decimal.Round(2)
	if amount.IsZero() {
		return nil, nil, ErrInvalidAmount
	}
	direction := constants.BalanceDirectionIn
	if amount.LessThan(decimal.Zero) {
		direction = constants.BalanceDirectionOut
		amount = amount.Abs()
	}

	var balanceResult *models.CashbackBalance
	var entryResult *models.BalanceEntry
	if err := s.balanceRepo.Transaction(func(tx *gorm.DB) error {
		balance, entry, err := s.changeInTx(tx, BalanceChangeInput{
			UserID:    userID,
			Amount:    models.NewMoneyFromDecimal(amount),
			EntryType: constants.BalanceEntryTypeAdminAdjust,
			Reference: reference,
			Remark:    remark,
		}, direction)
		if err != nil {
			return err
		}
		balanceResult = balance
		entryResult = entry
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return balanceResult, entryResult, nil
}

func (s *BalanceService) changeInTx(tx *gorm.DB, input BalanceChangeInput, direction string) (*models.CashbackBalance, *models.BalanceEntry, error) {
	if tx == nil {
		return nil, nil, ErrBalanceUpdateFailed
	}
	if input.UserID == 0 {
		return nil, nil, ErrBalanceNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrBalanceEntryCreateFailed
	}

	now := time.Now()
	repo := s.balanceRepo.WithTx(tx)

	exists, err := repo.GetEntryByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		balance, balanceErr := repo.GetByUserID(input.UserID)
		if balanceErr != nil {
			return nil, nil, balanceErr
		}
		return balance, exists, nil
	}

	balance, err := s.ensureBalanceForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, nil, err
	}

	before := balance.Balance.Decimal.Round(2)
	var after decimal.Decimal
	if direction == constants.BalanceDirectionIn {
		after = before.Add(amount).Round(2)
		balance.TotalEarned = models.NewMoneyFromDecimal(balance.TotalEarned.Decimal.Add(amount))
	} else {
		after = before.Sub(amount).Round(2)
		if after.LessThan(decimal.Zero) {
			return nil, nil, ErrInsufficientBalance
		}
		balance.TotalSpent = models.NewMoneyFromDecimal(balance.TotalSpent.Decimal.Add(amount))
	}

	balance.Balance = models.NewMoneyFromDecimal(after)
	balance.UpdatedAt = now
	if err := repo.Update(balance); err != nil {
		return nil, nil, ErrBalanceUpdateFailed
	}

	entry := &models.BalanceEntry{
		UserID:       input.UserID,
		Type:         input.EntryType,
		Direction:    direction,
		Amount:       models.NewMoneyFromDecimal(amount),
		BalanceAfter: models.NewMoneyFromDecimal(after),
		Reference:    reference,
		Remark:       strings.TrimSpace(input.Remark),
		CreatedAt:    now,
	}
	if err := repo.CreateEntry(entry); err != nil {
		return nil, nil, ErrBalanceEntryCreateFailed
	}
	return balance, entry, nil
}

func (s *BalanceService) ensureBalanceForUpdate(repo *repository.GormBalanceRepository, userID uint, now time.Time) (*models.CashbackBalance, error) {
	balance, err := repo.GetByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}

	balance = &models.CashbackBalance{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(balance); err != nil {
		return nil, err
	}
	// 创建后立即加锁，保证后续更新在锁内进行
	return repo.GetByUserIDForUpdate(userID)
}
