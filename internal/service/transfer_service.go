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

// TransferService 用户间余额转账服务
type TransferService struct {
	transferRepo    repository.TransferRepository
	userRepo        repository.UserRepository
	balanceSvc      *BalanceService
	notificationSvc *NotificationService
}

// TransferInput 转账输入
type TransferInput struct {
	SenderID      uint
	ReceiverEmail string
	Amount        models.Money
	Reference     string
	Remark        string
}

// NewTransferService 创建转账服务
func NewTransferService(
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
	balanceSvc *BalanceService,
	notificationSvc *NotificationService,
) *TransferService {
	return &TransferService{
		transferRepo:    transferRepo,
		userRepo:        userRepo,
		balanceSvc:      balanceSvc,
		notificationSvc: notificationSvc,
	}
}

// Transfer 执行转账：转出与转入在同一事务内完成
func (s *TransferService) Transfer(input TransferInput) (*models.Transfer, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	sender, err := s.userRepo.GetByID(input.SenderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}
	if sender.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}

	receiver, err := s.userRepo.GetByEmail(input.ReceiverEmail)
	if err != nil {
		return nil, err
	}
	if receiver == nil || receiver.Status != constants.UserStatusActive {
		return nil, ErrRecipientNotFound
	}
	if receiver.ID == sender.ID {
		return nil, ErrTransferSelf
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = fmt.Sprintf("transfer:%s", uuid.NewString())
	}

	var transfer *models.Transfer
	replayed := false
	if err := s.transferRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.transferRepo.WithTx(tx)

		existing, err := repo.GetByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			transfer = existing
			replayed = true
			return nil
		}

		// 锁定顺序按用户ID升序，避免互转死锁
		first, second := sender.ID, receiver.ID
		if first > second {
			first, second = second, first
		}
		for _, userID := range []uint{first, second} {
			if _, err := s.balanceSvc.ensureBalanceForUpdate(s.balanceSvc.balanceRepo.WithTx(tx), userID, time.Now()); err != nil {
				return err
			}
		}

		if _, _, err := s.balanceSvc.DebitInTx(tx, BalanceChangeInput{
			UserID:    sender.ID,
			Amount:    models.NewMoneyFromDecimal(amount),
			EntryType: constants.BalanceEntryTypeTransferOut,
			Reference: fmt.Sprintf("%s:out", reference),
			Remark:    strings.TrimSpace(input.Remark),
		}); err != nil {
			return err
		}
		if _, _, err := s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
			UserID:    receiver.ID,
			Amount:    models.NewMoneyFromDecimal(amount),
			EntryType: constants.BalanceEntryTypeTransferIn,
			Reference: fmt.Sprintf("%s:in", reference),
			Remark:    strings.TrimSpace(input.Remark),
		}); err != nil {
			return err
		}

		now := time.Now()
		transfer = &models.Transfer{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Amount:     models.NewMoneyFromDecimal(amount),
			Status:     constants.TransferStatusCompleted,
			Reference:  reference,
			Remark:     strings.TrimSpace(input.Remark),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return repo.Create(transfer)
	}); err != nil {
		return nil, err
	}

	if !replayed && s.notificationSvc != nil {
		s.notificationSvc.Dispatch(NotificationInput{
			UserID: receiver.ID,
			Type:   constants.NotificationTypeTransferReceived,
			Title:  "Transferência recebida",
			Body:   fmt.Sprintf("Você recebeu %s de %s.", models.NewMoneyFromDecimal(amount).String(), sender.DisplayName),
			Payload: models.JSON{
				"transfer_id": transfer.ID,
				"amount":      transfer.Amount.String(),
				"sender_id":   sender.ID,
			},
		})
	}
	return transfer, nil
}

// List 查询用户相关的转账记录
func (s *TransferService) List(filter repository.TransferListFilter) ([]models.Transfer, int64, error) {
	return s.transferRepo.List(filter)
}
