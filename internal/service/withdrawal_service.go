package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService 提现业务服务
// 申请时不扣减余额：可用额度 = 余额 - 未完结提现占用；打款完成时才真正出账。
type WithdrawalService struct {
	withdrawalRepo  repository.WithdrawalRepository
	balanceRepo     repository.BalanceRepository
	balanceSvc      *BalanceService
	settingSvc      *SettingService
	notificationSvc *NotificationService
}

// ApplyWithdrawalInput 提现申请输入
type ApplyWithdrawalInput struct {
	UserID        uint
	Amount        models.Money
	Method        string
	AccountDetail models.JSON
}

// ReviewWithdrawalInput 提现审核输入
type ReviewWithdrawalInput struct {
	RequestID  uint
	ReviewerID uint
	Action     string
	Note       string
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	balanceRepo repository.BalanceRepository,
	balanceSvc *BalanceService,
	settingSvc *SettingService,
	notificationSvc *NotificationService,
) *WithdrawalService {
	return &WithdrawalService{
		withdrawalRepo:  withdrawalRepo,
		balanceRepo:     balanceRepo,
		balanceSvc:      balanceSvc,
		settingSvc:      settingSvc,
		notificationSvc: notificationSvc,
	}
}

// Apply 提交提现申请
// 可用额度校验与申请写入在同一事务内完成，余额行加锁防止并发超提。
func (s *WithdrawalService) Apply(input ApplyWithdrawalInput) (*models.WithdrawalRequest, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	method := strings.TrimSpace(input.Method)
	if method != constants.WithdrawalMethodBank && method != constants.WithdrawalMethodPix {
		return nil, ErrWithdrawalInvalidAction
	}

	setting, err := s.settingSvc.GetWithdrawalSetting()
	if err != nil {
		return nil, err
	}
	if amount.LessThan(setting.MinAmount) {
		return nil, ErrWithdrawalBelowMinimum
	}

	var request *models.WithdrawalRequest
	if err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		balance, err := s.balanceRepo.WithTx(tx).GetByUserIDForUpdate(input.UserID)
		if err != nil {
			return err
		}
		current := decimal.Zero
		if balance != nil {
			current = balance.Balance.Decimal.Round(2)
		}

		outstanding, err := s.withdrawalRepo.WithTx(tx).SumOutstandingByUser(input.UserID)
		if err != nil {
			return err
		}
		available := current.Sub(outstanding.Decimal.Round(2))
		if amount.GreaterThan(available) {
			return ErrInsufficientBalance
		}

		now := time.Now()
		request = &models.WithdrawalRequest{
			UserID:        input.UserID,
			Amount:        models.NewMoneyFromDecimal(amount),
			Status:        constants.WithdrawalStatusPending,
			Method:        method,
			AccountDetail: input.AccountDetail,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.withdrawalRepo.WithTx(tx).Create(request)
	}); err != nil {
		return nil, err
	}
	return request, nil
}

// Review 审核提现申请
// 状态机：pending -> approved -> completed；pending -> rejected。
// rejected 与 completed 为终态，不允许再次流转。
func (s *WithdrawalService) Review(input ReviewWithdrawalInput) (*models.WithdrawalRequest, error) {
	action := strings.TrimSpace(input.Action)
	switch action {
	case constants.WithdrawalActionApprove, constants.WithdrawalActionReject, constants.WithdrawalActionComplete:
	default:
		return nil, ErrWithdrawalInvalidAction
	}

	var request *models.WithdrawalRequest
	if err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.withdrawalRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(input.RequestID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrWithdrawalNotFound
		}
		if current.IsTerminal() {
			return ErrWithdrawalTerminal
		}

		now := time.Now()
		switch action {
		case constants.WithdrawalActionApprove:
			if current.Status != constants.WithdrawalStatusPending {
				return ErrWithdrawalNotPending
			}
			current.Status = constants.WithdrawalStatusApproved
		case constants.WithdrawalActionReject:
			if current.Status != constants.WithdrawalStatusPending {
				return ErrWithdrawalNotPending
			}
			current.Status = constants.WithdrawalStatusRejected
		case constants.WithdrawalActionComplete:
			if current.Status != constants.WithdrawalStatusApproved {
				return ErrWithdrawalNotPending
			}
			// 打款完成时出账；余额不足说明账目异常，直接失败回滚
			if _, _, err := s.balanceSvc.DebitInTx(tx, BalanceChangeInput{
				UserID:    current.UserID,
				Amount:    current.Amount,
				EntryType: constants.BalanceEntryTypeWithdrawal,
				Reference: fmt.Sprintf("withdrawal:%d:complete", current.ID),
				Remark:    fmt.Sprintf("提现 #%d 打款", current.ID),
			}); err != nil {
				return err
			}
			current.Status = constants.WithdrawalStatusCompleted
			current.CompletedAt = &now
		}

		current.ReviewNote = strings.TrimSpace(input.Note)
		current.ReviewedBy = &input.ReviewerID
		current.ReviewedAt = &now
		current.UpdatedAt = now
		if err := repo.Update(current); err != nil {
			return err
		}
		request = current
		return nil
	}); err != nil {
		return nil, err
	}

	s.notifyReview(request)
	return request, nil
}

// Cancel 申请人主动取消提现
// 仅限本人且处于 pending 状态的申请；取消不产生余额变动，占用额度随状态释放。
func (s *WithdrawalService) Cancel(userID uint, id uint) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	if err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.withdrawalRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if current == nil || current.UserID != userID {
			return ErrWithdrawalNotFound
		}
		if current.IsTerminal() {
			return ErrWithdrawalTerminal
		}
		if current.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		current.Status = constants.WithdrawalStatusCanceled
		current.UpdatedAt = time.Now()
		if err := repo.Update(current); err != nil {
			return err
		}
		request = current
		return nil
	}); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *WithdrawalService) notifyReview(request *models.WithdrawalRequest) {
	if s.notificationSvc == nil || request == nil {
		return
	}
	s.notificationSvc.Dispatch(NotificationInput{
		UserID: request.UserID,
		Type:   constants.NotificationTypeWithdrawalUpdated,
		Title:  "Saque atualizado",
		Body:   fmt.Sprintf("Sua solicitação de saque #%d está %s.", request.ID, request.Status),
		Payload: models.JSON{
			"withdrawal_id": request.ID,
			"status":        request.Status,
			"amount":        request.Amount.String(),
		},
	})
}

// GetForUser 用户查看自己的提现申请
func (s *WithdrawalService) GetForUser(userID uint, id uint) (*models.WithdrawalRequest, error) {
	request, err := s.withdrawalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil || request.UserID != userID {
		return nil, ErrWithdrawalNotFound
	}
	return request, nil
}

// Get 管理端查看提现申请
func (s *WithdrawalService) Get(id uint) (*models.WithdrawalRequest, error) {
	request, err := s.withdrawalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrWithdrawalNotFound
	}
	return request, nil
}

// List 查询提现申请列表
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.List(filter)
}

// AvailableBalance 查询用户当前可提现额度
func (s *WithdrawalService) AvailableBalance(userID uint) (models.Money, error) {
	balance, err := s.balanceSvc.GetBalance(userID)
	if err != nil {
		return models.Money{}, err
	}
	outstanding, err := s.withdrawalRepo.SumOutstandingByUser(userID)
	if err != nil {
		return models.Money{}, err
	}
	available := balance.Balance.Decimal.Sub(outstanding.Decimal).Round(2)
	if available.LessThan(decimal.Zero) {
		available = decimal.Zero
	}
	return models.NewMoneyFromDecimal(available), nil
}
