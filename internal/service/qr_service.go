package service

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/logger"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/queue"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

const (
	qrDefaultExpireMinutes = 15
	qrDefaultImageSize     = 256
)

// QRService 商户收款二维码服务
type QRService struct {
	qrRepo        repository.QRCodeRepository
	userRepo      repository.UserRepository
	merchantRepo  repository.MerchantRepository
	settlementSvc *SettlementService
	queueClient   *queue.Client
	expireMinutes int
	imageSize     int
}

// QRGenerateInput 生成二维码输入
type QRGenerateInput struct {
	MerchantID  uint
	Amount      models.Money
	Description string
}

// QRGenerateResult 生成二维码结果
type QRGenerateResult struct {
	QRCode   *models.QRCode
	ImagePNG string // base64 编码的 PNG 图片
}

// NewQRService 创建二维码服务
func NewQRService(
	qrRepo repository.QRCodeRepository,
	userRepo repository.UserRepository,
	merchantRepo repository.MerchantRepository,
	settlementSvc *SettlementService,
	queueClient *queue.Client,
	expireMinutes int,
	imageSize int,
) *QRService {
	if expireMinutes <= 0 {
		expireMinutes = qrDefaultExpireMinutes
	}
	if imageSize <= 0 {
		imageSize = qrDefaultImageSize
	}
	return &QRService{
		qrRepo:        qrRepo,
		userRepo:      userRepo,
		merchantRepo:  merchantRepo,
		settlementSvc: settlementSvc,
		queueClient:   queueClient,
		expireMinutes: expireMinutes,
		imageSize:     imageSize,
	}
}

// Generate 生成收款二维码
func (s *QRService) Generate(input QRGenerateInput) (*QRGenerateResult, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	merchant, err := s.userRepo.GetByID(input.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil || merchant.Role != constants.RoleMerchant || merchant.Status != constants.UserStatusActive {
		return nil, ErrMerchantNotFound
	}
	profile, err := s.merchantRepo.GetByUserID(input.MerchantID)
	if err != nil {
		return nil, err
	}
	if !profile.CanTransact() {
		return nil, ErrMerchantNotApproved
	}

	now := time.Now()
	expiry := time.Duration(s.expireMinutes) * time.Minute
	qr := &models.QRCode{
		Code:        uuid.NewString(),
		MerchantID:  input.MerchantID,
		Amount:      models.NewMoneyFromDecimal(amount),
		Status:      constants.QRCodeStatusActive,
		Description: strings.TrimSpace(input.Description),
		ExpiresAt:   now.Add(expiry),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.qrRepo.Create(qr); err != nil {
		return nil, err
	}

	// 到期清理任务兜底：支付路径也会惰性标记过期
	if err := s.queueClient.EnqueueQRCodeExpireSweep(queue.QRCodeExpireSweepPayload{QRCodeID: qr.ID}, expiry); err != nil {
		logger.Warnw("qr_expire_sweep_enqueue_failed", "qr_code_id", qr.ID, "error", err)
	}

	image, err := s.renderImage(qr.Code)
	if err != nil {
		return nil, err
	}
	return &QRGenerateResult{QRCode: qr, ImagePNG: image}, nil
}

// Verify 校验二维码可支付性（过期码惰性标记）
func (s *QRService) Verify(code string) (*models.QRCode, error) {
	qr, err := s.qrRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if qr == nil {
		return nil, ErrQRCodeNotFound
	}
	switch qr.Status {
	case constants.QRCodeStatusUsed:
		return nil, ErrQRCodeAlreadyUsed
	case constants.QRCodeStatusExpired:
		return nil, ErrQRCodeExpired
	}
	if qr.IsExpired(time.Now()) {
		qr.Status = constants.QRCodeStatusExpired
		qr.UpdatedAt = time.Now()
		if err := s.qrRepo.Update(qr); err != nil {
			logger.Warnw("qr_lazy_expire_failed", "qr_code_id", qr.ID, "error", err)
		}
		return nil, ErrQRCodeExpired
	}
	return qr, nil
}

// Pay 客户扫码支付：消费二维码并在同一事务内完成结算。
// 条件更新保证并发支付同一码时只有一个请求成功。
func (s *QRService) Pay(clientID uint, code string) (*models.Transaction, error) {
	client, err := s.userRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.Role != constants.RoleClient {
		return nil, ErrUserNotFound
	}
	if client.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}

	var outcome *settlementOutcome
	if err := s.qrRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.qrRepo.WithTx(tx)
		qr, err := repo.GetByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if qr == nil {
			return ErrQRCodeNotFound
		}
		if qr.MerchantID == clientID {
			return ErrQRCodeSelfPayment
		}
		switch qr.Status {
		case constants.QRCodeStatusUsed:
			return ErrQRCodeAlreadyUsed
		case constants.QRCodeStatusExpired:
			return ErrQRCodeExpired
		}

		now := time.Now()
		if qr.IsExpired(now) {
			qr.Status = constants.QRCodeStatusExpired
			qr.UpdatedAt = now
			if err := repo.Update(qr); err != nil {
				return err
			}
			return ErrQRCodeExpired
		}

		affected, err := repo.ConsumeActive(qr.ID, clientID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrQRCodeAlreadyUsed
		}

		outcome, err = s.settlementSvc.settleInTx(tx, SettleInput{
			ClientID:    clientID,
			MerchantID:  qr.MerchantID,
			Amount:      qr.Amount,
			Type:        constants.TransactionTypeQRPayment,
			Reference:   fmt.Sprintf("qr:%d:settle", qr.ID),
			Description: qr.Description,
			QRCodeID:    &qr.ID,
		})
		return err
	}); err != nil {
		return nil, err
	}

	s.settlementSvc.notifyOutcome(outcome)
	return outcome.txn, nil
}

// ExpireSweep 过期清理：将单个或全部超时二维码置为过期
func (s *QRService) ExpireSweep(qrCodeID uint) (int64, error) {
	now := time.Now()
	if qrCodeID != 0 {
		qr, err := s.qrRepo.GetByID(qrCodeID)
		if err != nil {
			return 0, err
		}
		if qr == nil || qr.Status != constants.QRCodeStatusActive || !qr.IsExpired(now) {
			return 0, nil
		}
		qr.Status = constants.QRCodeStatusExpired
		qr.UpdatedAt = now
		if err := s.qrRepo.Update(qr); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return s.qrRepo.ExpireOverdue(now)
}

// List 查询商户二维码列表
func (s *QRService) List(filter repository.QRCodeListFilter) ([]models.QRCode, int64, error) {
	return s.qrRepo.List(filter)
}

// GetForMerchant 商户查看自己的二维码
func (s *QRService) GetForMerchant(merchantID uint, id uint) (*models.QRCode, error) {
	qr, err := s.qrRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if qr == nil || qr.MerchantID != merchantID {
		return nil, ErrQRCodeNotFound
	}
	return qr, nil
}

// renderImage 渲染二维码 PNG 并编码为 base64
func (s *QRService) renderImage(code string) (string, error) {
	payload := fmt.Sprintf("valecashback://pay/%s", code)
	png, err := qrcode.Encode(payload, qrcode.Medium, s.imageSize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
