package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QRCodeRepository 收款二维码数据访问接口
type QRCodeRepository interface {
	GetByID(id uint) (*models.QRCode, error)
	GetByCode(code string) (*models.QRCode, error)
	GetByCodeForUpdate(code string) (*models.QRCode, error)
	Create(qr *models.QRCode) error
	Update(qr *models.QRCode) error
	ConsumeActive(id uint, usedByID uint, usedAt time.Time) (int64, error)
	ExpireOverdue(now time.Time) (int64, error)
	List(filter QRCodeListFilter) ([]models.QRCode, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormQRCodeRepository
}

// GormQRCodeRepository GORM 二维码仓储实现
type GormQRCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository 创建二维码仓储
func NewQRCodeRepository(db *gorm.DB) *GormQRCodeRepository {
	return &GormQRCodeRepository{db: db}
}

// Transaction 执行数据库事务
func (r *GormQRCodeRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormQRCodeRepository) WithTx(tx *gorm.DB) *GormQRCodeRepository {
	if tx == nil {
		return r
	}
	return &GormQRCodeRepository{db: tx}
}

// GetByID 按ID获取二维码
func (r *GormQRCodeRepository) GetByID(id uint) (*models.QRCode, error) {
	if id == 0 {
		return nil, nil
	}
	var qr models.QRCode
	if err := r.db.First(&qr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &qr, nil
}

// GetByCode 按码值获取二维码
func (r *GormQRCodeRepository) GetByCode(code string) (*models.QRCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var qr models.QRCode
	if err := r.db.Where("code = ?", code).First(&qr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &qr, nil
}

// GetByCodeForUpdate 按码值加锁获取二维码
func (r *GormQRCodeRepository) GetByCodeForUpdate(code string) (*models.QRCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var qr models.QRCode
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&qr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &qr, nil
}

// Create 创建二维码
func (r *GormQRCodeRepository) Create(qr *models.QRCode) error {
	return r.db.Create(qr).Error
}

// Update 更新二维码
func (r *GormQRCodeRepository) Update(qr *models.QRCode) error {
	return r.db.Save(qr).Error
}

// ConsumeActive 条件更新消费二维码：仅 active 且未过期时生效，返回受影响行数。
// 并发支付同一码时只有一个请求能改写成功。
func (r *GormQRCodeRepository) ConsumeActive(id uint, usedByID uint, usedAt time.Time) (int64, error) {
	result := r.db.Model(&models.QRCode{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, constants.QRCodeStatusActive, usedAt).
		Updates(map[string]interface{}{
			"status":     constants.QRCodeStatusUsed,
			"used_by_id": usedByID,
			"used_at":    usedAt,
		})
	return result.RowsAffected, result.Error
}

// ExpireOverdue 批量将超时的 active 二维码置为 expired
func (r *GormQRCodeRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&models.QRCode{}).
		Where("status = ? AND expires_at <= ?", constants.QRCodeStatusActive, now).
		Update("status", constants.QRCodeStatusExpired)
	return result.RowsAffected, result.Error
}

// List 分页查询二维码
func (r *GormQRCodeRepository) List(filter QRCodeListFilter) ([]models.QRCode, int64, error) {
	query := r.db.Model(&models.QRCode{})
	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var codes []models.QRCode
	if err := query.Order("id DESC").Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}
