package repository

import (
	"errors"

	"github.com/vale-cashback/api/internal/models"

	"gorm.io/gorm"
)

// TransferRepository 转账数据访问接口
type TransferRepository interface {
	GetByID(id uint) (*models.Transfer, error)
	GetByReference(reference string) (*models.Transfer, error)
	Create(transfer *models.Transfer) error
	List(filter TransferListFilter) ([]models.Transfer, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormTransferRepository
}

// GormTransferRepository GORM 转账仓储实现
type GormTransferRepository struct {
	db *gorm.DB
}

// NewTransferRepository 创建转账仓储
func NewTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Transaction 执行数据库事务
func (r *GormTransferRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormTransferRepository) WithTx(tx *gorm.DB) *GormTransferRepository {
	if tx == nil {
		return r
	}
	return &GormTransferRepository{db: tx}
}

// GetByID 按ID获取转账
func (r *GormTransferRepository) GetByID(id uint) (*models.Transfer, error) {
	if id == 0 {
		return nil, nil
	}
	var transfer models.Transfer
	if err := r.db.First(&transfer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// GetByReference 按幂等引用获取转账
func (r *GormTransferRepository) GetByReference(reference string) (*models.Transfer, error) {
	if reference == "" {
		return nil, nil
	}
	var transfer models.Transfer
	if err := r.db.Where("reference = ?", reference).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// Create 创建转账记录
func (r *GormTransferRepository) Create(transfer *models.Transfer) error {
	return r.db.Create(transfer).Error
}

// List 分页查询转账记录（匹配转出或转入方）
func (r *GormTransferRepository) List(filter TransferListFilter) ([]models.Transfer, int64, error) {
	query := r.db.Model(&models.Transfer{})
	if filter.UserID != 0 {
		query = query.Where("sender_id = ? OR receiver_id = ?", filter.UserID, filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var transfers []models.Transfer
	if err := query.Order("id DESC").Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}
