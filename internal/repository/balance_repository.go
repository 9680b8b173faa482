package repository

import (
	"errors"

	"github.com/vale-cashback/api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceRepository 返现余额数据访问接口
type BalanceRepository interface {
	GetByUserID(userID uint) (*models.CashbackBalance, error)
	GetByUserIDForUpdate(userID uint) (*models.CashbackBalance, error)
	Create(balance *models.CashbackBalance) error
	Update(balance *models.CashbackBalance) error
	CreateEntry(entry *models.BalanceEntry) error
	GetEntryByReference(reference string) (*models.BalanceEntry, error)
	ListEntries(filter BalanceEntryListFilter) ([]models.BalanceEntry, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormBalanceRepository
}

// GormBalanceRepository GORM 余额仓储实现
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository 创建余额仓储
func NewBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// Transaction 执行数据库事务
func (r *GormBalanceRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormBalanceRepository) WithTx(tx *gorm.DB) *GormBalanceRepository {
	if tx == nil {
		return r
	}
	return &GormBalanceRepository{db: tx}
}

// GetByUserID 按用户ID获取余额账户
func (r *GormBalanceRepository) GetByUserID(userID uint) (*models.CashbackBalance, error) {
	if userID == 0 {
		return nil, nil
	}
	var balance models.CashbackBalance
	if err := r.db.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// GetByUserIDForUpdate 按用户ID加锁获取余额账户
func (r *GormBalanceRepository) GetByUserIDForUpdate(userID uint) (*models.CashbackBalance, error) {
	if userID == 0 {
		return nil, nil
	}
	var balance models.CashbackBalance
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// Create 创建余额账户
func (r *GormBalanceRepository) Create(balance *models.CashbackBalance) error {
	return r.db.Create(balance).Error
}

// Update 更新余额账户
func (r *GormBalanceRepository) Update(balance *models.CashbackBalance) error {
	return r.db.Save(balance).Error
}

// CreateEntry 写入余额流水
func (r *GormBalanceRepository) CreateEntry(entry *models.BalanceEntry) error {
	return r.db.Create(entry).Error
}

// GetEntryByReference 按幂等引用获取余额流水
func (r *GormBalanceRepository) GetEntryByReference(reference string) (*models.BalanceEntry, error) {
	if reference == "" {
		return nil, nil
	}
	var entry models.BalanceEntry
	if err := r.db.Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries 分页查询余额流水
func (r *GormBalanceRepository) ListEntries(filter BalanceEntryListFilter) ([]models.BalanceEntry, int64, error) {
	query := r.db.Model(&models.BalanceEntry{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var entries []models.BalanceEntry
	if err := query.Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
