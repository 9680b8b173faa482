package repository

import (
	"errors"

	"github.com/vale-cashback/api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository 推荐关系数据访问接口
type ReferralRepository interface {
	GetByReferredID(referredID uint) (*models.Referral, error)
	GetByReferredIDForUpdate(referredID uint) (*models.Referral, error)
	Create(referral *models.Referral) error
	Update(referral *models.Referral) error
	List(filter ReferralListFilter) ([]models.Referral, int64, error)
	CountByReferrer(referrerID uint, status string) (int64, error)
	WithTx(tx *gorm.DB) *GormReferralRepository
}

// GormReferralRepository GORM 推荐关系仓储实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐关系仓储
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) *GormReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// GetByReferredID 按被推荐人ID获取推荐关系
func (r *GormReferralRepository) GetByReferredID(referredID uint) (*models.Referral, error) {
	if referredID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("referred_id = ?", referredID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByReferredIDForUpdate 按被推荐人ID加锁获取推荐关系
func (r *GormReferralRepository) GetByReferredIDForUpdate(referredID uint) (*models.Referral, error) {
	if referredID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("referred_id = ?", referredID).
		First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// Create 创建推荐关系
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// Update 更新推荐关系
func (r *GormReferralRepository) Update(referral *models.Referral) error {
	return r.db.Save(referral).Error
}

// List 分页查询推荐关系
func (r *GormReferralRepository) List(filter ReferralListFilter) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{})
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var referrals []models.Referral
	if err := query.Order("id DESC").Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}

// CountByReferrer 统计推荐人名下的推荐关系数量
func (r *GormReferralRepository) CountByReferrer(referrerID uint, status string) (int64, error) {
	query := r.db.Model(&models.Referral{}).Where("referrer_id = ?", referrerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
