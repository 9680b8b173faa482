package repository

import (
	"errors"
	"strings"

	"github.com/vale-cashback/api/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository 商户资料数据访问接口
type MerchantRepository interface {
	GetByUserID(userID uint) (*models.MerchantProfile, error)
	GetByID(id uint) (*models.MerchantProfile, error)
	Create(profile *models.MerchantProfile) error
	Update(profile *models.MerchantProfile) error
	List(filter MerchantListFilter) ([]models.MerchantProfile, int64, error)
	WithTx(tx *gorm.DB) *GormMerchantRepository
}

// GormMerchantRepository GORM 商户资料仓储实现
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository 创建商户资料仓储
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMerchantRepository) WithTx(tx *gorm.DB) *GormMerchantRepository {
	if tx == nil {
		return r
	}
	return &GormMerchantRepository{db: tx}
}

// GetByUserID 按用户ID获取商户资料
func (r *GormMerchantRepository) GetByUserID(userID uint) (*models.MerchantProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var profile models.MerchantProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByID 按ID获取商户资料
func (r *GormMerchantRepository) GetByID(id uint) (*models.MerchantProfile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.MerchantProfile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create 创建商户资料
func (r *GormMerchantRepository) Create(profile *models.MerchantProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新商户资料
func (r *GormMerchantRepository) Update(profile *models.MerchantProfile) error {
	return r.db.Save(profile).Error
}

// List 分页查询商户资料
func (r *GormMerchantRepository) List(filter MerchantListFilter) ([]models.MerchantProfile, int64, error) {
	query := r.db.Model(&models.MerchantProfile{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Search != "" {
		like := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("store_name LIKE ?", like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var profiles []models.MerchantProfile
	if err := query.Order("id DESC").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
