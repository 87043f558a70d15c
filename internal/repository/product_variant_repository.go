package repository

import (
	"errors"

	"github.com/tarano297/pocopini2/internal/models"

	"gorm.io/gorm"
)

// ProductVariantRepository 商品规格数据访问接口
type ProductVariantRepository interface {
	GetByID(id uint) (*models.ProductVariant, error)
	ListByProduct(productID uint) ([]models.ProductVariant, error)
	ReserveStock(variantID uint, quantity int) (bool, error)
	ReleaseStock(variantID uint, quantity int) error
	WithTx(tx *gorm.DB) ProductVariantRepository
}

// GormProductVariantRepository GORM 实现
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository 创建商品规格仓库
func NewProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductVariantRepository) WithTx(tx *gorm.DB) ProductVariantRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariantRepository{db: tx}
}

// GetByID 获取规格
func (r *GormProductVariantRepository) GetByID(id uint) (*models.ProductVariant, error) {
	if id == 0 {
		return nil, nil
	}
	var variant models.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// ListByProduct 获取商品下全部规格
func (r *GormProductVariantRepository) ListByProduct(productID uint) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if err := r.db.Where("product_id = ?", productID).
		Order("id asc").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// ReserveStock 条件扣减库存，库存不足时返回 false
func (r *GormProductVariantRepository) ReserveStock(variantID uint, quantity int) (bool, error) {
	if variantID == 0 || quantity <= 0 {
		return false, errors.New("invalid stock reservation")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseStock 归还库存
func (r *GormProductVariantRepository) ReleaseStock(variantID uint, quantity int) error {
	if variantID == 0 || quantity <= 0 {
		return errors.New("invalid stock release")
	}
	return r.db.Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
}
