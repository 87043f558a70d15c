package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格表（颜色 × 尺码），库存挂在规格维度
type ProductVariant struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                             // 主键
	ProductID uint           `gorm:"not null;index;uniqueIndex:idx_variant_product_color_size" json:"product_id"` // 商品ID
	Color     string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_product_color_size" json:"color"` // 颜色
	Size      string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_variant_product_color_size" json:"size"`  // 尺码
	SKU       string         `gorm:"column:sku;type:varchar(64);uniqueIndex" json:"sku"`               // SKU编码
	Stock     int            `gorm:"not null;default:0" json:"stock"`                                  // 库存数量
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                                       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// IsInStock 是否有库存
func (v *ProductVariant) IsInStock() bool {
	return v != nil && v.Stock > 0
}
