package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                      // 主键
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`    // 商品名称
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`          // 唯一标识
	Description string         `gorm:"type:text" json:"description"`              // 商品描述
	Category    string         `gorm:"type:varchar(50);index" json:"category"`    // 分类
	Price       Money          `gorm:"type:decimal(20,0);not null;default:0" json:"price"` // 当前售价
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`       // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// IsInStock 任一规格有库存即视为在售
func (p *Product) IsInStock() bool {
	if p == nil {
		return false
	}
	for i := range p.Variants {
		if p.Variants[i].Stock > 0 {
			return true
		}
	}
	return false
}
