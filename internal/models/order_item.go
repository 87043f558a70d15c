package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表。随订单创建一次写入，此后不再变更；
// price 为下单时刻的商品单价快照，与后续调价解耦。
type OrderItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                  // 主键
	OrderID     uint           `gorm:"index;not null" json:"order_id"`                        // 订单ID
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                      // 商品ID
	VariantID   uint           `gorm:"index;not null" json:"variant_id"`                      // 规格ID（库存扣减对象）
	ProductName string         `gorm:"type:varchar(200);not null" json:"product_name"`        // 商品名称快照
	Quantity    int            `gorm:"not null" json:"quantity"`                              // 数量
	Price       Money          `gorm:"type:decimal(20,0);not null;default:0" json:"price"`    // 下单时单价
	Subtotal    Money          `gorm:"type:decimal(20,0);not null;default:0" json:"subtotal"` // 小计
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
