package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表。创建后即为价格快照，仅状态、支付三元组
// （token/ref_id/支付时间）允许变更。
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                    // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                    // 订单编号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                           // 用户ID
	AddressID      *uint          `gorm:"index" json:"address_id,omitempty"`                       // 地址ID（地址删除后保留订单）
	Status         string         `gorm:"type:varchar(20);index;not null" json:"status"`           // 订单状态
	PaymentStatus  string         `gorm:"type:varchar(20);index;not null" json:"payment_status"`   // 支付状态
	TotalPrice     Money          `gorm:"type:decimal(20,0);not null;default:0" json:"total_price"` // 应付总额（下单时冻结）
	ShippingMethod string         `gorm:"type:varchar(20);not null" json:"shipping_method"`        // 配送方式
	ShippingCost   Money          `gorm:"type:decimal(20,0);not null;default:0" json:"shipping_cost"` // 配送费用
	PaymentToken   string         `gorm:"type:varchar(128);index" json:"payment_token,omitempty"`  // 支付令牌
	PaymentRefID   string         `gorm:"type:varchar(128)" json:"payment_ref_id,omitempty"`       // 网关支付流水号
	PaymentDate    *time.Time     `json:"payment_date,omitempty"`                                  // 支付时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间

	Items   []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	Address *Address    `gorm:"foreignKey:AddressID" json:"address,omitempty"` // 收货地址
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
