package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 收货地址表
type Address struct {
	ID          uint           `gorm:"primarykey" json:"id"`                        // 主键
	UserID      uint           `gorm:"index;not null" json:"user_id"`               // 用户ID
	FullName    string         `gorm:"type:varchar(100);not null" json:"full_name"` // 收件人姓名
	PhoneNumber string         `gorm:"type:varchar(20);not null" json:"phone_number"` // 联系电话
	Province    string         `gorm:"type:varchar(50);not null" json:"province"`   // 省份
	City        string         `gorm:"type:varchar(50);not null" json:"city"`       // 城市
	PostalCode  string         `gorm:"type:varchar(10);not null" json:"postal_code"` // 邮编
	AddressLine string         `gorm:"type:text;not null" json:"address_line"`      // 详细地址
	IsDefault   bool           `gorm:"default:false;index" json:"is_default"`       // 是否默认地址
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
