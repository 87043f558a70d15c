package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（身份由外部认证服务签发，此处仅保留归属关系所需字段）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`          // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash string         `gorm:"type:varchar(200)" json:"-"`    // 密码哈希
	IsActive     bool           `gorm:"default:true" json:"is_active"` // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`       // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                    // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
