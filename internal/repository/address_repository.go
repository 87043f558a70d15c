package repository

import (
	"errors"

	"github.com/tarano297/pocopini2/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	GetByID(id uint) (*models.Address, error)
	GetByIDAndUser(id, userID uint) (*models.Address, error)
	ListByUser(userID uint) ([]models.Address, error)
	Create(address *models.Address) error
	DeleteByIDAndUser(id, userID uint) (int64, error)
	WithTx(tx *gorm.DB) AddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) AddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// GetByID 根据 ID 获取地址
func (r *GormAddressRepository) GetByID(id uint) (*models.Address, error) {
	if id == 0 {
		return nil, nil
	}
	var address models.Address
	if err := r.db.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetByIDAndUser 获取属于指定用户的地址
func (r *GormAddressRepository) GetByIDAndUser(id, userID uint) (*models.Address, error) {
	if id == 0 || userID == 0 {
		return nil, nil
	}
	var address models.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// ListByUser 获取用户地址列表
func (r *GormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Create 创建地址，设为默认时取消同用户其它默认地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	if address == nil {
		return errors.New("address is nil")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND is_default = ?", address.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
}

// DeleteByIDAndUser 删除属于指定用户的地址
func (r *GormAddressRepository) DeleteByIDAndUser(id, userID uint) (int64, error) {
	if id == 0 || userID == 0 {
		return 0, nil
	}
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
