package repository

import (
	"errors"

	"github.com/tarano297/pocopini2/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id, userID uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByPaymentToken(token string) (*models.Order, error)
	ListByUser(userID uint, page, pageSize int) ([]models.Order, int64, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	Update(order *models.Order) error
	UpdateStatusFrom(id uint, from, to string) (bool, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单（含明细）
func (r *GormOrderRepository) Create(order *models.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	return r.db.Create(order).Error
}

// GetByID 获取订单（含明细与地址）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Preload("Address").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 获取属于指定用户的订单
func (r *GormOrderRepository) GetByIDAndUser(id, userID uint) (*models.Order, error) {
	if id == 0 || userID == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Preload("Address").
		Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByPaymentToken 根据支付令牌获取订单
func (r *GormOrderRepository) GetByPaymentToken(token string) (*models.Order, error) {
	if token == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Where("payment_token = ?", token).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser 用户订单分页列表
func (r *GormOrderRepository) ListByUser(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := applyPagination(query, page, pageSize).
		Preload("Items").
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// List 管理端订单分页列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Items").
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update 保存订单
func (r *GormOrderRepository) Update(order *models.Order) error {
	if order == nil || order.ID == 0 {
		return errors.New("order id is required")
	}
	return r.db.Save(order).Error
}

// UpdateStatusFrom 条件更新订单状态，当前状态已变化时不生效。
// 并发迁移靠受影响行数裁决，只有一方胜出。
func (r *GormOrderRepository) UpdateStatusFrom(id uint, from, to string) (bool, error) {
	if id == 0 {
		return false, errors.New("order id is required")
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除订单（软删除，明细一并删除）
func (r *GormOrderRepository) Delete(id uint) error {
	if id == 0 {
		return errors.New("order id is required")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
}
