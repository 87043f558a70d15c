package repository

import (
	"errors"

	"github.com/tarano297/pocopini2/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetOrCreateByUser(userID uint) (*models.Cart, error)
	GetByUser(userID uint) (*models.Cart, error)
	GetByUserForUpdate(userID uint) (*models.Cart, error)
	UpsertItem(cartID, productID uint, quantity int) error
	GetItemByIDAndCart(itemID, cartID uint) (*models.CartItem, error)
	UpdateItemQuantity(itemID uint, quantity int) error
	DeleteItem(itemID uint) error
	ClearByCart(cartID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetOrCreateByUser 获取用户购物车，不存在时创建
func (r *GormCartRepository) GetOrCreateByUser(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, errors.New("user id is required")
	}
	var cart models.Cart
	err := r.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	// user_id 唯一索引保证并发创建只有一条胜出
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	if err := r.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetByUser 获取用户购物车（含商品明细）
func (r *GormCartRepository) GetByUser(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, nil
	}
	var cart models.Cart
	if err := r.db.Preload("Items.Product.Variants").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetByUserForUpdate 锁定用户购物车行，需在事务内调用
func (r *GormCartRepository) GetByUserForUpdate(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, nil
	}
	var cart models.Cart
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.db.Preload("Product.Variants").
		Where("cart_id = ?", cart.ID).
		Order("id asc").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertItem 添加商品到购物车，已存在时累加数量
func (r *GormCartRepository) UpsertItem(cartID, productID uint, quantity int) error {
	if cartID == 0 || productID == 0 || quantity <= 0 {
		return errors.New("invalid cart item")
	}
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("quantity + ?", quantity)}),
	}).Create(&item).Error
}

// GetItemByIDAndCart 获取属于指定购物车的条目
func (r *GormCartRepository) GetItemByIDAndCart(itemID, cartID uint) (*models.CartItem, error) {
	if itemID == 0 || cartID == 0 {
		return nil, nil
	}
	var item models.CartItem
	if err := r.db.Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity 覆盖条目数量
func (r *GormCartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	if itemID == 0 || quantity <= 0 {
		return errors.New("invalid quantity")
	}
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem 删除条目
func (r *GormCartRepository) DeleteItem(itemID uint) error {
	if itemID == 0 {
		return errors.New("item id is required")
	}
	return r.db.Delete(&models.CartItem{}, itemID).Error
}

// ClearByCart 清空购物车条目
func (r *GormCartRepository) ClearByCart(cartID uint) error {
	if cartID == 0 {
		return errors.New("cart id is required")
	}
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
