package service

import (
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应），单价与小计为当前实时价格
type CartItemDetail struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	Subtotal  models.Money    `json:"subtotal"`
	InStock   bool            `json:"in_stock"`
	Product   *models.Product `json:"product,omitempty"`
}

// CartDetail 购物车详情（用于响应）
type CartDetail struct {
	CartID     uint             `json:"cart_id"`
	Items      []CartItemDetail `json:"items"`
	TotalPrice models.Money     `json:"total_price"`
	TotalItems int              `json:"total_items"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart 获取用户购物车，金额按当前商品价格实时计算
func (s *CartService) GetCart(userID uint) (*CartDetail, error) {
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(cart), nil
}

// AddItem 添加商品到购物车，重复添加时累加数量
func (s *CartService) AddItem(userID, productID uint, quantity int) (*CartDetail, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}
	// 所有规格都无库存的商品不可加入购物车
	if !product.IsInStock() {
		return nil, ErrOutOfStock
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.UpsertItem(cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// UpdateItemQuantity 覆盖购物车项数量
func (s *CartService) UpdateItemQuantity(userID, itemID uint, quantity int) (*CartDetail, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.GetItemByIDAndCart(itemID, cart.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, itemID uint) (*CartDetail, error) {
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.GetItemByIDAndCart(itemID, cart.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.DeleteItem(item.ID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.ClearByCart(cart.ID)
}

func (s *CartService) buildDetail(cart *models.Cart) *CartDetail {
	detail := &CartDetail{
		CartID:     cart.ID,
		Items:      make([]CartItemDetail, 0, len(cart.Items)),
		TotalPrice: models.NewMoneyFromInt(0),
	}
	for _, item := range cart.Items {
		d := CartItemDetail{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   item.Product,
		}
		if item.Product != nil {
			d.UnitPrice = item.Product.Price
			d.Subtotal = item.Product.Price.Mul(item.Quantity)
			d.InStock = item.Product.IsInStock()
		}
		detail.TotalPrice = detail.TotalPrice.Add(d.Subtotal)
		detail.TotalItems += item.Quantity
		detail.Items = append(detail.Items, d)
	}
	return detail
}
