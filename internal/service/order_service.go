package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tarano297/pocopini2/internal/constants"
	"github.com/tarano297/pocopini2/internal/logger"
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/queue"
	"github.com/tarano297/pocopini2/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.ProductVariantRepository
	addressRepo repository.AddressRepository
	productSvc  *ProductService
	queueClient *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, variantRepo repository.ProductVariantRepository, addressRepo repository.AddressRepository, productSvc *ProductService, queueClient *queue.Client) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		addressRepo: addressRepo,
		productSvc:  productSvc,
		queueClient: queueClient,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID         uint
	AddressID      uint
	ShippingMethod string
}

// shippingCostFor 根据配送方式返回运费
func shippingCostFor(method string) (models.Money, error) {
	switch method {
	case constants.ShippingMethodStandard:
		return models.NewMoneyFromInt(constants.ShippingCostStandard), nil
	case constants.ShippingMethodExpress:
		return models.NewMoneyFromInt(constants.ShippingCostExpress), nil
	default:
		return models.Money{}, ErrShippingMethod
	}
}

// CreateOrder 从购物车创建订单。价格在此刻冻结，库存在同一事务内
// 条件扣减，成功后清空购物车。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrOrderForbidden
	}
	shippingCost, err := shippingCostFor(input.ShippingMethod)
	if err != nil {
		return nil, err
	}
	address, err := s.addressRepo.GetByIDAndUser(input.AddressID, input.UserID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotOwned
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		cart, err := cartRepo.GetByUserForUpdate(input.UserID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		totalPrice := shippingCost
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			product := line.Product
			if product == nil || !product.IsActive {
				return ErrProductNotAvailable
			}
			if line.Quantity <= 0 {
				return ErrInvalidQuantity
			}
			variantID, err := reserveVariant(variantRepo, product, line.Quantity)
			if err != nil {
				return err
			}
			subtotal := product.Price.Mul(line.Quantity)
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				VariantID:   variantID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
				Subtotal:    subtotal,
			})
			totalPrice = totalPrice.Add(subtotal)
		}

		addressID := address.ID
		order = &models.Order{
			OrderNo:        generateOrderNo(),
			UserID:         input.UserID,
			AddressID:      &addressID,
			Status:         constants.OrderStatusPending,
			PaymentStatus:  constants.PaymentStatusPending,
			TotalPrice:     totalPrice,
			ShippingMethod: input.ShippingMethod,
			ShippingCost:   shippingCost,
			Items:          items,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		return cartRepo.ClearByCart(cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateItemCaches(order.Items)
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", input.UserID,
		"total_price", order.TotalPrice.String(),
	)
	return order, nil
}

// invalidateItemCaches 库存变动后清除涉及商品的缓存
func (s *OrderService) invalidateItemCaches(items []models.OrderItem) {
	if s.productSvc == nil {
		return
	}
	for _, item := range items {
		s.productSvc.InvalidateProduct(context.Background(), item.ProductID)
	}
}

// reserveVariant 为购物车行挑选规格并条件扣减库存。
// 任一规格余量足够即成立，全部不足时返回库存错误。
func reserveVariant(variantRepo repository.ProductVariantRepository, product *models.Product, quantity int) (uint, error) {
	for _, variant := range product.Variants {
		if variant.Stock < quantity {
			continue
		}
		ok, err := variantRepo.ReserveStock(variant.ID, quantity)
		if err != nil {
			return 0, err
		}
		if ok {
			return variant.ID, nil
		}
	}
	return 0, ErrOutOfStock
}

// GetOrder 获取订单，校验归属
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// ListOrders 用户订单分页列表
func (s *OrderService) ListOrders(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(userID, page, pageSize)
}

// CancelOrder 用户取消订单。仅未支付且状态机允许时可取消，
// 取消时归还已扣减的库存。
func (s *OrderService) CancelOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil, ErrOrderNotCancellable
	}
	if !CanTransition(order.Status, constants.OrderStatusCancelled) {
		return nil, ErrOrderNotCancellable
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)
		// 条件迁移裁决并发取消，只有胜出方归还库存
		ok, err := orderRepo.UpdateStatusFrom(order.ID, order.Status, constants.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotCancellable
		}
		for _, item := range order.Items {
			if err := variantRepo.ReleaseStock(item.VariantID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Status = constants.OrderStatusCancelled
	s.invalidateItemCaches(order.Items)

	logger.Infow("order_cancelled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", userID,
	)
	s.notifyStatusChange(order.ID, constants.OrderStatusCancelled)
	return order, nil
}

// AdminGetOrder 管理端获取订单
func (s *OrderService) AdminGetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// AdminListOrders 管理端订单分页列表
func (s *OrderService) AdminListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// AdminUpdateStatus 管理端推进订单状态，非法迁移被拒绝
func (s *OrderService) AdminUpdateStatus(orderID uint, target string) (*models.Order, error) {
	order, err := s.AdminGetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == target {
		return order, nil
	}
	if !CanTransition(order.Status, target) {
		return nil, ErrOrderStateInvalid
	}

	if target == constants.OrderStatusCancelled {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			variantRepo := s.variantRepo.WithTx(tx)
			ok, err := orderRepo.UpdateStatusFrom(order.ID, order.Status, target)
			if err != nil {
				return err
			}
			if !ok {
				return ErrOrderStateInvalid
			}
			for _, item := range order.Items {
				if err := variantRepo.ReleaseStock(item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
			return nil
		})
	} else {
		ok, updateErr := s.orderRepo.UpdateStatusFrom(order.ID, order.Status, target)
		if updateErr == nil && !ok {
			updateErr = ErrOrderStateInvalid
		}
		err = updateErr
	}
	if err != nil {
		return nil, err
	}
	previous := order.Status
	order.Status = target
	if target == constants.OrderStatusCancelled {
		s.invalidateItemCaches(order.Items)
	}

	logger.Infow("order_status_updated",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", previous,
		"to", target,
	)
	s.notifyStatusChange(order.ID, target)
	return order, nil
}

// AdminDeleteOrder 管理端删除订单
func (s *OrderService) AdminDeleteOrder(orderID uint) error {
	order, err := s.AdminGetOrder(orderID)
	if err != nil {
		return err
	}
	// 仅待支付订单可删除，进入履约或终态后保留记录
	if order.Status != constants.OrderStatusPending {
		return ErrOrderStateInvalid
	}
	return s.orderRepo.Delete(order.ID)
}

// notifyStatusChange 推送订单状态邮件任务，队列未启用时静默跳过
func (s *OrderService) notifyStatusChange(orderID uint, status string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_status_email_enqueue_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("PK%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}
