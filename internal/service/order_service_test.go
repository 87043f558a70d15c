package service

import (
	"errors"
	"testing"

	"github.com/tarano297/pocopini2/internal/constants"
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/repository"

	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T, name string) (*OrderService, *CartService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t, name)
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderSvc := NewOrderService(
		db,
		repository.NewOrderRepository(db),
		cartRepo,
		productRepo,
		repository.NewProductVariantRepository(db),
		repository.NewAddressRepository(db),
		NewProductService(productRepo),
		nil,
	)
	cartSvc := NewCartService(cartRepo, productRepo)
	return orderSvc, cartSvc, db
}

func TestCreateOrderFreezesPricesAndClearsCart(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_create")
	user := createTestUser(t, db, "order1@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodExpress,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("expected payment pending, got %s", order.PaymentStatus)
	}
	if !order.TotalPrice.Equal(models.NewMoneyFromInt(150000)) {
		t.Fatalf("expected total 150000, got %s", order.TotalPrice.String())
	}
	if !order.ShippingCost.Equal(models.NewMoneyFromInt(constants.ShippingCostExpress)) {
		t.Fatalf("expected shipping 50000, got %s", order.ShippingCost.String())
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.VariantID == 0 {
		t.Fatalf("expected variant reference on order item")
	}
	if !item.Price.Equal(models.NewMoneyFromInt(100000)) {
		t.Fatalf("expected frozen price 100000, got %s", item.Price.String())
	}

	// 购物车已随下单清空
	cart, err := cartSvc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cart cleared after checkout, got %d items", len(cart.Items))
	}

	// 库存已扣减
	var variant models.ProductVariant
	if err := db.First(&variant, item.VariantID).Error; err != nil {
		t.Fatalf("load variant failed: %v", err)
	}
	if variant.Stock != 9 {
		t.Fatalf("expected stock 9 after checkout, got %d", variant.Stock)
	}
}

func TestCreateOrderFrozenPriceSurvivesRepricing(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_frozen_price")
	user := createTestUser(t, db, "order2@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", models.NewMoneyFromInt(999999)).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}

	reloaded, err := orderSvc.GetOrder(user.ID, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if !reloaded.Items[0].Price.Equal(models.NewMoneyFromInt(100000)) {
		t.Fatalf("expected frozen price 100000, got %s", reloaded.Items[0].Price.String())
	}
	if !reloaded.TotalPrice.Equal(models.NewMoneyFromInt(230000)) {
		t.Fatalf("expected total 230000, got %s", reloaded.TotalPrice.String())
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	orderSvc, _, db := setupOrderServiceTest(t, "order_empty_cart")
	user := createTestUser(t, db, "order3@example.com")
	address := createTestAddress(t, db, user.ID)

	_, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_out_of_stock")
	user := createTestUser(t, db, "order4@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 1)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	_, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}

	// 失败的下单不清空购物车也不扣库存
	cart, err := cartSvc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected cart untouched after failed checkout, got %d items", len(cart.Items))
	}
	var variant models.ProductVariant
	if err := db.Where("product_id = ?", product.ID).First(&variant).Error; err != nil {
		t.Fatalf("load variant failed: %v", err)
	}
	if variant.Stock != 1 {
		t.Fatalf("expected stock untouched, got %d", variant.Stock)
	}
}

func TestCreateOrderRejectsUnknownShippingMethod(t *testing.T) {
	orderSvc, _, db := setupOrderServiceTest(t, "order_bad_shipping")
	user := createTestUser(t, db, "order5@example.com")
	address := createTestAddress(t, db, user.ID)

	_, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: "teleport",
	})
	if !errors.Is(err, ErrShippingMethod) {
		t.Fatalf("expected ErrShippingMethod, got %v", err)
	}
}

func TestCreateOrderRejectsForeignAddress(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_foreign_address")
	user := createTestUser(t, db, "order6@example.com")
	other := createTestUser(t, db, "order7@example.com")
	otherAddress := createTestAddress(t, db, other.ID)
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	_, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      otherAddress.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if !errors.Is(err, ErrAddressNotOwned) {
		t.Fatalf("expected ErrAddressNotOwned, got %v", err)
	}
}

func TestGetOrderOwnership(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_ownership")
	user := createTestUser(t, db, "order8@example.com")
	other := createTestUser(t, db, "order9@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if _, err := orderSvc.GetOrder(other.ID, order.ID); !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("expected ErrOrderForbidden, got %v", err)
	}
	if _, err := orderSvc.GetOrder(user.ID, order.ID+100); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_cancel")
	user := createTestUser(t, db, "order10@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 5)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	cancelled, err := orderSvc.CancelOrder(user.ID, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	var variant models.ProductVariant
	if err := db.Where("product_id = ?", product.ID).First(&variant).Error; err != nil {
		t.Fatalf("load variant failed: %v", err)
	}
	if variant.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", variant.Stock)
	}

	// 终态订单不可再取消
	if _, err := orderSvc.CancelOrder(user.ID, order.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}
}

func TestCancelOrderRejectsPaidOrder(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_cancel_paid")
	user := createTestUser(t, db, "order11@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 5)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_status", constants.PaymentStatusPaid).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if _, err := orderSvc.CancelOrder(user.ID, order.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable for paid order, got %v", err)
	}
}

func TestAdminUpdateStatusEnforcesStateMachine(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_admin_status")
	user := createTestUser(t, db, "order12@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 5)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// pending 不能直接发货
	if _, err := orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusShipped); !errors.Is(err, ErrOrderStateInvalid) {
		t.Fatalf("expected ErrOrderStateInvalid, got %v", err)
	}

	updated, err := orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("AdminUpdateStatus processing failed: %v", err)
	}
	if updated.Status != constants.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
	if _, err := orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusShipped); err != nil {
		t.Fatalf("AdminUpdateStatus shipped failed: %v", err)
	}
	if _, err := orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusDelivered); err != nil {
		t.Fatalf("AdminUpdateStatus delivered failed: %v", err)
	}
	if _, err := orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrOrderStateInvalid) {
		t.Fatalf("expected ErrOrderStateInvalid for delivered order, got %v", err)
	}
}

func TestAdminDeleteOrderOnlyWhilePending(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t, "order_admin_delete")
	user := createTestUser(t, db, "order13@example.com")
	address := createTestAddress(t, db, user.ID)
	product := createTestProduct(t, db, "shirt", 100000, 5)

	if _, err := cartSvc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if _, err := orderSvc.AdminUpdateStatus(order.ID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("AdminUpdateStatus failed: %v", err)
	}
	if err := orderSvc.AdminDeleteOrder(order.ID); !errors.Is(err, ErrOrderStateInvalid) {
		t.Fatalf("expected ErrOrderStateInvalid for non-pending order, got %v", err)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusPending).Error; err != nil {
		t.Fatalf("reset status failed: %v", err)
	}
	if err := orderSvc.AdminDeleteOrder(order.ID); err != nil {
		t.Fatalf("AdminDeleteOrder failed: %v", err)
	}
	if _, err := orderSvc.AdminGetOrder(order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after delete, got %v", err)
	}
}

func TestShippingCostFor(t *testing.T) {
	standard, err := shippingCostFor(constants.ShippingMethodStandard)
	if err != nil {
		t.Fatalf("standard shipping failed: %v", err)
	}
	if !standard.Equal(models.NewMoneyFromInt(30000)) {
		t.Fatalf("expected 30000, got %s", standard.String())
	}
	express, err := shippingCostFor(constants.ShippingMethodExpress)
	if err != nil {
		t.Fatalf("express shipping failed: %v", err)
	}
	if !express.Equal(models.NewMoneyFromInt(50000)) {
		t.Fatalf("expected 50000, got %s", express.String())
	}
	if _, err := shippingCostFor("pigeon"); !errors.Is(err, ErrShippingMethod) {
		t.Fatalf("expected ErrShippingMethod, got %v", err)
	}
}
