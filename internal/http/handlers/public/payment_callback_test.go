package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tarano297/pocopini2/internal/config"
	"github.com/tarano297/pocopini2/internal/constants"
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/provider"
	"github.com/tarano297/pocopini2/internal/repository"
	"github.com/tarano297/pocopini2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPublicHandlerTest(t *testing.T, name, verifyURL string) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(
		db,
		orderRepo,
		cartRepo,
		productRepo,
		repository.NewProductVariantRepository(db),
		repository.NewAddressRepository(db),
		productSvc,
		nil,
	)
	container := &provider.Container{
		CartService:  service.NewCartService(cartRepo, productRepo),
		OrderService: orderSvc,
		PaymentService: service.NewPaymentService(db, orderRepo, nil, &config.PaymentConfig{
			GatewayURL:       "https://gateway.example/pay",
			VerifyURL:        verifyURL,
			CallbackURL:      "https://shop.example/api/v1/payments/callback",
			VerifyTimeoutMS:  2000,
			VerifyMaxRetries: 3,
		}),
	}
	return New(container), db
}

func createPaidableOrder(t *testing.T, h *Handler, db *gorm.DB, email string) *models.Order {
	t.Helper()
	user := &models.User{Email: email, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	address := &models.Address{
		UserID:      user.ID,
		FullName:    "Sara Ahmadi",
		PhoneNumber: "09120000000",
		Province:    "Tehran",
		City:        "Tehran",
		PostalCode:  "1234567890",
		AddressLine: "Valiasr St, No. 10",
	}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	product := &models.Product{
		Name:     "Test " + email,
		Slug:     "shirt-" + strings.ReplaceAll(email, "@", "-"),
		Category: "men",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		IsActive: true,
		Variants: []models.ProductVariant{
			{Color: "black", Size: "M", SKU: email + "-BK-M", Stock: 5},
		},
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := h.CartService.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:         user.ID,
		AddressID:      address.ID,
		ShippingMethod: constants.ShippingMethodStandard,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return order
}

func postCallbackForm(t *testing.T, h *Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	h.PaymentCallback(c)
	return w
}

func TestPaymentCallbackReadsStatusField(t *testing.T) {
	var orderAmount string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"state":  "ok",
			"ref_id": "REF-7001",
			"amount": orderAmount,
		})
	}))
	defer gateway.Close()

	h, db := setupPublicHandlerTest(t, "handler_callback_status", gateway.URL)
	order := createPaidableOrder(t, h, db, "cb1@example.com")
	orderAmount = order.TotalPrice.String()
	tokenResult, err := h.PaymentService.CreatePaymentToken(order.UserID, order.ID)
	if err != nil {
		t.Fatalf("CreatePaymentToken failed: %v", err)
	}

	w := postCallbackForm(t, h, url.Values{
		"token":  {tokenResult.Token},
		"status": {constants.CallbackResultSuccess},
		"ref_id": {"REF-7001"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", stored.PaymentStatus)
	}
}

func TestPaymentCallbackLegacyResultField(t *testing.T) {
	h, db := setupPublicHandlerTest(t, "handler_callback_legacy", "https://verify.example")
	order := createPaidableOrder(t, h, db, "cb2@example.com")
	tokenResult, err := h.PaymentService.CreatePaymentToken(order.UserID, order.ID)
	if err != nil {
		t.Fatalf("CreatePaymentToken failed: %v", err)
	}

	w := postCallbackForm(t, h, url.Values{
		"token":  {tokenResult.Token},
		"result": {constants.CallbackResultFailed},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", stored.PaymentStatus)
	}
}

func TestPaymentCallbackMissingResultDefaultsFailed(t *testing.T) {
	h, db := setupPublicHandlerTest(t, "handler_callback_missing", "https://verify.example")
	order := createPaidableOrder(t, h, db, "cb3@example.com")
	tokenResult, err := h.PaymentService.CreatePaymentToken(order.UserID, order.ID)
	if err != nil {
		t.Fatalf("CreatePaymentToken failed: %v", err)
	}

	w := postCallbackForm(t, h, url.Values{"token": {tokenResult.Token}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", stored.PaymentStatus)
	}
}
