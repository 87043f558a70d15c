package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/tarano297/pocopini2/internal/constants"
	"github.com/tarano297/pocopini2/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate order tables failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func createPendingOrderRow(t *testing.T, db *gorm.DB, orderNo string) *models.Order {
	t.Helper()
	user := &models.User{Email: orderNo + "@example.com", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        user.ID,
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		TotalPrice:    models.NewMoneyFromDecimal(decimal.NewFromInt(130000)),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestUpdateStatusFromConditionalTransition(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := createPendingOrderRow(t, db, "PK-CAS-1")

	ok, err := repo.UpdateStatusFrom(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatusFrom failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected transition to apply")
	}

	// 状态已变化时条件更新不生效，落后的并发迁移被拒绝
	ok, err = repo.UpdateStatusFrom(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatusFrom failed: %v", err)
	}
	if ok {
		t.Fatalf("expected stale transition to be rejected")
	}

	stored, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}
}
