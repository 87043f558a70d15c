package service

import (
	"errors"
	"testing"

	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T, name string) (*CartService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t, name)
	svc := NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestCartAddItemIncrementsQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_add_increment")
	user := createTestUser(t, db, "cart1@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := svc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("first AddItem failed: %v", err)
	}
	cart, err := svc.AddItem(user.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("second AddItem failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalItems != 5 {
		t.Fatalf("expected total items 5, got %d", cart.TotalItems)
	}
}

func TestCartAddItemRejectsInvalidQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_invalid_quantity")
	user := createTestUser(t, db, "cart2@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := svc.AddItem(user.ID, product.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddItem(user.ID, product.ID, -2); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCartAddItemRejectsInactiveProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_inactive_product")
	user := createTestUser(t, db, "cart3@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 10)
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if _, err := svc.AddItem(user.ID, product.ID, 1); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable, got %v", err)
	}
}

func TestCartAddItemRejectsSoldOutProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_sold_out")
	user := createTestUser(t, db, "cart7@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 0)

	if _, err := svc.AddItem(user.ID, product.ID, 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	cart, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after rejected add, got %d items", len(cart.Items))
	}
}

func TestCartTotalsFollowCurrentPrices(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_live_prices")
	user := createTestUser(t, db, "cart4@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 10)

	if _, err := svc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	cart, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if !cart.TotalPrice.Equal(models.NewMoneyFromInt(200000)) {
		t.Fatalf("expected total 200000, got %s", cart.TotalPrice.String())
	}

	// 商品调价后购物车金额立即跟随
	newPrice := models.NewMoneyFromDecimal(decimal.NewFromInt(150000))
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", newPrice).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	cart, err = svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("GetCart after price change failed: %v", err)
	}
	if !cart.TotalPrice.Equal(models.NewMoneyFromInt(300000)) {
		t.Fatalf("expected total 300000 after price change, got %s", cart.TotalPrice.String())
	}
}

func TestCartUpdateAndRemoveItem(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_update_remove")
	user := createTestUser(t, db, "cart5@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 10)

	cart, err := svc.AddItem(user.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItemQuantity(user.ID, itemID, 7)
	if err != nil {
		t.Fatalf("UpdateItemQuantity failed: %v", err)
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Items[0].Quantity)
	}

	cart, err = svc.RemoveItem(user.ID, itemID)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}

	if _, err := svc.RemoveItem(user.ID, itemID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartUpdateItemRejectsForeignItem(t *testing.T) {
	svc, db := setupCartServiceTest(t, "cart_foreign_item")
	owner := createTestUser(t, db, "cart6@example.com")
	other := createTestUser(t, db, "cart7@example.com")
	product := createTestProduct(t, db, "shirt", 100000, 10)

	cart, err := svc.AddItem(owner.ID, product.ID, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	itemID := cart.Items[0].ID

	if _, err := svc.UpdateItemQuantity(other.ID, itemID, 3); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound for other user, got %v", err)
	}
}
