package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/tarano297/pocopini2/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) (*GormCartRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("migrate cart tables failed: %v", err)
	}
	return NewCartRepository(db), db
}

func createCartProduct(t *testing.T, db *gorm.DB, slug string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     "Test " + slug,
		Slug:     slug,
		Category: "men",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestGetOrCreateByUserIsStable(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	user := &models.User{Email: "cart@example.com", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	first, err := repo.GetOrCreateByUser(user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByUser failed: %v", err)
	}
	second, err := repo.GetOrCreateByUser(user.ID)
	if err != nil {
		t.Fatalf("second GetOrCreateByUser failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected a single cart per user, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count carts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cart row, got %d", count)
	}
}

func TestUpsertItemAccumulatesQuantity(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	user := &models.User{Email: "cart2@example.com", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	product := createCartProduct(t, db, "upsert-shirt")

	cart, err := repo.GetOrCreateByUser(user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByUser failed: %v", err)
	}
	if err := repo.UpsertItem(cart.ID, product.ID, 2); err != nil {
		t.Fatalf("first UpsertItem failed: %v", err)
	}
	if err := repo.UpsertItem(cart.ID, product.ID, 3); err != nil {
		t.Fatalf("second UpsertItem failed: %v", err)
	}

	var items []models.CartItem
	if err := db.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		t.Fatalf("load items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one row per product, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestClearByCartRemovesAllItems(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	user := &models.User{Email: "cart3@example.com", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	first := createCartProduct(t, db, "clear-shirt")
	second := createCartProduct(t, db, "clear-jeans")

	cart, err := repo.GetOrCreateByUser(user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByUser failed: %v", err)
	}
	if err := repo.UpsertItem(cart.ID, first.ID, 1); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}
	if err := repo.UpsertItem(cart.ID, second.ID, 2); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	if err := repo.ClearByCart(cart.ID); err != nil {
		t.Fatalf("ClearByCart failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&count).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty cart, got %d items", count)
	}
}

func TestGetItemByIDAndCartScopesToCart(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)
	alice := &models.User{Email: "cart4@example.com", IsActive: true}
	bob := &models.User{Email: "cart5@example.com", IsActive: true}
	for _, u := range []*models.User{alice, bob} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	product := createCartProduct(t, db, "scoped-shirt")

	aliceCart, err := repo.GetOrCreateByUser(alice.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByUser failed: %v", err)
	}
	bobCart, err := repo.GetOrCreateByUser(bob.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByUser failed: %v", err)
	}
	if err := repo.UpsertItem(aliceCart.ID, product.ID, 1); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	var item models.CartItem
	if err := db.Where("cart_id = ?", aliceCart.ID).First(&item).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}

	found, err := repo.GetItemByIDAndCart(item.ID, aliceCart.ID)
	if err != nil {
		t.Fatalf("GetItemByIDAndCart failed: %v", err)
	}
	if found == nil {
		t.Fatalf("expected item in owner cart")
	}
	foreign, err := repo.GetItemByIDAndCart(item.ID, bobCart.ID)
	if err != nil {
		t.Fatalf("GetItemByIDAndCart failed: %v", err)
	}
	if foreign != nil {
		t.Fatalf("expected nil for another user's cart")
	}
}
