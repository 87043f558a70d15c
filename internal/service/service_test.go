package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tarano297/pocopini2/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Admin{},
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
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestAddress(t *testing.T, db *gorm.DB, userID uint) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:      userID,
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
	return address
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     "Test " + slug,
		Slug:     slug,
		Category: "men",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		IsActive: true,
		Variants: []models.ProductVariant{
			{Color: "black", Size: "M", SKU: slug + "-BK-M", Stock: stock},
		},
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}
