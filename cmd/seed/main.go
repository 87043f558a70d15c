package main

import (
	"github.com/tarano297/pocopini2/internal/config"
	"github.com/tarano297/pocopini2/internal/logger"
	"github.com/tarano297/pocopini2/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	products := []models.Product{
		{
			Name:        "پیراهن نخی مردانه",
			Slug:        "mens-cotton-shirt",
			Description: "پیراهن نخی با کیفیت، مناسب استفاده روزمره",
			Category:    "men",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(450000)),
			IsActive:    true,
			Variants: []models.ProductVariant{
				{Color: "white", Size: "M", SKU: "SHIRT-WH-M", Stock: 25},
				{Color: "white", Size: "L", SKU: "SHIRT-WH-L", Stock: 20},
				{Color: "blue", Size: "M", SKU: "SHIRT-BL-M", Stock: 15},
			},
		},
		{
			Name:        "مانتو تابستانه زنانه",
			Slug:        "womens-summer-manto",
			Description: "مانتو سبک تابستانه با پارچه خنک",
			Category:    "women",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(780000)),
			IsActive:    true,
			Variants: []models.ProductVariant{
				{Color: "black", Size: "S", SKU: "MANTO-BK-S", Stock: 10},
				{Color: "black", Size: "M", SKU: "MANTO-BK-M", Stock: 12},
				{Color: "beige", Size: "M", SKU: "MANTO-BG-M", Stock: 8},
			},
		},
		{
			Name:        "تی‌شرت بچگانه",
			Slug:        "kids-tshirt",
			Description: "تی‌شرت نخی بچگانه با طرح‌های شاد",
			Category:    "kids",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(220000)),
			IsActive:    true,
			Variants: []models.ProductVariant{
				{Color: "red", Size: "4-5", SKU: "KIDS-RD-45", Stock: 30},
				{Color: "yellow", Size: "6-7", SKU: "KIDS-YL-67", Stock: 30},
			},
		},
		{
			Name:        "شلوار جین مردانه",
			Slug:        "mens-jeans",
			Description: "شلوار جین راسته با دوخت مقاوم",
			Category:    "men",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(950000)),
			IsActive:    true,
			Variants: []models.ProductVariant{
				{Color: "dark-blue", Size: "32", SKU: "JEANS-DB-32", Stock: 18},
				{Color: "dark-blue", Size: "34", SKU: "JEANS-DB-34", Stock: 14},
				{Color: "black", Size: "32", SKU: "JEANS-BK-32", Stock: 9},
			},
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	stdLog.Printf("Seed finished")
}
