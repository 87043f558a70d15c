package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tarano297/pocopini2/internal/cache"
	"github.com/tarano297/pocopini2/internal/logger"
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductListResult 商品列表结果
type ProductListResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// ListProducts 前台商品列表，仅展示上架商品
func (s *ProductService) ListProducts(filter repository.ProductListFilter) (*ProductListResult, error) {
	filter.ActiveOnly = true
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products, Total: total}, nil
}

// GetProduct 获取商品详情，命中缓存时直接返回
func (s *ProductService) GetProduct(ctx context.Context, productID uint) (*models.Product, error) {
	cacheKey := fmt.Sprintf("product:%d", productID)
	var cached models.Product
	hit, err := cache.GetJSON(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warnw("product_cache_read_failed", "product_id", productID, "error", err)
	}
	if hit {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}
	if err := cache.SetJSON(ctx, cacheKey, product, productCacheTTL); err != nil {
		logger.Warnw("product_cache_write_failed", "product_id", productID, "error", err)
	}
	return product, nil
}

// InvalidateProduct 清除商品缓存，商品或库存变更后调用
func (s *ProductService) InvalidateProduct(ctx context.Context, productID uint) {
	if err := cache.Del(ctx, fmt.Sprintf("product:%d", productID)); err != nil {
		logger.Warnw("product_cache_del_failed", "product_id", productID, "error", err)
	}
}
