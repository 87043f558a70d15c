package provider

import (
	"github.com/tarano297/pocopini2/internal/cache"
	"github.com/tarano297/pocopini2/internal/config"
	"github.com/tarano297/pocopini2/internal/logger"
	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/queue"
	"github.com/tarano297/pocopini2/internal/repository"
	"github.com/tarano297/pocopini2/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo   repository.AdminRepository
	UserRepo    repository.UserRepository
	AddressRepo repository.AddressRepository
	ProductRepo repository.ProductRepository
	VariantRepo repository.ProductVariantRepository
	CartRepo    repository.CartRepository
	OrderRepo   repository.OrderRepository

	// Services
	AuthService    *service.AuthService
	AddressService *service.AddressService
	ProductService *service.ProductService
	CartService    *service.CartService
	OrderService   *service.OrderService
	PaymentService *service.PaymentService
	EmailService   *service.EmailService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewProductVariantRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.AdminRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(models.DB, c.OrderRepo, c.CartRepo, c.ProductRepo, c.VariantRepo, c.AddressRepo, c.ProductService, c.QueueClient)
	c.PaymentService = service.NewPaymentService(models.DB, c.OrderRepo, c.QueueClient, &c.Config.Payment)
	c.EmailService = service.NewEmailService(&c.Config.Email)
}

// Close 释放容器资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
}
