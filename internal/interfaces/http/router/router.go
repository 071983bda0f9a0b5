package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/infrastructure/logger"
	"github.com/shopcore/backend/internal/interfaces/http/handler"
)

// Handlers groups every handler the router wires up
type Handlers struct {
	Stock   *handler.StockHandler
	Coupon  *handler.CouponHandler
	Product *handler.ProductHandler
	System  *handler.SystemHandler
}

// Option is a functional option for router configuration
type Option func(*config)

type config struct {
	apiVersion string
}

// WithAPIVersion sets the API version prefix, "v1" by default
func WithAPIVersion(version string) Option {
	return func(c *config) {
		c.apiVersion = version
	}
}

// New builds the gin engine with logging, request ID and recovery
// middleware and all API routes registered.
func New(log *zap.Logger, h Handlers, opts ...Option) *gin.Engine {
	cfg := config{apiVersion: "v1"}
	for _, opt := range opts {
		opt(&cfg)
	}

	engine := gin.New()
	engine.Use(
		logger.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)

	engine.GET("/health", h.System.Health)
	engine.GET("/ping", h.System.Ping)

	api := engine.Group("/api/" + cfg.apiVersion)

	stock := api.Group("/stock")
	{
		stock.GET("/:productId/availability", h.Stock.CheckAvailability)
		stock.POST("/reduce", h.Stock.Reduce)
		stock.POST("/restore", h.Stock.Restore)
		stock.POST("/add", h.Stock.AddStock)
		stock.POST("/reduce-batch", h.Stock.ReduceBatch)
		stock.POST("/restore-batch", h.Stock.RestoreBatch)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/top-sellers", h.Product.TopSellers)
		products.GET("/:id", h.Product.Get)
		products.POST("/:id/disable", h.Product.Disable)
	}

	coupons := api.Group("/coupons")
	{
		coupons.POST("", h.Coupon.Create)
		coupons.GET("", h.Coupon.List)
		coupons.GET("/:id", h.Coupon.Get)
		coupons.POST("/:id/issue", h.Coupon.Issue)
	}

	api.POST("/user-coupons/:id/use", h.Coupon.Use)
	api.GET("/users/:userId/coupons", h.Coupon.ListUserCoupons)

	return engine
}
