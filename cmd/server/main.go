package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/shopcore/backend/internal/application/catalog"
	inventoryapp "github.com/shopcore/backend/internal/application/inventory"
	promotionapp "github.com/shopcore/backend/internal/application/promotion"
	"github.com/shopcore/backend/internal/infrastructure/cache"
	"github.com/shopcore/backend/internal/infrastructure/config"
	"github.com/shopcore/backend/internal/infrastructure/event"
	"github.com/shopcore/backend/internal/infrastructure/lock"
	"github.com/shopcore/backend/internal/infrastructure/logger"
	"github.com/shopcore/backend/internal/infrastructure/persistence"
	"github.com/shopcore/backend/internal/interfaces/http/handler"
	"github.com/shopcore/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shopcore backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	ledgerRepo := persistence.NewGormStockLedgerRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	userCouponRepo := persistence.NewGormUserCouponRepository(db.DB)

	// Caching layer. Redis is optional; without it products are cached in
	// process and the sales ranking is disabled.
	var (
		productCache cache.ProductCache
		ranking      cache.SalesRanking
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		productCache = cache.NewRedisProductCache(redisClient,
			cache.WithProductTTL(cfg.Cache.ProductTTL),
			cache.WithCacheLogger(log),
		)
		ranking = cache.NewRedisSalesRanking(redisClient)
		log.Info("Redis connected")
	} else {
		productCache = cache.NewInMemoryProductCache(cfg.Cache.ProductTTL)
		ranking = cache.NoopSalesRanking{}
		log.Info("Redis disabled, using in-process product cache")
	}

	// Event bus with the catalog projection subscribed
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(catalogapp.NewStockEventHandler(productCache, ranking, log))

	// Application services
	locks := lock.NewKeyedRegistry()
	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	promotionScope := persistence.NewGormPromotionTransactionScope(db.DB)

	stockService := inventoryapp.NewStockService(locks, stockScope, ledgerRepo, log,
		inventoryapp.WithLockTimeout(cfg.Lock.AcquireTimeout),
		inventoryapp.WithEventPublisher(bus),
	)
	couponService := promotionapp.NewCouponService(locks, promotionScope, couponRepo, userCouponRepo, log,
		promotionapp.WithLockTimeout(cfg.Lock.AcquireTimeout),
		promotionapp.WithValidity(cfg.Coupon.Validity),
		promotionapp.WithEventPublisher(bus),
	)
	productService := catalogapp.NewProductService(stockScope, productRepo, log,
		catalogapp.WithProductCache(productCache),
		catalogapp.WithSalesRanking(ranking),
		catalogapp.WithEventPublisher(bus),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(log, router.Handlers{
		Stock:   handler.NewStockHandler(stockService),
		Coupon:  handler.NewCouponHandler(couponService),
		Product: handler.NewProductHandler(productService),
		System:  handler.NewSystemHandler(db.Ping),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
