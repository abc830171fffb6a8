package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anthony-1214/shop-service/internal/cart"
	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/events"
	"github.com/anthony-1214/shop-service/internal/handler"
	"github.com/anthony-1214/shop-service/internal/repository"
	"github.com/anthony-1214/shop-service/internal/service"
	"github.com/anthony-1214/shop-service/pkg/config"
	"github.com/anthony-1214/shop-service/pkg/middleware"
	pkgtls "github.com/anthony-1214/shop-service/pkg/tls"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	catalogStore, orderStore, documents, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize stores", zap.Error(err))
	}

	cartStore, err := buildCartStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cart store", zap.Error(err))
	}

	var publisher service.OrderEventPublisher
	if cfg.KafkaBrokers != "" {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, logger)
		defer producer.Close()
		publisher = producer
	}

	missing := domainMissingPolicy(cfg)
	stock := domainStockPolicy(cfg)

	catalogService := service.NewCatalogService(catalogStore, logger)
	cartService := service.NewCartService(cartStore, logger)
	checkoutService := service.NewCheckoutService(
		cartStore, catalogStore, orderStore, publisher, missing, stock, logger)
	importService := service.NewImportService(documents, logger)

	productHandler := handler.NewProductHandler(catalogService, stock, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	importHandler := handler.NewImportHandler(importService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", productHandler.ListProducts)
		v1.POST("/products", productHandler.CreateProduct)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.POST("/products/:id/deduct", productHandler.DeductStock)

		v1.GET("/cart", cartHandler.ViewCart)
		v1.POST("/cart/items", cartHandler.AddItem)
		v1.PUT("/cart/items/:id", cartHandler.SetQty)
		v1.DELETE("/cart/items/:id", cartHandler.RemoveItem)

		v1.POST("/checkout", checkoutHandler.Checkout)
		v1.GET("/orders", checkoutHandler.ListOrders)
		v1.GET("/orders/:id", checkoutHandler.GetOrder)

		v1.GET("/documents", importHandler.ListDocuments)
		v1.POST("/documents/batch", importHandler.BatchInsert)
		v1.POST("/documents/batch-delete", importHandler.BatchDelete)

		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy"})
		})
	}

	tlsConfig, closeTLS, err := pkgtls.LoadTLSConfig(ctx, &cfg.TLS, logger)
	if err != nil {
		logger.Fatal("Failed to load TLS config", zap.Error(err))
	}
	defer closeTLS()

	srv := &http.Server{
		Addr:      ":" + cfg.Port,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("store_backend", cfg.StoreBackend),
			zap.String("cart_backend", cfg.CartBackend))

		var serveErr error
		if tlsConfig != nil {
			serveErr = srv.ListenAndServeTLS("", "")
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(serveErr))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zapCfg.Build()
}

// buildStores wires the persistence backend selected in config. Backend
// choice happens here and nowhere else; everything downstream sees the
// store interfaces.
func buildStores(ctx context.Context, cfg *config.Config) (repository.CatalogStore, repository.OrderStore, repository.DocumentCollection, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client, err := repository.NewDynamoDBClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewDynamoCatalogStore(client, cfg.ProductTableName),
			repository.NewDynamoOrderStore(client, cfg.OrderTableName, cfg.ProductTableName),
			repository.NewDynamoDocumentCollection(client, cfg.DocumentTableName),
			nil

	case config.BackendPostgres:
		db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return nil, nil, nil, err
		}
		return repository.NewPostgresCatalogStore(db),
			repository.NewPostgresOrderStore(db),
			repository.NewPostgresDocumentCollection(db),
			nil

	default:
		catalog := repository.NewMemoryCatalogStore()
		return catalog,
			repository.NewMemoryOrderStore(catalog),
			repository.NewMemoryDocumentCollection(),
			nil
	}
}

func buildCartStore(cfg *config.Config, logger *zap.Logger) (cart.Store, error) {
	if cfg.CartBackend == config.CartBackendRedis {
		return cart.NewRedisStore(cfg.RedisAddr, logger)
	}
	return cart.NewMemoryStore(), nil
}

func domainMissingPolicy(cfg *config.Config) domain.MissingLinePolicy {
	if cfg.CheckoutStrict {
		return domain.MissingFail
	}
	return domain.MissingSkip
}

func domainStockPolicy(cfg *config.Config) domain.StockPolicy {
	if cfg.StockStrict {
		return domain.StockStrict
	}
	return domain.StockClamp
}
