package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/anthony-1214/shop-service/pkg/tls"
)

const (
	BackendMemory   = "memory"
	BackendDynamo   = "dynamo"
	BackendPostgres = "postgres"

	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"
)

// Config is the only place runtime environment is inspected. Everything
// below cmd/ receives explicit values or interfaces.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// StoreBackend selects the catalog/order/document persistence:
	// memory (local mode, no external services), dynamo, or postgres.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	CartBackend  string `envconfig:"CART_BACKEND" default:"memory"`

	// CheckoutStrict fails the whole checkout when a cart line references
	// a missing product instead of skipping the line.
	CheckoutStrict bool `envconfig:"CHECKOUT_STRICT" default:"false"`
	// StockStrict rejects decrements that exceed the available stock
	// instead of clamping at zero.
	StockStrict bool `envconfig:"STOCK_STRICT" default:"false"`

	AWSRegion         string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	ProductTableName  string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	OrderTableName    string `envconfig:"ORDER_TABLE_NAME" default:"orders-table"`
	DocumentTableName string `envconfig:"DOCUMENT_TABLE_NAME" default:"batch-documents-table"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" default:"postgres://localhost:5432/shop_demo?sslmode=disable"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// KafkaBrokers empty disables event publishing.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`

	TLS tls.TLSConfig
}

func Load() (*Config, error) {
	// A local .env beside the binary overrides nothing already exported.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendDynamo, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	switch cfg.CartBackend {
	case CartBackendMemory, CartBackendRedis:
	default:
		return nil, fmt.Errorf("unknown CART_BACKEND %q", cfg.CartBackend)
	}

	return &cfg, nil
}
