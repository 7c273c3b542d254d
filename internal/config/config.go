package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StockBackendMemory = "memory"
	StockBackendRedis  = "redis"

	SnapshotBackendMemory   = "memory"
	SnapshotBackendFile     = "file"
	SnapshotBackendRedis    = "redis"
	SnapshotBackendMySQL    = "mysql"
	SnapshotBackendDynamoDB = "dynamodb"

	CatalogSourceYAML  = "yaml"
	CatalogSourceMySQL = "mysql"
)

type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	StockBackend    string
	SnapshotBackend string
	CatalogSource   string
	CatalogPath     string
	MySQLDSN        string
	RedisAddr       string
	DynamoTable     string
	AWSRegion       string
	CartKey         string
	SnapshotPath    string
	WorkerCount     int
	QueueSize       int
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:        getEnv("GRPC_ADDR", ":50051"),
		StockBackend:    getEnv("STOCK_BACKEND", StockBackendMemory),
		SnapshotBackend: getEnv("SNAPSHOT_BACKEND", SnapshotBackendFile),
		CatalogSource:   getEnv("CATALOG_SOURCE", CatalogSourceYAML),
		CatalogPath:     getEnv("CATALOG_PATH", "configs/catalog.yaml"),
		MySQLDSN:        getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		DynamoTable:     getEnv("DYNAMODB_TABLE_NAME", "storefront-carts"),
		AWSRegion:       getEnv("AWS_REGION", "us-west-2"),
		CartKey:         getEnv("CART_KEY", "cart"),
		SnapshotPath:    getEnv("SNAPSHOT_PATH", "cart.json"),
	}

	var err error
	if cfg.WorkerCount, err = getInt("WORKER_COUNT", 10); err != nil {
		return Config{}, err
	}
	if cfg.QueueSize, err = getInt("QUEUE_SIZE", 10000); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StockBackend {
	case StockBackendMemory, StockBackendRedis:
	default:
		return fmt.Errorf("unknown STOCK_BACKEND %q", c.StockBackend)
	}

	switch c.SnapshotBackend {
	case SnapshotBackendMemory, SnapshotBackendFile, SnapshotBackendRedis, SnapshotBackendMySQL, SnapshotBackendDynamoDB:
	default:
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q", c.SnapshotBackend)
	}

	switch c.CatalogSource {
	case CatalogSourceYAML, CatalogSourceMySQL:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be positive, got %d", c.QueueSize)
	}
	return nil
}

// UsesRedis reports whether any backend needs a Redis connection.
func (c Config) UsesRedis() bool {
	return c.StockBackend == StockBackendRedis || c.SnapshotBackend == SnapshotBackendRedis
}

// UsesMySQL reports whether any component needs a MySQL connection.
func (c Config) UsesMySQL() bool {
	return c.CatalogSource == CatalogSourceMySQL || c.SnapshotBackend == SnapshotBackendMySQL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
