package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	var db *sql.DB
	var mysqlAdapter *storage.MySQLAdapter
	if cfg.UsesMySQL() {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			logger.Fatal("failed to connect mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		mysqlAdapter = storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.InitSchema(ctx); err != nil {
			logger.Fatal("failed to init schema", zap.Error(err))
		}
		logger.Info("connected to mysql")
	}

	// Initialize Redis
	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Stock ledger
	var stockRepo port.StockRepository = storage.NewMemoryStockAdapter()
	if cfg.StockBackend == config.StockBackendRedis {
		stockRepo = storage.NewRedisAdapter(rdb)
	}

	var catalog port.CatalogSource = storage.NewYAMLCatalog(cfg.CatalogPath)
	if cfg.CatalogSource == config.CatalogSourceMySQL {
		catalog = mysqlAdapter
	}
	products, err := catalog.ListProducts(ctx)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	view := handler.NewViewState()
	ledger := service.NewStockLedger(stockRepo, view, logger)

	// Shared Redis counters survive restarts; only missing products are seeded.
	seedOnlyMissing := cfg.StockBackend == config.StockBackendRedis
	if err := ledger.Register(ctx, products, seedOnlyMissing); err != nil {
		logger.Fatal("failed to register products", zap.Error(err))
	}
	logger.Info("registered products", zap.Int("count", len(products)), zap.String("source", cfg.CatalogSource))

	// Cart
	store, err := newSnapshotStore(ctx, cfg, rdb, db)
	if err != nil {
		logger.Fatal("failed to init snapshot store", zap.Error(err))
	}

	cartService := service.NewCartService(cfg.CartKey, ledger, store, view, cfg.QueueSize, logger)
	if err := cartService.Restore(ctx); err != nil {
		logger.Warn("failed to restore cart, starting empty", zap.Error(err))
	}

	// Start worker pool
	var orderRepo port.OrderRepository = storage.NewMemoryOrderRepository()
	if mysqlAdapter != nil {
		orderRepo = mysqlAdapter
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.RunOrderWorker(id, cartService.GetOrderQueue(), orderRepo, logger)
		}(i)
	}
	logger.Info("started workers", zap.Int("count", cfg.WorkerCount))

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCartServer(grpcServer, handler.NewGRPCHandler(cartService, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	router := mux.NewRouter()
	handler.NewHTTPHandler(cartService, view, logger).Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Close order queue and wait for workers
	cartService.Close()
	wg.Wait()
	logger.Info("workers stopped")

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	logger.Info("connections closed")
}

func newSnapshotStore(ctx context.Context, cfg config.Config, rdb *redis.Client, db *sql.DB) (port.SnapshotStore, error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotBackendFile:
		return storage.NewFileSnapshotStore(cfg.SnapshotPath), nil
	case config.SnapshotBackendRedis:
		return storage.NewRedisSnapshotStore(rdb, cfg.CartKey), nil
	case config.SnapshotBackendMySQL:
		return storage.NewMySQLSnapshotStore(db, cfg.CartKey), nil
	case config.SnapshotBackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		return storage.NewDynamoSnapshotStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable, cfg.CartKey), nil
	default:
		return storage.NewMemorySnapshotStore(), nil
	}
}
