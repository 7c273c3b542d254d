package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const (
	productID     = "stress-item"
	initialStock  = 20
	totalRequests = 50
	queueSize     = 100
)

func main() {
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Redis when REDIS_ADDR is set, otherwise the in-process ledger
	var repo port.StockRepository = storage.NewMemoryStockAdapter()
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()

		// Clear previous test data
		rdb.Del(ctx, "stock:"+productID)
		repo = storage.NewRedisAdapter(rdb)
	}

	ledger := service.NewStockLedger(repo, nil, zap.NewNop())
	product := domain.Product{ID: productID, Name: "Stress Item", Price: decimal.NewFromInt(10), Stock: initialStock}
	if err := ledger.Register(ctx, []domain.Product{product}, false); err != nil {
		logger.Fatal("failed to register product", zap.Error(err))
	}

	// Every session gets its own cart so the ledger is the only shared state.
	carts := make([]*service.CartService, totalRequests)
	for i := range carts {
		carts[i] = service.NewCartService(uuid.NewString(), ledger, storage.NewMemorySnapshotStore(), nil, queueSize, zap.NewNop())
	}
	defer func() {
		for _, c := range carts {
			c.Close()
		}
	}()

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var errorCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(cart *service.CartService) {
			defer wg.Done()

			err := cart.AddItem(ctx, product.ID, product.Name, product.Price)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrOutOfStock):
				soldOutCount.Add(1)
			default:
				errorCount.Add(1)
				logger.Error("add failed", zap.Error(err))
			}
		}(carts[i])
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Added:            %d\n", success)
	fmt.Printf("Sold out:         %d\n", soldOut)
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && soldOut == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: exactly %d adds succeeded, %d sold out\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: expected %d added/%d sold out, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, soldOut)
	}

	// Conservation: ledger stock plus units held in carts equals the allotment.
	finalStock, err := ledger.Query(ctx, productID)
	if err != nil {
		logger.Fatal("failed to query stock", zap.Error(err))
	}
	held := 0
	for _, c := range carts {
		held += c.Quantity(productID)
	}
	fmt.Printf("Final Stock:      %d\n", finalStock)
	fmt.Printf("Held in carts:    %d\n", held)

	if finalStock == 0 && finalStock+held == initialStock {
		fmt.Println("PASS: stock depleted to 0 and conserved")
	} else {
		fmt.Printf("FAIL: expected stock 0 and %d held, got %d and %d\n", initialStock, finalStock, held)
	}

	// Returning everything must restore the allotment.
	confirm := port.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	clearFailures := 0
	for _, c := range carts {
		if err := c.Clear(ctx, confirm); err != nil {
			clearFailures++
			logger.Error("clear failed", zap.Error(err))
		}
	}
	if clearFailures > 0 {
		fmt.Printf("FAIL: %d carts could not be cleared\n", clearFailures)
	}

	restored, err := ledger.Query(ctx, productID)
	if err != nil {
		logger.Fatal("failed to query stock after clearing", zap.Error(err))
	}
	if restored == initialStock {
		fmt.Println("PASS: clearing every cart restored the allotment")
	} else {
		fmt.Printf("FAIL: expected %d after clearing, got %d\n", initialStock, restored)
	}
}
