package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const usage = `commands:
  list [low|brand <text>|discount <n>]
  add <id>      remove <id>
  cart          clear
  checkout      quit`

func main() {
	logger, err := zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	products, err := storage.NewYAMLCatalog(cfg.CatalogPath).ListProducts(ctx)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	view := handler.NewTerminalView(os.Stdout)
	ledger := service.NewStockLedger(storage.NewMemoryStockAdapter(), view, logger)
	if err := ledger.Register(ctx, products, false); err != nil {
		logger.Fatal("failed to register products", zap.Error(err))
	}

	cart := service.NewCartService(cfg.CartKey, ledger, storage.NewFileSnapshotStore(cfg.SnapshotPath), view, 1, logger)
	defer cart.Close()

	// nothing records orders here, drain the queue
	go func() {
		for range cart.GetOrderQueue() {
		}
	}()

	if err := cart.Restore(ctx); err != nil {
		logger.Warn("failed to restore cart", zap.Error(err))
	}

	in := bufio.NewReader(os.Stdin)
	confirm := handler.NewPromptConfirmer(in, os.Stdout)

	fmt.Println(usage)
	for {
		fmt.Print("shop> ")
		line, err := in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "list":
			entries, err := ledger.Products(ctx, parseFilter(fields[1:]))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			view.PrintCatalog(entries)
		case "add":
			if len(fields) < 2 {
				fmt.Println(usage)
				continue
			}
			p, err := ledger.Product(fields[1])
			if err != nil {
				fmt.Println("unknown product:", fields[1])
				continue
			}
			if err := cart.AddItem(ctx, p.ID, p.Name, p.Price); err != nil && !errors.Is(err, domain.ErrOutOfStock) {
				fmt.Println("error:", err)
			}
		case "remove":
			if len(fields) < 2 {
				fmt.Println(usage)
				continue
			}
			if err := cart.RemoveItem(ctx, fields[1]); err != nil {
				fmt.Println("error:", err)
			}
		case "cart":
			items := cart.Items()
			view.RenderCart(items, domain.ComputeTotals(items))
		case "clear":
			if err := cart.Clear(ctx, confirm); err != nil && !errors.Is(err, domain.ErrDeclined) {
				fmt.Println("error:", err)
			}
		case "checkout":
			if _, err := cart.Checkout(ctx, confirm); err != nil && !errors.Is(err, domain.ErrDeclined) {
				fmt.Println("error:", err)
			}
		case "quit", "exit":
			return
		default:
			fmt.Println(usage)
		}
	}
}

func parseFilter(args []string) domain.ProductFilter {
	var f domain.ProductFilter
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "low":
			f.LowStockOnly = true
		case "brand":
			if i+1 < len(args) {
				i++
				f.Brand = args[i]
			}
		case "discount":
			if i+1 < len(args) {
				i++
				fmt.Sscanf(args[i], "%d", &f.MinDiscount)
			}
		}
	}
	return f
}
