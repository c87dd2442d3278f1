package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	cartapp "github.com/storefront-go/storefront/internal/cart/app"
	cartadapter "github.com/storefront-go/storefront/internal/cart/infra/adapter"
	cartpg "github.com/storefront-go/storefront/internal/cart/infra/postgres"

	catalogapp "github.com/storefront-go/storefront/internal/catalog/app"
	catalogpg "github.com/storefront-go/storefront/internal/catalog/infra/postgres"

	discountapp "github.com/storefront-go/storefront/internal/discount/app"
	discountpg "github.com/storefront-go/storefront/internal/discount/infra/postgres"

	orderapp "github.com/storefront-go/storefront/internal/order/app"
	orderpg "github.com/storefront-go/storefront/internal/order/infra/postgres"

	checkoutapp "github.com/storefront-go/storefront/internal/checkout/app"
	checkoutadapter "github.com/storefront-go/storefront/internal/checkout/infra/adapter"
	checkoutpg "github.com/storefront-go/storefront/internal/checkout/infra/postgres"

	"github.com/storefront-go/storefront/internal/httpapi"
	"github.com/storefront-go/storefront/pkg/cache"
	"github.com/storefront-go/storefront/pkg/config"
	"github.com/storefront-go/storefront/pkg/logger"
	"github.com/storefront-go/storefront/pkg/postgres"
	"github.com/storefront-go/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront-api",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db := mustDB(cfg, log)
	defer db.Close()

	// Catalog
	catalogSvc := catalogapp.NewService(
		catalogpg.NewProductRepo(db),
		catalogpg.NewCategoryRepo(db),
		cache.New[any](cfg.CacheTTL),
		log,
	)

	// Cart
	cartSvc := cartapp.NewService(
		cartpg.NewCartRepo(db),
		cartadapter.NewCatalogServiceReader(catalogSvc),
		cache.New[any](cfg.CacheTTL),
		log,
	)

	// Discounts
	discountSvc := discountapp.NewLedger(discountpg.NewDiscountRepo(db), log)

	// Orders (cancel restores stock in SQL, so it invalidates the
	// catalog cache through the service)
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db), catalogSvc, log)

	// Checkout (adapters over the other services)
	catalogReader := checkoutadapter.NewCatalogServiceReader(catalogSvc)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(cartSvc),
		catalogReader,
		catalogReader,
		checkoutadapter.NewDiscountServiceLedger(discountSvc),
		checkoutpg.NewAddressRepo(db),
		checkoutadapter.NewOrderServiceWriter(orderSvc),
		checkoutapp.Pricing{
			FlatShippingFee:       cfg.FlatShippingFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
		},
		10,
		log,
	)

	router := httpapi.NewRouter(httpapi.Services{
		Catalog:   catalogSvc,
		Cart:      cartSvc,
		Discounts: discountSvc,
		Orders:    orderSvc,
		Checkout:  checkoutSvc,
	}, log)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

func mustDB(cfg config.Config, log *slog.Logger) *sql.DB {
	db, err := postgres.Open(postgres.Config{
		Host: cfg.PostgresHost,
		Port: cfg.PostgresPort,
		User: cfg.PostgresUser,
		Pass: cfg.PostgresPass,
		DB:   cfg.PostgresDB,
	})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	return db
}
