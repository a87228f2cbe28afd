package main

import (
	"context"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/Panharith2006/electric-store-system/internal/api"
	"github.com/Panharith2006/electric-store-system/internal/app"
	"github.com/Panharith2006/electric-store-system/internal/cache"
	"github.com/Panharith2006/electric-store-system/internal/category"
	"github.com/Panharith2006/electric-store-system/internal/config"
	"github.com/Panharith2006/electric-store-system/internal/logger"
	"github.com/Panharith2006/electric-store-system/internal/product"
	"github.com/Panharith2006/electric-store-system/internal/signal"
	"github.com/Panharith2006/electric-store-system/internal/stock"
)

const watchInterval = 2 * time.Second

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("failed to open cache at %s: %v", cfg.CachePath, err)
	}
	defer store.Close()

	client := api.NewClient(cfg.APIBaseURL)
	bus := signal.NewBus(store)

	products := product.NewStore(client, bus, store)
	categories := category.NewStore(client, bus, store)
	stockStore := stock.NewStore(client, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := app.NewManager(products, categories, stockStore, bus, cfg.APIToken, cfg.PollInterval)
	mgr.Start(ctx)
	bus.Watch(ctx, watchInterval)

	logger.L().Info("storesync running")

	stop := make(chan os.Signal, 1)
	ossignal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.L().Info("shutting down")
}
