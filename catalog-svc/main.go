package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hotelmenu/config"

	httpapi "hotelmenu/catalog-svc/internal/api/http"
	"hotelmenu/catalog-svc/internal/service"
	"hotelmenu/catalog-svc/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file, using environment variables")
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db := config.MustInitPostgres()
	defer db.Close()

	rdb := config.MustInitRedis()
	defer rdb.Close()

	backend := storage.NewPostgresBackend(db)
	if err := backend.EnsureSchema(); err != nil {
		logrus.Fatal("Failed to ensure schema:", err)
	}

	cache := storage.NewRedisCache(rdb)
	queue := storage.NewRedisWriteQueue(rdb, cfg.QueueKey)
	publisher := storage.NewKafkaPublisher(config.NewKafkaWriter(cfg.KafkaTopic))

	catalog := service.NewCatalogService(backend, cache, service.DefaultQRGenerator{BaseURL: cfg.PublicBase})
	catalog.BranchTTL = cfg.BranchTTL
	catalog.MenuTTL = cfg.MenuTTL
	catalog.SalesTTL = cfg.SalesTTL
	catalog.FetchTimeout = cfg.FetchTimeout
	catalog.ConfigTimeout = cfg.ConfigTimeout

	menus := service.NewMenuService(backend, cache, queue)
	menus.WriteTimeout = cfg.FetchTimeout
	menus.ConfigTimeout = cfg.ConfigTimeout

	orders := service.NewOrderService(backend, catalog, cache, queue, publisher)
	orders.WriteTimeout = cfg.FetchTimeout

	replayer := service.NewReplayer(backend, cache, queue)
	replayer.WriteTimeout = cfg.FetchTimeout

	go replayLoop(replayer, cfg.ReplayInterval)

	handler := httpapi.NewHandler(catalog, menus, orders, replayer)
	httpapi.StartServer(cfg.HTTPAddr, httpapi.NewRouter(handler))
}

// replayLoop drains the offline write queue in the background, so queued
// writes recover without waiting for a manual /api/replay call.
func replayLoop(replayer *service.Replayer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if _, _, err := replayer.ReplayAll(context.Background()); err != nil {
			logrus.WithError(err).Warn("offline queue replay pass failed")
		}
	}
}
