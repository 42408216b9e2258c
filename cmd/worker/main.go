package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redvale-rp/deaddrop/internal/config"
	"github.com/redvale-rp/deaddrop/internal/logger"
	"github.com/redvale-rp/deaddrop/internal/services"
	"github.com/redvale-rp/deaddrop/internal/services/events"
	"github.com/redvale-rp/deaddrop/internal/services/queue"
	"github.com/redvale-rp/deaddrop/internal/storage"
	"github.com/redvale-rp/deaddrop/internal/vendor"
	"github.com/redvale-rp/deaddrop/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Deaddrop Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

	// Initialize storage service
	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	mkt, err := store.GetMarket(storageCtx, cfg.MarketFile)
	if err != nil {
		log.Error("Failed to load market file", "error", err, "file", cfg.MarketFile)
		os.Exit(1)
	}
	if err := mkt.Validate(); err != nil {
		log.Error("Market configuration is invalid", "error", err, "file", cfg.MarketFile)
		os.Exit(1)
	}

	rdb := store.Client()
	inventory := services.NewRedisInventory(rdb, log)
	economy := services.NewRedisEconomy(rdb, log)
	identity := services.NewRedisIdentity(rdb, log)
	audit := services.NewRedisAuditSink(rdb, log)
	broadcaster := events.NewBroadcaster(rdb, log)

	// Initialize queue service
	queueClient := queue.NewClientFromRedis(rdb, log)
	dropQueue := queue.NewDropQueue(queueClient)
	log.Info("Queue service initialized successfully")

	processor := vendor.NewOrderProcessor(store, inventory, economy, identity, audit, broadcaster, dropQueue, vendor.Options{
		Market:             mkt,
		PaymentMethod:      cfg.PaymentMethod,
		RequirePhone:       cfg.RequirePhone,
		PhoneItems:         mkt.PhoneItems,
		BlackMoneyItem:     cfg.BlackMoneyItem,
		Cooldown:           cfg.OrderCooldown,
		RevealDelay:        cfg.RevealDelay,
		DropExpiry:         cfg.DropExpiry,
		ExpiryPollInterval: cfg.ExpiryPollInterval,
		DetectionRadius:    cfg.DetectionRadius,
		MaxLineQuantity:    cfg.MaxLineQuantity,
	}, log, nil)
	log.Info("Order processor initialized successfully")

	// Create and start worker with processor
	w := worker.New(dropQueue, processor, log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start worker in goroutine
	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for due jobs...")

	// Wait for shutdown signal
	<-quit
	log.Info("Worker shutdown signal received")

	// Stop worker
	w.Stop()

	// Give worker time to finish current batch
	time.Sleep(2 * time.Second)

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Worker exited")
}
