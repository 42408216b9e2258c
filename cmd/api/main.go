package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redvale-rp/deaddrop/internal/config"
	"github.com/redvale-rp/deaddrop/internal/handlers"
	"github.com/redvale-rp/deaddrop/internal/logger"
	"github.com/redvale-rp/deaddrop/internal/middleware"
	"github.com/redvale-rp/deaddrop/internal/services"
	"github.com/redvale-rp/deaddrop/internal/services/events"
	"github.com/redvale-rp/deaddrop/internal/services/queue"
	"github.com/redvale-rp/deaddrop/internal/storage"
	"github.com/redvale-rp/deaddrop/internal/vendor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Deaddrop API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"payment_method", cfg.PaymentMethod,
		"market_file", cfg.MarketFile)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Load and validate the market definition. An unusable market (no
	// drop zones, empty catalog) is fatal at startup, never at order time.
	mkt, err := store.GetMarket(storageCtx, cfg.MarketFile)
	if err != nil {
		log.Error("Failed to load market file", "error", err, "file", cfg.MarketFile)
		os.Exit(1)
	}
	if err := mkt.Validate(); err != nil {
		log.Error("Market configuration is invalid", "error", err, "file", cfg.MarketFile)
		os.Exit(1)
	}
	log.Info("Market loaded",
		"vendor", mkt.Vendor.Name,
		"sections", len(mkt.Catalog.Sections),
		"drop_zones", len(mkt.DropZones))

	rdb := store.Client()
	inventory := services.NewRedisInventory(rdb, log)
	economy := services.NewRedisEconomy(rdb, log)
	identity := services.NewRedisIdentity(rdb, log)
	audit := services.NewRedisAuditSink(rdb, log)
	broadcaster := events.NewBroadcaster(rdb, log)

	queueClient := queue.NewClientFromRedis(rdb, log)
	dropQueue := queue.NewDropQueue(queueClient)

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

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	orderHandler := handlers.NewOrderHandler(processor, log)
	mux.Handle("/v1/orders", orderHandler)

	unlockHandler := handlers.NewUnlockHandler(processor, log)
	mux.Handle("/v1/drops/unlock", unlockHandler)

	positionHandler := handlers.NewPositionHandler(processor, log)
	mux.Handle("/v1/actors/", positionHandler)

	marketHandler := handlers.NewMarketHandler(mkt, log)
	mux.Handle("/v1/market", marketHandler)

	eventsHandler := handlers.NewEventsHandler(rdb, log)
	mux.Handle("/v1/events/actors/", eventsHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout removed to enable streaming - the SSE endpoint handles its own lifetime
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
