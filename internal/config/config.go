package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL   string
	DataDir    string
	MarketFile string

	// Drop lifecycle timing
	RevealDelay        time.Duration
	DropExpiry         time.Duration
	ExpiryPollInterval time.Duration
	OrderCooldown      time.Duration
	DetectionRadius    float64

	// Payment
	PaymentMethod  market.PaymentMethod
	RequirePhone   bool
	BlackMoneyItem string

	// Orders
	MaxLineQuantity int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		MarketFile:     getEnv("MARKET_FILE", "blackmarket.json"),
		BlackMoneyItem: getEnv("BLACK_MONEY_ITEM", "black_money"),
	}

	var err error
	if cfg.RevealDelay, err = getDuration("REVEAL_DELAY", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DropExpiry, err = getDuration("DROP_EXPIRY", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ExpiryPollInterval, err = getDuration("EXPIRY_POLL_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.OrderCooldown, err = getDuration("ORDER_COOLDOWN", 5*time.Minute); err != nil {
		return nil, err
	}

	radiusStr := getEnv("DETECTION_RADIUS", "50")
	cfg.DetectionRadius, err = strconv.ParseFloat(radiusStr, 64)
	if err != nil || cfg.DetectionRadius <= 0 {
		return nil, fmt.Errorf("invalid DETECTION_RADIUS %q", radiusStr)
	}

	cfg.PaymentMethod, err = market.ParsePaymentMethod(getEnv("PAYMENT_METHOD", "cash"))
	if err != nil {
		return nil, err
	}

	cfg.RequirePhone, err = strconv.ParseBool(getEnv("REQUIRE_PHONE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUIRE_PHONE: %w", err)
	}

	maxQtyStr := getEnv("MAX_LINE_QUANTITY", "100")
	cfg.MaxLineQuantity, err = strconv.Atoi(maxQtyStr)
	if err != nil || cfg.MaxLineQuantity <= 0 {
		return nil, fmt.Errorf("invalid MAX_LINE_QUANTITY %q", maxQtyStr)
	}

	return cfg, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, value)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
