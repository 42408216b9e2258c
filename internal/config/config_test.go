package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("unexpected redis url: %s", cfg.RedisURL)
	}
	if cfg.MarketFile != "blackmarket.json" {
		t.Errorf("unexpected market file: %s", cfg.MarketFile)
	}
	if cfg.RevealDelay != 2*time.Minute {
		t.Errorf("unexpected reveal delay: %s", cfg.RevealDelay)
	}
	if cfg.DropExpiry != 10*time.Minute {
		t.Errorf("unexpected drop expiry: %s", cfg.DropExpiry)
	}
	if cfg.OrderCooldown != 5*time.Minute {
		t.Errorf("unexpected cooldown: %s", cfg.OrderCooldown)
	}
	if cfg.DetectionRadius != 50 {
		t.Errorf("unexpected detection radius: %f", cfg.DetectionRadius)
	}
	if cfg.PaymentMethod != market.PaymentCash {
		t.Errorf("unexpected payment method: %s", cfg.PaymentMethod)
	}
	if cfg.RequirePhone {
		t.Error("phone requirement should default off")
	}
	if cfg.MaxLineQuantity != 100 {
		t.Errorf("unexpected quantity cap: %d", cfg.MaxLineQuantity)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ORDER_COOLDOWN", "30s")
	t.Setenv("PAYMENT_METHOD", "bank")
	t.Setenv("REQUIRE_PHONE", "true")
	t.Setenv("DETECTION_RADIUS", "75.5")
	t.Setenv("MAX_LINE_QUANTITY", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("port override ignored: %s", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level override ignored: %v", cfg.LogLevel)
	}
	if cfg.OrderCooldown != 30*time.Second {
		t.Errorf("cooldown override ignored: %s", cfg.OrderCooldown)
	}
	if cfg.PaymentMethod != market.PaymentBank {
		t.Errorf("payment method override ignored: %s", cfg.PaymentMethod)
	}
	if !cfg.RequirePhone {
		t.Error("phone requirement override ignored")
	}
	if cfg.DetectionRadius != 75.5 {
		t.Errorf("radius override ignored: %f", cfg.DetectionRadius)
	}
	if cfg.MaxLineQuantity != 25 {
		t.Errorf("quantity cap override ignored: %d", cfg.MaxLineQuantity)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "ORDER_COOLDOWN", "soon"},
		{"negative duration", "REVEAL_DELAY", "-1m"},
		{"bad radius", "DETECTION_RADIUS", "wide"},
		{"zero radius", "DETECTION_RADIUS", "0"},
		{"bad payment method", "PAYMENT_METHOD", "crypto"},
		{"bad phone flag", "REQUIRE_PHONE", "maybe"},
		{"bad quantity cap", "MAX_LINE_QUANTITY", "lots"},
		{"zero quantity cap", "MAX_LINE_QUANTITY", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
