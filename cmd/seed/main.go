package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/internal/services"
)

// Dev helper: gives a test actor enough funds and items to exercise the
// full order flow locally without a game server attached.
func main() {
	actor := flag.String("actor", "test-player", "actor handle to seed")
	cash := flag.Int("cash", 10000, "cash balance")
	bank := flag.Int("bank", 10000, "bank balance")
	blackMoney := flag.Int("black-money", 5000, "black money item count")
	redisURL := flag.String("redis", "localhost:6379", "Redis address")
	flag.Parse()

	client := redis.NewClient(&redis.Options{Addr: *redisURL})
	defer client.Close()

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis successfully!")

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	economy := services.NewRedisEconomy(client, logger)
	inventory := services.NewRedisInventory(client, logger)

	if err := economy.Deposit(ctx, *actor, services.AccountCash, *cash); err != nil {
		log.Fatal("Failed to seed cash:", err)
	}
	if err := economy.Deposit(ctx, *actor, services.AccountBank, *bank); err != nil {
		log.Fatal("Failed to seed bank:", err)
	}
	if err := inventory.GiveItem(ctx, *actor, "phone", 1); err != nil {
		log.Fatal("Failed to seed phone:", err)
	}
	if err := inventory.GiveItem(ctx, *actor, "black_money", *blackMoney); err != nil {
		log.Fatal("Failed to seed black money:", err)
	}

	fmt.Printf("✅ Seeded actor %s: cash=%d bank=%d black_money=%d phone=1\n", *actor, *cash, *bank, *blackMoney)
	fmt.Println("\n💡 Now start the API and worker, then place an order:")
	fmt.Println("   Run: go run cmd/api/main.go")
	fmt.Println("   Run: go run cmd/worker/main.go")
	fmt.Printf("   curl -X POST localhost:8080/v1/orders -d '{\"actor\":\"%s\",\"item\":\"pistol\"}'\n", *actor)
}
