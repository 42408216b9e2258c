package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

func newTestBroadcaster(t *testing.T) (*Broadcaster, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBroadcaster(rdb, logger), rdb
}

func receiveEvent(t *testing.T, pubsub *redis.PubSub) Event {
	t.Helper()
	select {
	case msg := <-pubsub.Channel():
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			t.Fatalf("malformed event payload: %v", err)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestChannelFor(t *testing.T) {
	if got := ChannelFor("crook"); got != "market-events:crook" {
		t.Errorf("unexpected channel: %s", got)
	}
}

func TestPublishLockCodeIssued(t *testing.T) {
	ctx := context.Background()
	b, rdb := newTestBroadcaster(t)

	pubsub := rdb.Subscribe(ctx, ChannelFor("crook"))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatal(err)
	}

	if err := b.PublishLockCodeIssued(ctx, "crook", 4821, 12); err != nil {
		t.Fatal(err)
	}

	event := receiveEvent(t, pubsub)
	if event.Type != EventTypeLockCodeIssued {
		t.Errorf("unexpected type: %s", event.Type)
	}
	if event.Actor != "crook" {
		t.Errorf("unexpected actor: %s", event.Actor)
	}
	if code, ok := event.Data["code"].(float64); !ok || int(code) != 4821 {
		t.Errorf("code not carried: %v", event.Data["code"])
	}
	if mins, ok := event.Data["expiry_minutes"].(float64); !ok || int(mins) != 12 {
		t.Errorf("expiry not carried: %v", event.Data["expiry_minutes"])
	}
}

func TestPublishDropRevealed(t *testing.T) {
	ctx := context.Background()
	b, rdb := newTestBroadcaster(t)

	pubsub := rdb.Subscribe(ctx, ChannelFor("crook"))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatal(err)
	}

	zone := market.DropZone{Name: "docks", Position: market.Vec3{X: 1, Y: 2, Z: 3}}
	if err := b.PublishDropRevealed(ctx, "crook", zone, []string{"pistol"}, 4821, 50); err != nil {
		t.Fatal(err)
	}

	event := receiveEvent(t, pubsub)
	if event.Type != EventTypeDropRevealed {
		t.Errorf("unexpected type: %s", event.Type)
	}
	zoneData, ok := event.Data["zone"].(map[string]interface{})
	if !ok {
		t.Fatalf("zone not carried: %v", event.Data)
	}
	if zoneData["name"] != "docks" {
		t.Errorf("zone name lost: %v", zoneData)
	}
}

func TestEventsArePerActor(t *testing.T) {
	ctx := context.Background()
	b, rdb := newTestBroadcaster(t)

	pubsub := rdb.Subscribe(ctx, ChannelFor("bystander"))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatal(err)
	}

	if err := b.PublishDropExpired(ctx, "crook"); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-pubsub.Channel():
		t.Errorf("bystander received crook's event: %s", msg.Payload)
	case <-time.After(200 * time.Millisecond):
	}
}
