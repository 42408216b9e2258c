package services

import (
	"context"
	"testing"
	"time"
)

func TestRedisIdentityStable(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	ident := NewRedisIdentity(rdb, testLogger())

	first, err := ident.Resolve(ctx, "crook")
	if err != nil {
		t.Fatal(err)
	}
	if first == "" {
		t.Fatal("empty identity minted")
	}

	second, err := ident.Resolve(ctx, "crook")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("identity not stable: %s != %s", second, first)
	}

	other, _ := ident.Resolve(ctx, "bystander")
	if other == first {
		t.Error("different handles resolved to the same identity")
	}
}

func TestRedisAuditSinkRecords(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	sink := NewRedisAuditSink(rdb, testLogger())

	sink.Record(AuditEvent{
		Type:    "order.completed",
		Actor:   "crook",
		ActorID: "id-crook",
		Details: map[string]interface{}{"total": 500},
	})

	// Recording is async; poll the stream briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		length, err := rdb.XLen(ctx, "audit:market").Result()
		if err != nil {
			t.Fatal(err)
		}
		if length == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit event never landed, stream length %d", length)
		}
		time.Sleep(10 * time.Millisecond)
	}

	entries, err := rdb.XRange(ctx, "audit:market", "-", "+").Result()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Values["type"] != "order.completed" {
		t.Errorf("unexpected event type: %v", entries[0].Values["type"])
	}
	if entries[0].Values["actor"] != "crook" {
		t.Errorf("unexpected actor: %v", entries[0].Values["actor"])
	}
}
