package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/internal/services"
	"github.com/redvale-rp/deaddrop/internal/services/events"
	"github.com/redvale-rp/deaddrop/internal/vendor"
	"github.com/redvale-rp/deaddrop/pkg/market"
	"github.com/redvale-rp/deaddrop/pkg/queue"
	"github.com/redvale-rp/deaddrop/pkg/storage"
)

type noopScheduler struct{}

func (noopScheduler) Schedule(ctx context.Context, job *queue.Job, dueAt time.Time) error {
	return nil
}

type handlerFixture struct {
	store     *storage.MockStorage
	economy   *services.MockEconomy
	inventory *services.MockInventory
	processor *vendor.OrderProcessor
	market    *market.Market
}

func handlerMarket() *market.Market {
	return &market.Market{
		Vendor: market.Vendor{Name: "Vern"},
		Catalog: market.Catalog{Sections: []market.Section{
			{Key: "weapons", Items: map[string]int{"pistol": 500}},
			{Key: "ammo", Items: map[string]int{"pistol_ammo": 40}},
		}},
		DropZones:  []market.DropZone{{Name: "docks", Position: market.Vec3{X: 1, Y: 2, Z: 3}}},
		PhoneItems: []string{"phone"},
	}
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mkt := handlerMarket()
	f := &handlerFixture{
		store:     storage.NewMockStorage(),
		economy:   services.NewMockEconomy(),
		inventory: services.NewMockInventory(),
		market:    mkt,
	}
	f.processor = vendor.NewOrderProcessor(
		f.store,
		f.inventory,
		f.economy,
		services.NewMockIdentity(),
		services.NewMockAuditSink(),
		events.NewBroadcaster(rdb, logger),
		noopScheduler{},
		vendor.Options{
			Market:             mkt,
			PaymentMethod:      market.PaymentCash,
			PhoneItems:         mkt.PhoneItems,
			BlackMoneyItem:     "black_money",
			Cooldown:           5 * time.Minute,
			RevealDelay:        2 * time.Minute,
			DropExpiry:         10 * time.Minute,
			ExpiryPollInterval: 10 * time.Second,
			DetectionRadius:    50,
		},
		logger,
		rand.New(rand.NewSource(42)),
	)
	return f
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewHealthHandler(f.store, testHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Service != "deaddrop" {
		t.Errorf("unexpected response: %+v", resp)
	}

	// Degraded storage turns the endpoint 503.
	f.store.SetPingError(errors.New("connection refused"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when storage is down, got %d", w.Code)
	}
}

func TestOrderHandlerSingleItem(t *testing.T) {
	f := newHandlerFixture(t)
	f.economy.Deposit(context.Background(), "crook", services.AccountCash, 1000)
	handler := NewOrderHandler(f.processor, testHandlerLogger())

	w := postJSON(t, handler, "/v1/orders", OrderRequest{Actor: "crook", Item: "pistol"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var receipt market.Receipt
	if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
		t.Fatal(err)
	}
	if receipt.Total != 500 {
		t.Errorf("expected total 500, got %d", receipt.Total)
	}
}

func TestOrderHandlerCart(t *testing.T) {
	f := newHandlerFixture(t)
	f.economy.Deposit(context.Background(), "crook", services.AccountCash, 1000)
	handler := NewOrderHandler(f.processor, testHandlerLogger())

	w := postJSON(t, handler, "/v1/orders", OrderRequest{
		Actor: "crook",
		Items: []market.OrderLine{{Item: "pistol"}, {Item: "pistol_ammo", Quantity: 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var receipt market.Receipt
	if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
		t.Fatal(err)
	}
	if receipt.Total != 580 {
		t.Errorf("expected total 580, got %d", receipt.Total)
	}
}

func TestOrderHandlerRejections(t *testing.T) {
	t.Run("unknown single item is 400", func(t *testing.T) {
		f := newHandlerFixture(t)
		handler := NewOrderHandler(f.processor, testHandlerLogger())

		w := postJSON(t, handler, "/v1/orders", OrderRequest{Actor: "crook", Item: "jetpack"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp OrderRejectedResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Reason != "invalid_item" {
			t.Errorf("expected invalid_item, got %s", resp.Reason)
		}
	})

	t.Run("insufficient funds is 402", func(t *testing.T) {
		f := newHandlerFixture(t)
		handler := NewOrderHandler(f.processor, testHandlerLogger())

		w := postJSON(t, handler, "/v1/orders", OrderRequest{Actor: "crook", Item: "pistol"})
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", w.Code)
		}
		var resp OrderRejectedResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Failure != "insufficient_funds" {
			t.Errorf("expected insufficient_funds, got %s", resp.Failure)
		}
	})

	t.Run("second order inside cooldown is 429", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.economy.Deposit(context.Background(), "crook", services.AccountCash, 5000)
		handler := NewOrderHandler(f.processor, testHandlerLogger())

		if w := postJSON(t, handler, "/v1/orders", OrderRequest{Actor: "crook", Item: "pistol"}); w.Code != http.StatusCreated {
			t.Fatalf("first order failed: %d", w.Code)
		}
		w := postJSON(t, handler, "/v1/orders", OrderRequest{Actor: "crook", Item: "pistol"})
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", w.Code)
		}
		var resp OrderRejectedResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.RetrySeconds <= 0 {
			t.Errorf("expected positive retry_seconds, got %d", resp.RetrySeconds)
		}
	})

	t.Run("missing actor is 400", func(t *testing.T) {
		f := newHandlerFixture(t)
		handler := NewOrderHandler(f.processor, testHandlerLogger())

		w := postJSON(t, handler, "/v1/orders", OrderRequest{Item: "pistol"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("GET is 405", func(t *testing.T) {
		f := newHandlerFixture(t)
		handler := NewOrderHandler(f.processor, testHandlerLogger())

		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})
}

func TestUnlockHandler(t *testing.T) {
	f := newHandlerFixture(t)
	f.economy.Deposit(context.Background(), "crook", services.AccountCash, 1000)
	orderHandler := NewOrderHandler(f.processor, testHandlerLogger())
	unlockHandler := NewUnlockHandler(f.processor, testHandlerLogger())

	if w := postJSON(t, orderHandler, "/v1/orders", OrderRequest{Actor: "crook", Item: "pistol"}); w.Code != http.StatusCreated {
		t.Fatalf("order failed: %d", w.Code)
	}
	d, _ := f.store.LoadDrop(context.Background(), "crook")

	t.Run("wrong code is 403", func(t *testing.T) {
		wrong := d.LockCode + 1
		if wrong > 9999 {
			wrong = 1000
		}
		w := postJSON(t, unlockHandler, "/v1/drops/unlock", UnlockRequest{Actor: "crook", Code: wrong})
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("right code delivers", func(t *testing.T) {
		w := postJSON(t, unlockHandler, "/v1/drops/unlock", UnlockRequest{Actor: "crook", Code: d.LockCode})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp UnlockResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp.Items) != 1 || resp.Items[0] != "pistol" {
			t.Errorf("unexpected delivery: %v", resp.Items)
		}
	})

	t.Run("consumed drop is 404", func(t *testing.T) {
		w := postJSON(t, unlockHandler, "/v1/drops/unlock", UnlockRequest{Actor: "crook", Code: d.LockCode})
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Reason != "no_active_drop" {
			t.Errorf("expected no_active_drop, got %s", resp.Reason)
		}
	})
}

func TestPositionHandler(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewPositionHandler(f.processor, testHandlerLogger())

	w := postJSON(t, handler, "/v1/actors/crook/position", market.Vec3{X: 10, Y: 20, Z: 5})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	pos, err := f.store.LoadPosition(context.Background(), "crook")
	if err != nil || pos == nil {
		t.Fatalf("position not stored: %v %v", pos, err)
	}
	if pos.X != 10 || pos.Y != 20 || pos.Z != 5 {
		t.Errorf("position mangled: %+v", pos)
	}

	t.Run("bad path is 400", func(t *testing.T) {
		w := postJSON(t, handler, "/v1/actors//position", market.Vec3{})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("GET is 405", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/actors/crook/position", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})
}

func TestMarketHandler(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewMarketHandler(f.market, testHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/market", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp MarketResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Vendor.Name != "Vern" {
		t.Errorf("vendor missing: %+v", resp.Vendor)
	}
	if len(resp.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(resp.Sections))
	}
	if resp.Sections[0].Label != "Weapons" {
		t.Errorf("label not derived: %s", resp.Sections[0].Label)
	}

	// Drop zones and phone items are operational data, never served.
	if bytes.Contains(w.Body.Bytes(), []byte("drop_zones")) || bytes.Contains(w.Body.Bytes(), []byte("docks")) {
		t.Error("market response leaks drop zones")
	}
	if bytes.Contains(w.Body.Bytes(), []byte("phone_items")) {
		t.Error("market response leaks phone items")
	}
}
