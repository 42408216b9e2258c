package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Runner executes integration tests against a running deaddrop API.
// It speaks only the public HTTP surface; the worker and Redis behind
// the API must also be running for the drop lifecycle to advance.
type Runner struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
	Logger  func(format string, args ...interface{})
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
		Timeout: 30 * time.Second,
	}
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

// CheckHealth verifies the API is up and can reach its storage.
func (r *Runner) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// FetchMarket retrieves the vendor and catalog.
func (r *Runner) FetchMarket(ctx context.Context) (*MarketView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/v1/market", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("market returned %d: %s", resp.StatusCode, string(body))
	}

	var view MarketView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode market: %w", err)
	}
	return &view, nil
}

// PlaceOrder submits a single-item order. A taxonomy rejection (rate
// limit, unknown item, payment failure) is returned as a Rejection,
// not an error; errors are reserved for transport and 5xx failures.
func (r *Runner) PlaceOrder(ctx context.Context, actor, item string) (*Receipt, *Rejection, error) {
	payload, err := json.Marshal(map[string]string{"actor": actor, "item": item})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("order request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusCreated:
		var receipt Receipt
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			return nil, nil, fmt.Errorf("failed to decode receipt: %w", err)
		}
		return &receipt, nil, nil
	case http.StatusBadRequest, http.StatusPaymentRequired, http.StatusTooManyRequests:
		var rejection Rejection
		if err := json.NewDecoder(resp.Body).Decode(&rejection); err != nil {
			return nil, nil, fmt.Errorf("failed to decode rejection: %w", err)
		}
		return nil, &rejection, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("orders returned %d: %s", resp.StatusCode, string(body))
	}
}

// Unlock submits a lock code. On success it returns the delivered
// manifest; on a taxonomy failure it returns the reason string.
func (r *Runner) Unlock(ctx context.Context, actor string, code int) ([]string, string, error) {
	payload, err := json.Marshal(map[string]interface{}{"actor": actor, "code": code})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/drops/unlock", bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("unlock request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var result struct {
			Items []string `json:"items"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, "", fmt.Errorf("failed to decode unlock response: %w", err)
		}
		return result.Items, "", nil
	case http.StatusForbidden, http.StatusNotFound:
		var errResp struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, "", fmt.Errorf("failed to decode unlock error: %w", err)
		}
		return nil, errResp.Reason, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("unlock returned %d: %s", resp.StatusCode, string(body))
	}
}

// ReportPosition updates the actor's last known world position.
func (r *Runner) ReportPosition(ctx context.Context, actor string, pos Vec3) error {
	payload, err := json.Marshal(pos)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/actors/%s/position", r.BaseURL, actor)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("position request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("position returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
