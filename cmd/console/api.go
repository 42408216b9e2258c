package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// MarketSection mirrors the API's catalog section shape.
type MarketSection struct {
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Items map[string]int `json:"items"`
}

// MarketView is the vendor and catalog as served by GET /v1/market.
type MarketView struct {
	Vendor   market.Vendor   `json:"vendor"`
	Sections []MarketSection `json:"sections"`
}

func fetchMarket(client *http.Client, baseURL string) (*MarketView, error) {
	resp, err := client.Get(baseURL + "/v1/market")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to fetch market: %s", errorResp.Error)
	}

	var mkt MarketView
	if err := json.Unmarshal(body, &mkt); err != nil {
		return nil, fmt.Errorf("failed to parse market response: %w", err)
	}
	return &mkt, nil
}

// OrderRejected is the API's rejection payload for a refused order.
type OrderRejected struct {
	Error        string `json:"error"`
	Reason       string `json:"reason"`
	Failure      string `json:"failure,omitempty"`
	RetrySeconds int    `json:"retry_seconds,omitempty"`
}

// placeOrder submits a single-item or cart order. A rejection is
// returned as data, not as an error; err covers transport and server
// failures only.
func placeOrder(client *http.Client, baseURL string, actor string, item string, lines []market.OrderLine) (*market.Receipt, *OrderRejected, error) {
	reqBody := map[string]interface{}{
		"actor": actor,
	}
	if item != "" {
		reqBody["item"] = item
	} else {
		reqBody["items"] = lines
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/orders",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var receipt market.Receipt
		if err := json.Unmarshal(body, &receipt); err != nil {
			return nil, nil, fmt.Errorf("failed to parse receipt: %w", err)
		}
		return &receipt, nil, nil
	case http.StatusBadRequest, http.StatusPaymentRequired, http.StatusTooManyRequests:
		var rejected OrderRejected
		if err := json.Unmarshal(body, &rejected); err != nil {
			return nil, nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &rejected, nil
	default:
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, nil, fmt.Errorf("order failed: %s", errorResp.Error)
	}
}

// attemptUnlock submits a lock code against the actor's drop. A wrong
// code or missing drop comes back as a reason string, not an error.
func attemptUnlock(client *http.Client, baseURL string, actor string, code int) ([]string, string, error) {
	reqBody := map[string]interface{}{
		"actor": actor,
		"code":  code,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/drops/unlock",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		var unlockResp struct {
			Items []string `json:"items"`
		}
		if err := json.Unmarshal(body, &unlockResp); err != nil {
			return nil, "", fmt.Errorf("failed to parse unlock response: %w", err)
		}
		return unlockResp.Items, "", nil
	}

	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return nil, "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	if errorResp.Reason != "" {
		return nil, errorResp.Reason, nil
	}
	return nil, "", fmt.Errorf("unlock failed: %s", errorResp.Error)
}

// reportPosition posts the actor's position, standing in for the game
// server's periodic updates.
func reportPosition(client *http.Client, baseURL string, actor string, x, y, z float64) error {
	reqBody := map[string]float64{"x": x, "y": y, "z": z}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/actors/%s/position", baseURL, actor),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// SSEEvent represents an event from the SSE stream
type SSEEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// listenToSSE connects to the actor's event stream and forwards events
// to a channel. Uses its own client so the stream is not cut short by
// the request timeout.
func listenToSSE(ctx context.Context, baseURL string, actor string, eventChan chan<- SSEEvent) error {
	url := fmt.Sprintf("%s/v1/events/actors/%s", baseURL, actor)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to SSE: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SSE connection failed with status %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	var currentEvent SSEEvent

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()

		if line == "" {
			// Empty line signals end of event
			if currentEvent.Type != "" {
				eventChan <- currentEvent
				currentEvent = SSEEvent{}
			}
			continue
		}

		// Parse SSE format
		if strings.HasPrefix(line, "event: ") {
			currentEvent.Type = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataJSON := strings.TrimPrefix(line, "data: ")
			var data map[string]interface{}
			if err := json.Unmarshal([]byte(dataJSON), &data); err == nil {
				currentEvent.Data = data
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading SSE stream: %w", err)
	}

	return nil
}
