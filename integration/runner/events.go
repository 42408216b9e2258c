package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// EventTimeout is the default max wait for a lifecycle event to arrive.
// Reveal events fire only after the configured reveal delay, so test
// deployments should run with a short REVEAL_DELAY.
const EventTimeout = 30 * time.Second

// StreamEvents subscribes to the actor's SSE feed and relays parsed
// events on the returned channel. The channel closes when the stream
// ends or ctx is cancelled. The subscription uses its own client with
// no timeout; the runner's default client would cut the stream off.
func (r *Runner) StreamEvents(ctx context.Context, actor string) (<-chan Event, error) {
	url := fmt.Sprintf("%s/v1/events/actors/%s", r.BaseURL, actor)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event stream request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("event stream returned %d", resp.StatusCode)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		var currentType string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				currentType = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				var data map[string]interface{}
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &data); err != nil {
					r.logf("skipping malformed event payload: %v", err)
					continue
				}
				select {
				case events <- Event{Type: currentType, Data: data}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// WaitForEvent drains the stream until an event of the wanted type
// arrives. Other event types are logged and discarded.
func (r *Runner) WaitForEvent(ctx context.Context, events <-chan Event, eventType string, timeout time.Duration) (Event, error) {
	deadline := time.After(timeout)
	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-deadline:
			return Event{}, fmt.Errorf("timeout waiting for %s event (waited %v)", eventType, timeout)
		case event, ok := <-events:
			if !ok {
				return Event{}, fmt.Errorf("event stream closed while waiting for %s", eventType)
			}
			if event.Type == eventType {
				return event, nil
			}
			r.logf("ignoring %s event while waiting for %s", event.Type, eventType)
		}
	}
}
