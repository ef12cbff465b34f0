// Package webhook delivers collaboration events to an external HTTP endpoint.
// Each event is POSTed as JSON through the instrumented HTTP client, which
// supplies retry, circuit breaking, rate limiting, and tracing.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dverbeek84/raciflow/internal/adapters/events"
	"github.com/dverbeek84/raciflow/internal/platform/httpclient"
)

// Compile-time interface check.
var _ events.Sink = (*Sink)(nil)

// Sink POSTs each event to the configured webhook URL.
type Sink struct {
	client *httpclient.Client
	logger *slog.Logger
}

// New creates a webhook sink over the given instrumented client. The client's
// base URL is the delivery endpoint. If logger is nil, logging is discarded.
func New(client *httpclient.Client, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{client: client, logger: logger}
}

// Name implements events.Sink.
func (s *Sink) Name() string {
	return "webhook"
}

// Deliver implements events.Sink. Retries and circuit breaking happen inside
// the client; an error here means delivery ultimately failed.
func (s *Sink) Deliver(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", ev.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.BaseURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Kind", string(ev.Kind))

	resp, err := s.client.Do(ctx, req)
	if resp != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("delivering event %s: %w", ev.ID, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook rejected event %s: HTTP %d", ev.ID, resp.StatusCode)
	}

	s.logger.DebugContext(ctx, "event delivered to webhook",
		slog.String("event_id", ev.ID),
		slog.String("kind", string(ev.Kind)),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}
