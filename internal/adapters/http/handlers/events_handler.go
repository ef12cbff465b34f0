package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dverbeek84/raciflow/internal/adapters/events"
	"github.com/dverbeek84/raciflow/internal/adapters/http/dto"
	"github.com/dverbeek84/raciflow/internal/platform/logging"
)

// keepAliveInterval is how often an SSE comment line is sent on an idle
// stream so intermediaries do not close the connection.
const keepAliveInterval = 25 * time.Second

// EventsHandler streams collaboration events to clients over Server-Sent
// Events. Each connected client gets its own hub subscription.
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler creates a new EventsHandler over the given subscriber hub.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events. It holds the connection open and writes
// one SSE message per event until the client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		dto.WriteProblem(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The stream outlives the server's write timeout; clear the deadline for
	// this connection only.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.hub.Subscribe()
	defer sub.Close()

	logger := logging.FromContext(r.Context())
	logger.InfoContext(r.Context(), "event stream opened")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.InfoContext(r.Context(), "event stream closed")
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-sub.C:
			if !open {
				return
			}
			if err := writeSSE(w, ev); err != nil {
				logger.WarnContext(r.Context(), "failed to write event to stream",
					slog.String("event_id", ev.ID),
					slog.Any("error", err),
				)
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE writes one event in SSE wire format: id, event, and a single
// JSON data line.
func writeSSE(w http.ResponseWriter, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Kind, data)
	return err
}
