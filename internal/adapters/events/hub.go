package events

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/dverbeek84/raciflow/internal/platform/telemetry"
)

// Compile-time interface check.
var _ Sink = (*Hub)(nil)

// Hub fans events out to in-process subscribers. The SSE endpoint subscribes
// one channel per connected client. Each subscriber owns a bounded buffer;
// a slow subscriber drops events rather than stalling delivery to others.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	bufferSize int
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// Subscription is one subscriber's view of the event stream. Events arrive
// on C until Close is called; the channel is closed afterwards.
type Subscription struct {
	C chan Event

	hub  *Hub
	once sync.Once
}

// Close detaches the subscription from the hub and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.C)
	})
}

// NewHub creates a subscriber hub. bufferSize is the per-subscriber channel
// capacity; non-positive values fall back to the broker default.
func NewHub(bufferSize int, metrics *telemetry.Metrics, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: bufferSize,
		metrics:    metrics,
		logger:     logger,
	}
}

// Subscribe registers a new subscriber. The caller must Close the returned
// subscription when done or the hub will retain it indefinitely.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan Event, h.bufferSize),
		hub: h,
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// SubscriberCount returns the number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Name implements Sink.
func (h *Hub) Name() string {
	return "hub"
}

// Deliver implements Sink. Delivery to each subscriber is non-blocking; a
// full subscriber buffer drops the event for that subscriber only.
func (h *Hub) Deliver(ctx context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.C <- ev:
		default:
			if h.metrics != nil {
				h.metrics.EventDroppedTotal.Add(ctx, 1, metric.WithAttributes(
					telemetry.AttrEventType.String(string(ev.Kind)),
				))
			}
			h.logger.WarnContext(ctx, "subscriber buffer full, dropping event",
				slog.String("operation", "Hub.Deliver"),
				slog.String("kind", string(ev.Kind)),
				slog.String("task_id", ev.TaskID),
			)
		}
	}
	return nil
}

// remove detaches a subscription. Called from Subscription.Close.
func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}
