package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/dverbeek84/raciflow/internal/app/fanout"
	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/platform/telemetry"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time interface check.
var _ ports.EventEmitter = (*Broker)(nil)

// maxSinkWorkers bounds concurrent sink deliveries per event.
const maxSinkWorkers = 4

// defaultBufferSize is used when the configured buffer size is not positive.
const defaultBufferSize = 256

// Sink receives dispatched events. Deliver is called from the broker's
// dispatch goroutine; implementations must tolerate concurrent calls for
// different events and should honor ctx for cancellation.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// Deliver processes one event. A returned error is logged by the broker
	// and does not affect delivery to other sinks.
	Deliver(ctx context.Context, ev Event) error
}

// Broker is the in-process event pipeline. Emit methods enqueue onto a
// bounded buffer and return immediately; a single dispatcher goroutine fans
// each event out to all sinks with bounded concurrency.
type Broker struct {
	sinks   []Sink
	queue   chan Event
	metrics *telemetry.Metrics
	logger  *slog.Logger

	dispatchCtx    context.Context
	cancelDispatch context.CancelFunc
	done           chan struct{}
	closeOnce      sync.Once
}

// NewBroker creates a broker and starts its dispatcher goroutine.
// If metrics is nil, metric recording is skipped. If logger is nil, logging
// is discarded.
func NewBroker(bufferSize int, sinks []Sink, metrics *telemetry.Metrics, logger *slog.Logger) *Broker {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Broker{
		sinks:          sinks,
		queue:          make(chan Event, bufferSize),
		metrics:        metrics,
		logger:         logger,
		dispatchCtx:    ctx,
		cancelDispatch: cancel,
		done:           make(chan struct{}),
	}

	go b.dispatch()

	return b
}

// EmitTaskCreated announces a new task with its full composed payload.
func (b *Broker) EmitTaskCreated(ctx context.Context, details *task.Details) {
	ev := newEvent(KindTaskCreated, details.Task.ID, details.Task.CreatorID)
	ev.Task = taskFromDetails(details)
	b.publish(ctx, ev)
}

// EmitTaskUpdated announces a task mutation with the refreshed payload.
func (b *Broker) EmitTaskUpdated(ctx context.Context, details *task.Details) {
	ev := newEvent(KindTaskUpdated, details.Task.ID, "")
	ev.Task = taskFromDetails(details)
	b.publish(ctx, ev)
}

// EmitTaskDeleted announces a deletion carrying only the identifier.
func (b *Broker) EmitTaskDeleted(ctx context.Context, taskID domain.ID) {
	b.publish(ctx, newEvent(KindTaskDeleted, taskID, ""))
}

// EmitSubTaskUpdated announces a subtask creation or status change.
func (b *Broker) EmitSubTaskUpdated(ctx context.Context, details *task.SubTaskDetails) {
	ev := newEvent(KindSubTaskUpdated, details.SubTask.TaskID, "")
	ev.SubTask = subTaskFromDetails(details)
	b.publish(ctx, ev)
}

// EmitTaskLocked announces an advisory editing lock.
func (b *Broker) EmitTaskLocked(ctx context.Context, taskID domain.ID, userID string) {
	b.publish(ctx, newEvent(KindTaskLocked, taskID, userID))
}

// EmitTaskUnlocked announces the release of an advisory editing lock.
func (b *Broker) EmitTaskUnlocked(ctx context.Context, taskID domain.ID, userID string) {
	b.publish(ctx, newEvent(KindTaskUnlocked, taskID, userID))
}

// Close stops accepting events, waits for the dispatcher to drain the buffer
// or ctx to expire, then cancels in-flight deliveries.
func (b *Broker) Close(ctx context.Context) error {
	var err error
	b.closeOnce.Do(func() {
		close(b.queue)

		select {
		case <-b.done:
		case <-ctx.Done():
			err = ctx.Err()
		}

		b.cancelDispatch()
	})
	return err
}

// publish enqueues without blocking. A full buffer drops the event: the
// mutation is already committed, so losing the notification is preferable to
// stalling the request path.
func (b *Broker) publish(ctx context.Context, ev Event) {
	select {
	case b.queue <- ev:
		if b.metrics != nil {
			b.metrics.EventPublishedTotal.Add(ctx, 1, metric.WithAttributes(
				telemetry.AttrEventType.String(string(ev.Kind)),
			))
		}
	default:
		if b.metrics != nil {
			b.metrics.EventDroppedTotal.Add(ctx, 1, metric.WithAttributes(
				telemetry.AttrEventType.String(string(ev.Kind)),
			))
		}
		b.logger.WarnContext(ctx, "event buffer full, dropping event",
			slog.String("operation", "Broker.publish"),
			slog.String("kind", string(ev.Kind)),
			slog.String("task_id", ev.TaskID),
		)
	}
}

// dispatch drains the queue and delivers each event to every sink. Sink
// failures are logged and isolated from each other.
func (b *Broker) dispatch() {
	defer close(b.done)

	for ev := range b.queue {
		start := time.Now()
		results := fanout.Run(b.dispatchCtx, maxSinkWorkers, b.sinks,
			func(ctx context.Context, s Sink) (struct{}, error) {
				return struct{}{}, s.Deliver(ctx, ev)
			})

		for i, r := range results {
			if r.Err != nil {
				b.logger.Warn("event sink delivery failed",
					slog.String("operation", "Broker.dispatch"),
					slog.String("sink", b.sinks[i].Name()),
					slog.String("kind", string(ev.Kind)),
					slog.String("task_id", ev.TaskID),
					slog.Any("error", r.Err),
				)
			}
		}

		b.logger.Debug("event dispatched",
			slog.String("kind", string(ev.Kind)),
			slog.String("task_id", ev.TaskID),
			slog.Duration("took", time.Since(start)),
		)
	}
}
