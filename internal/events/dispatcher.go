// AngelaMos | 2026
// dispatcher.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/igorteleutsa/taskSystem/internal/config"
	"github.com/igorteleutsa/taskSystem/internal/core"
)

// Emitter is what the registries depend on. Emit never blocks and never
// fails the caller.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

type Stats struct {
	Emitted   uint64 `json:"emitted"`
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
	Pending   int    `json:"pending"`
}

type envelope struct {
	routingKey string
	body       []byte
}

type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger

	publishTimeout time.Duration
	maxAttempts    int
	retryBackoff   time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan envelope
	done   chan struct{}

	emitted   atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64

	outcomes *prometheus.CounterVec
}

type DispatcherConfig struct {
	Events     config.EventsConfig
	Publisher  Publisher
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bufferSize := cfg.Events.BufferSize
	if bufferSize <= 0 {
		bufferSize = 256
	}
	attempts := cfg.Events.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := cfg.Events.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	d := &Dispatcher{
		publisher:      cfg.Publisher,
		logger:         logger,
		publishTimeout: timeout,
		maxAttempts:    attempts,
		retryBackoff:   cfg.Events.RetryBackoff,
		queue:          make(chan envelope, bufferSize),
		done:           make(chan struct{}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasksystem",
			Subsystem: "events",
			Name:      "messages_total",
			Help:      "Domain events by delivery outcome",
		}, []string{"routing_key", "outcome"}),
	}

	if cfg.Registerer != nil {
		if err := cfg.Registerer.Register(d.outcomes); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					d.outcomes = existing
				}
			}
		}
	}

	go d.run()

	return d
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	key := event.RoutingKey()

	body, err := json.Marshal(event)
	if err != nil {
		d.logger.ErrorContext(ctx, "event encode failed",
			"routing_key", key,
			"error", err,
		)
		d.record(key, "failed", &d.failed)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.WarnContext(ctx, "event dropped after shutdown",
			"routing_key", key,
		)
		d.record(key, "dropped", &d.dropped)
		return
	}

	select {
	case d.queue <- envelope{routingKey: key, body: body}:
		d.record(key, "emitted", &d.emitted)
		core.AddSpanEvent(ctx, "event.enqueued",
			attribute.String("routing_key", key),
		)
	default:
		d.logger.WarnContext(ctx, "event buffer full, dropping event",
			"routing_key", key,
		)
		d.record(key, "dropped", &d.dropped)
	}
}

// Shutdown stops intake and waits for queued events to be delivered or for
// ctx to expire, whichever comes first.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn("event drain interrupted",
			"pending", len(d.queue),
		)
		return ctx.Err()
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Emitted:   d.emitted.Load(),
		Published: d.published.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
		Pending:   len(d.queue),
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for env := range d.queue {
		d.deliver(env)
	}
}

func (d *Dispatcher) deliver(env envelope) {
	ctx, span := core.StartSpan(
		context.Background(),
		"events.publish",
		attribute.String("routing_key", env.routingKey),
	)
	defer span.End()

	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err = d.publishOnce(ctx, env)
		if err == nil {
			d.record(env.routingKey, "published", &d.published)
			return
		}

		d.logger.Warn("event publish attempt failed",
			"routing_key", env.routingKey,
			"attempt", attempt,
			"max_attempts", d.maxAttempts,
			"error", err,
		)

		if attempt < d.maxAttempts && d.retryBackoff > 0 {
			time.Sleep(d.retryBackoff * time.Duration(attempt))
		}
	}

	core.SetSpanError(ctx, err)
	d.logger.Error("event publish failed",
		"routing_key", env.routingKey,
		"error", err,
	)
	d.record(env.routingKey, "failed", &d.failed)
}

func (d *Dispatcher) publishOnce(ctx context.Context, env envelope) error {
	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	return d.publisher.Publish(ctx, env.routingKey, env.body)
}

func (d *Dispatcher) record(key, outcome string, counter *atomic.Uint64) {
	counter.Add(1)
	d.outcomes.WithLabelValues(key, outcome).Inc()
}

var _ Emitter = (*Dispatcher)(nil)
