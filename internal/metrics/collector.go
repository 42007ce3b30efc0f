package metrics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/angeloszaimis/healthwatch/internal/events"
)

type EventType string

const (
	EventInstanceRegistered EventType = "instance_registered"
	EventPollSucceeded      EventType = "poll_succeeded"
	EventPollFailed         EventType = "poll_failed"
	EventSweepCompleted     EventType = "sweep_completed"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Instance  string
	Status    string
	Error     string
	Duration  time.Duration
}

// Collector aggregates metric events on its own goroutine. Producers never
// block: events arriving while the buffer is full are counted and dropped.
type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	dropped atomic.Int64
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger.With(slog.String("component", "metrics")),
	}
}

// Subscribe feeds the collector from the health pipeline events on bus.
func (c *Collector) Subscribe(bus events.Bus) {
	events.On(bus, func(e events.InstanceCreated) {
		if e.Instance == nil {
			return
		}
		c.Emit(MetricEvent{
			Type:      EventInstanceRegistered,
			Timestamp: e.OccurredAt(),
			Instance:  e.Instance.ID(),
			Status:    e.Instance.HealthStatus().String(),
		})
	})
	events.On(bus, func(e events.HealthRetrieved) {
		c.Emit(MetricEvent{
			Type:      EventPollSucceeded,
			Timestamp: e.OccurredAt(),
			Instance:  e.InstanceID,
			Status:    e.Health.Status.String(),
		})
	})
	events.On(bus, func(e events.HealthRetrievalFailed) {
		event := MetricEvent{
			Type:      EventPollFailed,
			Timestamp: e.OccurredAt(),
			Instance:  e.InstanceID,
		}
		if e.Cause != nil {
			event.Error = e.Cause.Error()
		}
		c.Emit(event)
	})
}

// Emit queues event without blocking.
func (c *Collector) Emit(event MetricEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventInstanceRegistered:
		c.metrics.RecordRegistration(event.Instance, event.Status)

	case EventPollSucceeded:
		c.metrics.RecordSuccess(event.Instance, event.Status, event.Timestamp)

	case EventPollFailed:
		c.metrics.RecordFailure(event.Instance, event.Error, event.Timestamp)

	case EventSweepCompleted:
		c.metrics.RecordSweep(event.Duration, event.Error != "")
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	snap := c.metrics.Snapshot()
	snap.DroppedEvents = c.dropped.Load()
	return snap
}
