package metrics

import (
	"context"
	"time"
)

// Sweeper runs one health sweep over every known instance.
type Sweeper interface {
	PollAll(ctx context.Context) error
}

type instrumentedSweeper struct {
	next      Sweeper
	collector *Collector
}

// Instrument wraps next so every sweep is counted and timed.
func (c *Collector) Instrument(next Sweeper) Sweeper {
	return &instrumentedSweeper{next: next, collector: c}
}

func (s *instrumentedSweeper) PollAll(ctx context.Context) error {
	start := time.Now()
	err := s.next.PollAll(ctx)

	event := MetricEvent{
		Type:      EventSweepCompleted,
		Timestamp: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.collector.Emit(event)

	return err
}
