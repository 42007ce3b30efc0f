// Package metrics aggregates health pipeline activity into per-instance
// counters.
//
// The collector subscribes to the event bus and receives instance
// registrations, successful polls and failed polls through a buffered
// channel. Sends never block the publishing goroutine: when the buffer is
// full the event is dropped and counted. Sweeps are timed by wrapping the
// sweeper with Instrument.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Subscribe(bus)
//	collector.Start(ctx)
//
//	scheduler := watcher.NewScheduler(collector.Instrument(w), interval, logger)
//
//	// Get metrics snapshot
//	snapshot := collector.Snapshot()
//
// Pending events are drained when the collector's context is cancelled.
package metrics
