// Package events carries the health pipeline's notifications between
// components.
//
// Events are immutable values. The in-process Bus delivers each published
// event synchronously to every handler subscribed to its type; delivery
// order across handlers is unspecified and a panicking handler does not
// affect the others.
//
// Usage:
//
//	bus := events.NewBus(logger)
//	events.On(bus, func(e events.HealthRetrieved) {
//	    // apply e.Health.Status
//	})
//	bus.Publish(events.NewHealthRetrieved("a-1", health))
package events
