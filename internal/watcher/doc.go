// Package watcher turns instance creation and periodic sweeps into health
// polls and translates poll outcomes into events.
//
// Fetching and applying are split: OnInstanceCreated and PollAll only fetch
// and publish HealthRetrieved or HealthRetrievalFailed, while
// OnHealthRetrieved is the single listener that writes the status through
// the directory. Every poll runs on its own goroutine, is independent of the
// others and is never retried; the next sweep is the retry.
package watcher
