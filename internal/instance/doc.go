// Package instance models a monitored application instance: its identity,
// the endpoints it advertises and its last known health status.
//
// An Instance is built once from the metadata handed over by service
// discovery. Its id and endpoints never change afterwards; only the health
// status is mutable, and only the instance directory persists that change.
package instance
