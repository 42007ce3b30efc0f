// Package httpserver runs the query API behind a validated listen address
// with bounded timeouts and graceful shutdown.
package httpserver
