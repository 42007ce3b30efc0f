// Package api serves the read-only query API: the instances the directory
// knows with their last durable health status, the metrics snapshot and a
// liveness probe.
package api
