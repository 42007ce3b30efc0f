// Package registration feeds statically configured service instances into
// the directory and announces each newly created one on the event bus.
package registration
