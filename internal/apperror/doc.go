// Package apperror defines the coded error type shared by stores, the
// instance directory and the query API, together with the echo error
// handler that turns those codes into HTTP responses.
package apperror
