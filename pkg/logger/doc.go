// Package logger builds the structured slog loggers used across the
// watcher, with a configurable level and a text or JSON handler chosen by
// environment.
package logger
