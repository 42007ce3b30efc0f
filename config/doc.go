// Package config loads the watcher configuration from YAML files and
// environment variables: server and logging settings, health check cadence,
// store selection and the statically registered instances.
package config
