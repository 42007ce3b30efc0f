// Package directory is the use-case facade over the instance store. It is
// the only component that writes an instance's health status to storage.
package directory
