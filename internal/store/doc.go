// Package store persists application instances. Three backends implement
// the same contract: an in-memory map, Redis and SQLite.
//
// Every backend hands out copies, so mutating a returned instance never
// changes stored state until it is passed back to Save.
package store
