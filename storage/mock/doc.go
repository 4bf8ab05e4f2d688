// Package mock provides in-memory test doubles for the storage interfaces.
//
// The doubles behave as working implementations by default; tests inject
// failures for individual operations via function fields.
package mock
