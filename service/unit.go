/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package service runs long-living application units (workers, servers) and stops them gracefully.
package service

// Unit represents a service unit that can be started and stopped.
type Unit interface {
	// Start begins the unit's operation. It may return immediately or block for the unit's lifetime.
	// A fatal error is written into fatalErr; on success nothing is written and the channel
	// is not used after Start returns.
	Start(fatalErr chan<- error)

	// Stop halts the unit. It may be called even if Start has failed or was never called.
	Stop(gracefully bool) error
}

// MetricsRegisterer is an interface for objects that can register its own metrics.
type MetricsRegisterer interface {
	MustRegisterMetrics()
	UnregisterMetrics()
}
