/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package testutil contains assertion helpers for errors, Prometheus metrics and listening servers.
package testutil

type tHelper interface {
	Helper()
}
