/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package logtest provides loggers for tests: a JSON logger writing to stderr and a Recorder
// that keeps every entry in memory for later assertions.
package logtest
