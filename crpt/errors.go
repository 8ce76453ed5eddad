/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crpt

import (
	"errors"

	"github.com/acronis/go-crptapi/ratelimit"
)

// ErrEmptyCredential is returned by CreateDocument when the credential is empty.
var ErrEmptyCredential = errors.New("credential is empty")

// ErrNilDocument is wrapped by SerializationError when CreateDocument gets a nil document.
var ErrNilDocument = errors.New("document is nil")

// CancellationError is returned when waiting for the rate limiter was abandoned
// because the context is done or the client is closed.
type CancellationError = ratelimit.CancellationError

// LimiterFatalError is returned when the rate limiter can no longer admit requests.
type LimiterFatalError = ratelimit.FatalError

// SerializationError is returned when the document cannot be serialized.
// Nothing is sent and the rate budget is not spent in this case.
type SerializationError struct {
	Inner error
}

func (e *SerializationError) Error() string {
	return "serialize document: " + e.Inner.Error()
}

// Unwrap returns the next error in the error chain.
func (e *SerializationError) Unwrap() error {
	return e.Inner
}

// TransportError is returned when the request cannot be sent or the response cannot be read.
// The request has already been counted against the rate budget.
type TransportError struct {
	Inner error
}

func (e *TransportError) Error() string {
	return "send document: " + e.Inner.Error()
}

// Unwrap returns the next error in the error chain.
func (e *TransportError) Unwrap() error {
	return e.Inner
}
