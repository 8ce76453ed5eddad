/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import "errors"

// ErrStopped is wrapped by CancellationError when Acquire fails because the limiter has been stopped.
var ErrStopped = errors.New("rate limiter is stopped")

// ErrSchedulerExited is wrapped by FatalError when the refill scheduler returns while the limiter is still in use.
var ErrSchedulerExited = errors.New("refill scheduler exited unexpectedly")

// CancellationError is returned by Acquire when waiting was abandoned: the context is done or the limiter is stopped.
// No token is consumed in this case.
type CancellationError struct {
	Inner error
}

// Error returns a string representation of the error.
func (e *CancellationError) Error() string {
	return "rate limiter acquire canceled: " + e.Inner.Error()
}

// Unwrap returns the cause (context error or ErrStopped).
func (e *CancellationError) Unwrap() error {
	return e.Inner
}

// FatalError is returned by Acquire after the refill task has failed.
// Such limiter will never admit anybody again and should be replaced.
type FatalError struct {
	Inner error
}

// Error returns a string representation of the error.
func (e *FatalError) Error() string {
	return "rate limiter refill failed: " + e.Inner.Error()
}

// Unwrap returns the failure of the refill task.
func (e *FatalError) Unwrap() error {
	return e.Inner
}
