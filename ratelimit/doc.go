/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package ratelimit provides client-side admission gates that cap the number of operations per time period.
//
// TokenBucket holds a fixed budget of tokens which is topped up on a fixed-rate schedule.
// Callers that find the bucket empty are queued and served in arrival order, nobody is ever rejected.
// SmoothLimiter spreads the same budget evenly over the period.
//
// Both implement Limiter:
//
//	limiter, err := ratelimit.NewTokenBucket(time.Second, 10)
//	if err != nil {
//		return err
//	}
//	defer limiter.Stop()
//
//	if err = limiter.Acquire(ctx); err != nil {
//		return err // *CancellationError or *FatalError
//	}
package ratelimit

import "context"

// Limiter is an admission gate shared by concurrent callers.
type Limiter interface {
	// Acquire blocks until the caller is admitted, ctx is done or the limiter is stopped.
	Acquire(ctx context.Context) error

	// Stop releases all blocked callers and makes further Acquire calls fail.
	Stop()
}
