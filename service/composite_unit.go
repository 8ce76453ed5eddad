/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// CompositeUnit groups several units (e.g. a spool worker and a metrics server) into one.
type CompositeUnit struct {
	Units []Unit
}

// NewCompositeUnit creates a new composite unit.
func NewCompositeUnit(units ...Unit) *CompositeUnit {
	return &CompositeUnit{units}
}

// Start launches every unit in its own goroutine and blocks until all of them return.
// When one of the units reports a fatal error, the rest are stopped non-gracefully
// and a CompositeUnitError is sent to fatalError.
func (cu *CompositeUnit) Start(fatalError chan<- error) {
	unitErrs := make([]chan error, len(cu.Units))
	for i := range unitErrs {
		unitErrs[i] = make(chan error, 1)
	}

	done := make(chan bool, len(cu.Units))
	running := atomic.NewInt32(int32(len(cu.Units))) //nolint:gosec // unit count is small
	for i := range cu.Units {
		go func(i int) {
			cu.Units[i].Start(unitErrs[i])
			if len(unitErrs[i]) != 0 {
				done <- false
				return
			}
			if running.Dec() == 0 {
				done <- true
			}
		}(i)
	}

	if len(cu.Units) == 0 || <-done {
		return
	}

	stopErr := cu.Stop(false)

	var errs []error
	for _, ch := range unitErrs {
		select {
		case err := <-ch:
			errs = append(errs, err)
		default:
		}
	}
	var cuErr *CompositeUnitError
	if errors.As(stopErr, &cuErr) {
		errs = append(errs, cuErr.UnitErrors...)
	}
	fatalError <- &CompositeUnitError{errs}
}

// Stop stops all units concurrently and collects their errors into a single CompositeUnitError.
func (cu *CompositeUnit) Stop(gracefully bool) error {
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	wg.Add(len(cu.Units))
	for _, u := range cu.Units {
		go func(u Unit) {
			defer wg.Done()
			if err := u.Stop(gracefully); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()

	if len(errs) == 0 {
		return nil
	}
	return &CompositeUnitError{errs}
}

// MustRegisterMetrics registers metrics of all units that implement MetricsRegisterer.
func (cu *CompositeUnit) MustRegisterMetrics() {
	for _, u := range cu.Units {
		if mr, ok := u.(MetricsRegisterer); ok {
			mr.MustRegisterMetrics()
		}
	}
}

// UnregisterMetrics unregisters metrics of all units that implement MetricsRegisterer.
func (cu *CompositeUnit) UnregisterMetrics() {
	for _, u := range cu.Units {
		if mr, ok := u.(MetricsRegisterer); ok {
			mr.UnregisterMetrics()
		}
	}
}

// CompositeUnitError is an error which may occur in CompositeUnit's methods for starting and stopping units.
type CompositeUnitError struct {
	UnitErrors []error
}

// Error returns a string representation of the units errors.
func (cue *CompositeUnitError) Error() string {
	msgs := make([]string, 0, len(cue.UnitErrors))
	for _, err := range cue.UnitErrors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns the underlying unit errors.
func (cue *CompositeUnitError) Unwrap() []error {
	return cue.UnitErrors
}
