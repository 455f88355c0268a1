// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "context"

// Availability is the deferred outcome of a native availability query.
// It settles exactly once and never changes afterwards.
type Availability struct {
	done chan struct{}
	err  error
}

// queryAvailability starts the native query in the background and returns
// the pending outcome.
func queryAvailability(h Handle) *Availability {
	a := &Availability{done: make(chan struct{})}
	go func() {
		a.err = h.IsAvailable(context.Background())
		close(a.done)
	}()
	return a
}

// Done is closed once the outcome has settled.
func (a *Availability) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the outcome settles or ctx ends. It returns nil when the
// sensor is available, the native rejection otherwise, or ctx.Err().
func (a *Availability) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Available is Wait reduced to a boolean.
func (a *Availability) Available(ctx context.Context) bool {
	return a.Wait(ctx) == nil
}
