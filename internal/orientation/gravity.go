// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "time"

// DefaultGravityTimeConstant is used when GravityFilter.TimeConstant is 0.
const DefaultGravityTimeConstant = 200 * time.Millisecond

// GravityFilter isolates gravity from accelerometer samples with a first
// order low-pass filter. Not safe for concurrent use.
type GravityFilter struct {
	TimeConstant time.Duration

	gravity [3]float64
	last    time.Time
	primed  bool
}

// Update feeds one acceleration sample taken at `at` and returns the current
// gravity estimate and the remaining linear acceleration.
func (f *GravityFilter) Update(a [3]float64, at time.Time) (gravity, linear [3]float64) {
	if !f.primed {
		f.gravity = a
		f.last = at
		f.primed = true
		return f.gravity, [3]float64{}
	}

	tc := f.TimeConstant
	if tc <= 0 {
		tc = DefaultGravityTimeConstant
	}
	dt := at.Sub(f.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	f.last = at

	alpha := tc.Seconds() / (tc.Seconds() + dt)
	for i := range a {
		f.gravity[i] = alpha*f.gravity[i] + (1-alpha)*a[i]
		linear[i] = a[i] - f.gravity[i]
	}
	return f.gravity, linear
}
