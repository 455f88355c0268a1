// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "context"

// Handle is the native capability for one sensor type. Implementations own
// all side effects; this package only forwards to them.
type Handle interface {
	StartUpdates() error
	StopUpdates() error
	// IsAvailable returns nil when the sensor is present, or an error
	// describing why it is not.
	IsAvailable(ctx context.Context) error
	SetUpdateInterval(intervalMs int) error
	SetAccelerationXThreshold(threshold float64) error
	SetAccelerationYThreshold(threshold float64) error
	SetAccelerationZThreshold(threshold float64) error
	SetLogLevel(level int) error
}

// Host resolves native modules by name.
type Host interface {
	Module(name string) (Handle, bool)
}

// Modules is a Host backed by a plain map of module name to handle.
type Modules map[string]Handle

// Module implements Host. Nil entries count as missing.
func (m Modules) Module(name string) (Handle, bool) {
	h, ok := m[name]
	if !ok || h == nil {
		return nil, false
	}
	return h, true
}

// Register stores h under the module name for t.
func (m Modules) Register(t SensorType, h Handle) {
	m[ModuleName(t)] = h
}
