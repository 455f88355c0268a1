// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "sync"

// Process-wide instance used by the package-level functions. Init sets it
// once; Default reads it under the read lock.
var (
	defaultSensors *Sensors
	defaultOnce    sync.Once
	defaultMu      sync.RWMutex
)

// Init builds the process-wide instance from host. Only the first call has
// any effect; later calls return the first call's error.
func Init(host Host) error {
	var err error
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		defaultSensors, err = New(host)
	})
	if err != nil {
		return err
	}

	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultSensors == nil {
		return ErrNativeModulesUnavailable
	}
	return nil
}

// Default returns the process-wide instance, or nil before a successful Init.
func Default() *Sensors {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSensors
}

func withDefault(fn func(*Sensors) error) error {
	s := Default()
	if s == nil {
		return ErrNotInitialized
	}
	return fn(s)
}

func Start(t SensorType) error {
	return withDefault(func(s *Sensors) error { return s.Start(t) })
}

func Stop(t SensorType) error {
	return withDefault(func(s *Sensors) error { return s.Stop(t) })
}

func IsAvailable(t SensorType) (*Availability, error) {
	s := Default()
	if s == nil {
		return nil, ErrNotInitialized
	}
	return s.IsAvailable(t)
}

func SetUpdateIntervalForType(t SensorType, intervalMs int) error {
	return withDefault(func(s *Sensors) error { return s.SetUpdateInterval(t, intervalMs) })
}

func SetAccelerationXThreshold(t SensorType, threshold float64) error {
	return withDefault(func(s *Sensors) error { return s.SetAccelerationXThreshold(t, threshold) })
}

func SetAccelerationYThreshold(t SensorType, threshold float64) error {
	return withDefault(func(s *Sensors) error { return s.SetAccelerationYThreshold(t, threshold) })
}

func SetAccelerationZThreshold(t SensorType, threshold float64) error {
	return withDefault(func(s *Sensors) error { return s.SetAccelerationZThreshold(t, threshold) })
}

func SetLogLevelForType(t SensorType, level int) error {
	return withDefault(func(s *Sensors) error { return s.SetLogLevel(t, level) })
}
