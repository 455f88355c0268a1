// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors forwards sensor operations to native handles.
//
// Every operation looks up the handle for a SensorType and calls the matching
// capability on it. The only state kept here is the dispatch table, built
// once by New, and the memoized availability outcome per type.
package sensors

import (
	"fmt"
	"sync"
)

// Sensors is the dispatch table plus the availability cache.
type Sensors struct {
	handles map[SensorType]Handle

	mu        sync.Mutex
	available map[SensorType]*Availability
}

// New resolves every sensor module on host. It fails with
// ErrNativeModulesUnavailable when none is registered.
func New(host Host) (*Sensors, error) {
	handles := make(map[SensorType]Handle, len(moduleNames))
	if host != nil {
		for _, t := range Types() {
			if h, ok := host.Module(ModuleName(t)); ok {
				handles[t] = h
			}
		}
	}
	if len(handles) == 0 {
		return nil, ErrNativeModulesUnavailable
	}

	return &Sensors{
		handles:   handles,
		available: make(map[SensorType]*Availability),
	}, nil
}

// Registered lists the types that resolved to a handle, in Types() order.
func (s *Sensors) Registered() []SensorType {
	var out []SensorType
	for _, t := range Types() {
		if _, ok := s.handles[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *Sensors) handle(t SensorType) (Handle, error) {
	h, ok := s.handles[t]
	if ok {
		return h, nil
	}
	if !t.Known() {
		return nil, fmt.Errorf("sensors: %w: %q", ErrUnknownSensorType, string(t))
	}
	return nil, fmt.Errorf("sensors: %s: %w", t, ErrModuleNotRegistered)
}

// Start begins native updates for t.
func (s *Sensors) Start(t SensorType) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.StartUpdates()
}

// Stop ends native updates for t.
func (s *Sensors) Stop(t SensorType) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.StopUpdates()
}

// IsAvailable returns the availability outcome for t. The native query runs
// on the first call only; later calls get the same outcome, settled or not.
func (s *Sensors) IsAvailable(t SensorType) (*Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.available[t]; ok {
		return a, nil
	}

	h, err := s.handle(t)
	if err != nil {
		return nil, err
	}
	a := queryAvailability(h)
	s.available[t] = a
	return a, nil
}

// SetUpdateInterval sets the requested sampling period of t in milliseconds.
func (s *Sensors) SetUpdateInterval(t SensorType, intervalMs int) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.SetUpdateInterval(intervalMs)
}

func (s *Sensors) SetAccelerationXThreshold(t SensorType, threshold float64) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.SetAccelerationXThreshold(threshold)
}

func (s *Sensors) SetAccelerationYThreshold(t SensorType, threshold float64) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.SetAccelerationYThreshold(threshold)
}

func (s *Sensors) SetAccelerationZThreshold(t SensorType, threshold float64) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.SetAccelerationZThreshold(threshold)
}

// SetLogLevel sets the native log level of t.
func (s *Sensors) SetLogLevel(t SensorType, level int) error {
	h, err := s.handle(t)
	if err != nil {
		return err
	}
	return h.SetLogLevel(level)
}
