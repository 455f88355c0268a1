// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package native

import (
	"errors"
	"sync"

	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Host collects the Sensors a backend provides and resolves them by module
// name, the way the platform registry would.
type Host struct {
	mu      sync.RWMutex
	sensors map[sensors.SensorType]*Sensor
	closers []func() error
}

var _ sensors.Host = (*Host)(nil)

func NewHost() *Host {
	return &Host{sensors: make(map[sensors.SensorType]*Sensor)}
}

// Add registers s under its type's module name, replacing any previous one.
func (h *Host) Add(s *Sensor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sensors[s.Type()] = s
}

// OnClose registers fn to run when the host is closed, after all sensors
// have been stopped. Closers run in reverse registration order.
func (h *Host) OnClose(fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closers = append(h.closers, fn)
}

// Module implements sensors.Host.
func (h *Host) Module(name string) (sensors.Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for t, s := range h.sensors {
		if sensors.ModuleName(t) == name {
			return s, true
		}
	}
	return nil, false
}

// Sensor returns the registered Sensor for t.
func (h *Host) Sensor(t sensors.SensorType) (*Sensor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sensors[t]
	return s, ok
}

// Statuses returns a snapshot of every registered sensor in type order.
func (h *Host) Statuses() []Status {
	var out []Status
	for _, t := range sensors.Types() {
		if s, ok := h.Sensor(t); ok {
			out = append(out, s.Status())
		}
	}
	return out
}

// Close stops every sensor and releases backend resources.
func (h *Host) Close() error {
	h.mu.RLock()
	all := make([]*Sensor, 0, len(h.sensors))
	for _, s := range h.sensors {
		all = append(all, s)
	}
	closers := append([]func() error(nil), h.closers...)
	h.mu.RUnlock()

	var errs []error
	for _, s := range all {
		if err := s.StopUpdates(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
