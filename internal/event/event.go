// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package event carries sensor readings from native handles to subscribers.
package event

import (
	"errors"
	"sync"

	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Event is one emitted reading. Name is the native module name of the
// sensor, Data holds the per-type payload plus "timestamp" (epoch ms).
type Event struct {
	Name string             `json:"name"`
	Type sensors.SensorType `json:"type"`
	Data map[string]float64 `json:"data"`
}

// Timestamp returns the epoch millisecond timestamp carried in Data.
func (e Event) Timestamp() float64 {
	return e.Data["timestamp"]
}

// Emitter receives events from running sensors.
type Emitter interface {
	Emit(ev Event) error
}

// Func adapts a function to Emitter.
type Func func(ev Event) error

func (f Func) Emit(ev Event) error {
	return f(ev)
}

// Multi fans each event out to every emitter and joins their errors.
type Multi []Emitter

func (m Multi) Emit(ev Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Emitter = Func(func(Event) error { return nil })

// Recorder keeps every event it receives. Useful for tests and tooling.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of what was recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
