// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"sync"
)

// fakeHandle records every call it receives. IsAvailableFunc, when set,
// replaces the default (available) answer.
type fakeHandle struct {
	IsAvailableFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

func (f *fakeHandle) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeHandle) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeHandle) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeHandle) StartUpdates() error {
	f.record("StartUpdates")
	return nil
}

func (f *fakeHandle) StopUpdates() error {
	f.record("StopUpdates")
	return nil
}

func (f *fakeHandle) IsAvailable(ctx context.Context) error {
	f.record("IsAvailable")
	if f.IsAvailableFunc != nil {
		return f.IsAvailableFunc(ctx)
	}
	return nil
}

func (f *fakeHandle) SetUpdateInterval(intervalMs int) error {
	f.record(fmt.Sprintf("SetUpdateInterval(%d)", intervalMs))
	return nil
}

func (f *fakeHandle) SetAccelerationXThreshold(threshold float64) error {
	f.record(fmt.Sprintf("SetAccelerationXThreshold(%g)", threshold))
	return nil
}

func (f *fakeHandle) SetAccelerationYThreshold(threshold float64) error {
	f.record(fmt.Sprintf("SetAccelerationYThreshold(%g)", threshold))
	return nil
}

func (f *fakeHandle) SetAccelerationZThreshold(threshold float64) error {
	f.record(fmt.Sprintf("SetAccelerationZThreshold(%g)", threshold))
	return nil
}

func (f *fakeHandle) SetLogLevel(level int) error {
	f.record(fmt.Sprintf("SetLogLevel(%d)", level))
	return nil
}

// fakeHost returns a Modules host with a fresh fakeHandle for each type.
func fakeHost(types ...SensorType) (Modules, map[SensorType]*fakeHandle) {
	host := Modules{}
	fakes := make(map[SensorType]*fakeHandle, len(types))
	for _, t := range types {
		f := &fakeHandle{}
		fakes[t] = f
		host.Register(t, f)
	}
	return host, fakes
}
