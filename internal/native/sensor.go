// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package native

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// DefaultMinPeriod is the sampling period used for an update interval of 0.
const DefaultMinPeriod = 10 * time.Millisecond

// Options configures a Sensor.
type Options struct {
	Type   sensors.SensorType
	Reader Reader

	// Probe reports whether the hardware is present. Nil means always.
	Probe func(ctx context.Context) error

	Emitter event.Emitter

	// MinPeriod bounds how fast the sampling loop runs.
	MinPeriod time.Duration

	// Logger is the parent logger; the Sensor logs through a copy of it.
	Logger *log.Logger
	Now    func() time.Time
}

// Status is a snapshot of a Sensor's settings.
type Status struct {
	Type       sensors.SensorType `json:"type"`
	Running    bool               `json:"running"`
	IntervalMs int                `json:"interval_ms"`
	ThresholdX float64            `json:"threshold_x"`
	ThresholdY float64            `json:"threshold_y"`
	ThresholdZ float64            `json:"threshold_z"`
	LogLevel   int                `json:"log_level"`
}

// Sensor implements sensors.Handle on top of a Reader. While started it
// samples the reader on a ticker and emits the readings that pass the
// interval and threshold gate.
type Sensor struct {
	typ       sensors.SensorType
	name      string
	reader    Reader
	probe     func(ctx context.Context) error
	emitter   event.Emitter
	minPeriod time.Duration
	logger    *log.Logger
	now       func() time.Time

	mu          sync.Mutex
	intervalMs  int
	thresholds  [3]float64
	logLevel    int
	lastReading time.Time

	running bool
	stop    chan struct{}
	done    chan struct{}
	reset   chan time.Duration
}

var _ sensors.Handle = (*Sensor)(nil)

// New builds a Sensor. Reader is required.
func New(opts Options) *Sensor {
	s := &Sensor{
		typ:       opts.Type,
		name:      DisplayName(opts.Type),
		reader:    opts.Reader,
		probe:     opts.Probe,
		emitter:   opts.Emitter,
		minPeriod: opts.MinPeriod,
		now:       opts.Now,
	}
	if s.emitter == nil {
		s.emitter = event.Discard
	}
	if s.minPeriod <= 0 {
		s.minPeriod = DefaultMinPeriod
	}
	if opts.Logger != nil {
		// own copy, SetLogLevel must not leak into the parent
		s.logger = opts.Logger.With("sensor", string(opts.Type))
	} else {
		s.logger = logging.Component(sensors.ModuleName(opts.Type))
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger.SetLevel(logging.SensorLevel(s.logLevel))
	return s
}

// Type returns the sensor type this handle serves.
func (s *Sensor) Type() sensors.SensorType {
	return s.typ
}

// Status returns the current settings.
func (s *Sensor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Type:       s.typ,
		Running:    s.running,
		IntervalMs: s.intervalMs,
		ThresholdX: s.thresholds[0],
		ThresholdY: s.thresholds[1],
		ThresholdZ: s.thresholds[2],
		LogLevel:   s.logLevel,
	}
}

// IsAvailable runs the probe.
func (s *Sensor) IsAvailable(ctx context.Context) error {
	if s.probe == nil {
		return nil
	}
	if err := s.probe(ctx); err != nil {
		return fmt.Errorf("no %s found: %w", s.name, err)
	}
	return nil
}

// StartUpdates starts the sampling loop. Starting a running sensor is a no-op.
func (s *Sensor) StartUpdates() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.reader == nil {
		return fmt.Errorf("%s: no reader configured", s.name)
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.reset = make(chan time.Duration, 1)
	s.running = true

	period := s.periodLocked()
	go s.run(period, s.stop, s.done, s.reset)

	s.logger.Info("updates started", "period", period)
	return nil
}

// StopUpdates stops the sampling loop and waits for it to exit.
func (s *Sensor) StopUpdates() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	close(s.stop)
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.logger.Info("updates stopped")
	return nil
}

// SetUpdateInterval sets the minimum spacing between emitted readings. A
// running loop picks up the new period immediately.
func (s *Sensor) SetUpdateInterval(intervalMs int) error {
	if intervalMs < 0 {
		return fmt.Errorf("%s: update interval must be >= 0, got %d", s.name, intervalMs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.intervalMs = intervalMs
	if s.running {
		select {
		case <-s.reset:
		default:
		}
		s.reset <- s.periodLocked()
	}
	s.logger.Info("update interval set", "interval_ms", intervalMs)
	return nil
}

func (s *Sensor) SetAccelerationXThreshold(threshold float64) error {
	return s.setThreshold(0, threshold)
}

func (s *Sensor) SetAccelerationYThreshold(threshold float64) error {
	return s.setThreshold(1, threshold)
}

func (s *Sensor) SetAccelerationZThreshold(threshold float64) error {
	return s.setThreshold(2, threshold)
}

func (s *Sensor) setThreshold(axis int, threshold float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds[axis] = threshold
	s.logger.Info("threshold set", "axis", string(rune('x'+axis)), "value", threshold)
	return nil
}

// SetLogLevel adjusts how chatty this sensor is. See logging.SensorLevel.
func (s *Sensor) SetLogLevel(level int) error {
	if level < 0 {
		return fmt.Errorf("%s: log level must be >= 0, got %d", s.name, level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLevel = level
	s.logger.SetLevel(logging.SensorLevel(level))
	s.logger.Info("log level set", "level", level)
	return nil
}

// periodLocked is the sampling period: half the update interval, so the
// gate rather than the ticker decides admission, bounded by minPeriod.
func (s *Sensor) periodLocked() time.Duration {
	p := time.Duration(s.intervalMs) * time.Millisecond / 2
	if p < s.minPeriod {
		p = s.minPeriod
	}
	return p
}

func (s *Sensor) run(period time.Duration, stop <-chan struct{}, done chan<- struct{}, reset <-chan time.Duration) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	s.sample()
	for {
		select {
		case <-stop:
			return
		case p := <-reset:
			ticker.Reset(p)
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sensor) sample() {
	smp, err := s.reader.Read()
	if errors.Is(err, ErrNoData) {
		return
	}
	if err != nil {
		s.logger.Warn("read failed", "err", err)
		return
	}
	s.process(smp)
}

// process applies the gate to one sample and emits it when admitted.
func (s *Sensor) process(smp Sample) {
	now := s.now()
	if smp.Time.IsZero() {
		smp.Time = now
	}

	s.mu.Lock()
	ok := s.admitLocked(smp, now)
	s.mu.Unlock()
	if !ok {
		return
	}

	data, err := Payload(s.typ, smp)
	if err != nil {
		s.logger.Error("cannot shape reading", "err", err)
		return
	}

	s.logger.Debug("reading", "data", data)
	if err := s.emitter.Emit(event.Event{
		Name: sensors.ModuleName(s.typ),
		Type: s.typ,
		Data: data,
	}); err != nil {
		s.logger.Warn("emit failed", "err", err)
	}
}

// admitLocked is the emission gate. The interval slot is consumed as soon as
// the interval has elapsed, even when the thresholds then reject the sample.
// Slots stay on the interval grid while sampling keeps up, so read latency
// does not push every later slot back.
func (s *Sensor) admitLocked(smp Sample, now time.Time) bool {
	interval := time.Duration(s.intervalMs) * time.Millisecond
	if s.lastReading.IsZero() {
		s.lastReading = now
	} else {
		next := s.lastReading.Add(interval)
		if now.Before(next) {
			return false
		}
		if interval > 0 && now.Sub(next) < interval {
			s.lastReading = next
		} else {
			s.lastReading = now
		}
	}

	return smp.Value(0) > s.thresholds[0] ||
		smp.Value(1) > s.thresholds[1] ||
		smp.Value(2) > s.thresholds[2]
}
