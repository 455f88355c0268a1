// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mock provides a native host whose sensors report smooth synthetic
// readings. It needs no hardware and is used by the console and in tests.
package mock

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/internal/orientation"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// StandardGravity in m/s².
const StandardGravity = 9.80665

// ErrDisabled is reported by sensors listed as unavailable.
var ErrDisabled = errors.New("sensor disabled in mock host")

// Options configures the mock host.
type Options struct {
	Emitter event.Emitter

	// Unavailable types are registered but fail IsAvailable and Read.
	Unavailable []sensors.SensorType

	MinPeriod time.Duration
	Logger    *log.Logger
	Now       func() time.Time
}

// NewHost registers a mock Sensor for every sensor type.
func NewHost(opts Options) *native.Host {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Component("mock")
	}

	motion := NewMotion(opts.Now)
	disabled := make(map[sensors.SensorType]bool, len(opts.Unavailable))
	for _, t := range opts.Unavailable {
		disabled[t] = true
	}

	host := native.NewHost()
	for _, t := range sensors.Types() {
		t := t
		reader := native.ReaderFunc(func() (native.Sample, error) { return motion.Read(t) })
		var probe func(context.Context) error
		if disabled[t] {
			reader = func() (native.Sample, error) { return native.Sample{}, ErrDisabled }
			probe = func(context.Context) error { return ErrDisabled }
		}

		host.Add(native.New(native.Options{
			Type:      t,
			Reader:    reader,
			Probe:     probe,
			Emitter:   opts.Emitter,
			MinPeriod: opts.MinPeriod,
			Logger:    opts.Logger,
			Now:       opts.Now,
		}))
	}

	opts.Logger.Info("mock host ready", "unavailable", len(disabled))
	return host
}

// Motion models a board rocking gently while it turns at a constant rate.
// All sensor types are derived from the same pose so they stay consistent.
type Motion struct {
	start time.Time
	now   func() time.Time
}

func NewMotion(now func() time.Time) *Motion {
	return &Motion{start: now(), now: now}
}

// Read samples sensor t at the current time.
func (m *Motion) Read(t sensors.SensorType) (native.Sample, error) {
	now := m.now()
	values, err := Values(t, now.Sub(m.start).Seconds())
	if err != nil {
		return native.Sample{}, err
	}
	return native.Sample{Values: values, Time: now}, nil
}

// Values returns the reading of sensor t at elapsed seconds.
func Values(t sensors.SensorType, elapsed float64) ([]float64, error) {
	pose := orientation.MockPose(elapsed)

	switch t {
	case sensors.Accelerometer:
		g, l := gravity(pose), linear(elapsed)
		return []float64{g[0] + l[0], g[1] + l[1], g[2] + l[2]}, nil

	case sensors.Gravity:
		g := gravity(pose)
		return g[:], nil

	case sensors.LinearAcceleration:
		l := linear(elapsed)
		return l[:], nil

	case sensors.Gyroscope:
		r, p, y := orientation.MockRates(elapsed)
		return []float64{radians(r), radians(p), radians(y)}, nil

	case sensors.Magnetometer:
		yaw := radians(pose.Yaw)
		return []float64{22 * math.Cos(yaw), -22 * math.Sin(yaw), -42}, nil

	case sensors.Barometer:
		return []float64{1013.25 + 0.5*math.Sin(0.1*elapsed)}, nil

	case sensors.Orientation:
		return orientation.QuaternionFromPose(pose).RotationVector(), nil
	}
	return nil, sensors.ErrUnknownSensorType
}

func gravity(p orientation.Pose) [3]float64 {
	roll, pitch := radians(p.Roll), radians(p.Pitch)
	return [3]float64{
		-StandardGravity * math.Sin(pitch),
		StandardGravity * math.Sin(roll) * math.Cos(pitch),
		StandardGravity * math.Cos(roll) * math.Cos(pitch),
	}
}

func linear(elapsed float64) [3]float64 {
	return [3]float64{
		0.3 * math.Sin(2*elapsed),
		0.2 * math.Cos(1.5*elapsed),
		0.1 * math.Sin(elapsed),
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
