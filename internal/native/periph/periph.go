// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package periph is the hardware backend: an MPU9250 IMU and a BMP280
// barometer on SPI plus a TLV493D magnetometer on I²C, driven through
// periph.io.
//
// The IMU serves the accelerometer, gyroscope, gravity, linear acceleration
// and orientation modules. The barometer serves the barometer module and
// the TLV493D the magnetometer module. A device that fails to come up, or is
// not configured, leaves its modules unregistered.
package periph

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/internal/orientation"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Options configures the hardware backend.
type Options struct {
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange byte

	BMPSPIDevice string

	// MagI2CBus names the TLV493D bus. Empty means no magnetometer.
	MagI2CBus string

	GravityTimeConstant time.Duration

	Emitter   event.Emitter
	MinPeriod time.Duration
	Logger    *log.Logger
	Now       func() time.Time
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = logging.Component("periph")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// NewHost opens the configured devices and registers the sensors they
// serve. Devices that fail are logged and skipped, so the host may be empty.
func NewHost(opts Options) *native.Host {
	opts.defaults()

	if _, err := host.Init(); err != nil {
		opts.Logger.Error("periph host init failed", "err", err)
		return native.NewHost()
	}

	var imu IMU
	if opts.IMUSPIDevice != "" {
		dev, err := openIMU(opts.Logger.WithPrefix("IMU"), opts.IMUSPIDevice, opts.IMUCSPin, opts.AccelRange, opts.GyroRange)
		if err != nil {
			opts.Logger.Error("IMU unavailable", "err", err)
		} else {
			imu = dev
		}
	}

	var baro Barometer
	var closers []func() error
	if opts.BMPSPIDevice != "" {
		dev, port, err := openBarometer(opts.BMPSPIDevice)
		if err != nil {
			opts.Logger.Error("barometer unavailable", "err", err)
		} else {
			baro = dev
			closers = append(closers, port.Close, dev.Halt)
			opts.Logger.Info("barometer initialized", "device", opts.BMPSPIDevice)
		}
	}

	var mag Magnetometer
	if opts.MagI2CBus != "" {
		dev, bus, err := openMagnetometer(opts.MagI2CBus)
		if err != nil {
			opts.Logger.Error("magnetometer unavailable", "err", err)
		} else {
			mag = dev
			closers = append(closers, bus.Close, dev.Halt)
			opts.Logger.Info("magnetometer initialized", "bus", opts.MagI2CBus)
		}
	}

	h, err := NewHostWithDevices(opts, Devices{IMU: imu, Barometer: baro, Magnetometer: mag})
	if err != nil {
		opts.Logger.Error("invalid IMU settings", "err", err)
		return native.NewHost()
	}
	for _, c := range closers {
		h.OnClose(c)
	}
	return h
}

// Devices are the opened devices a host is built from. A nil device
// registers nothing.
type Devices struct {
	IMU          IMU
	Barometer    Barometer
	Magnetometer Magnetometer
}

// NewHostWithDevices registers sensors for already opened devices.
func NewHostWithDevices(opts Options, devs Devices) (*native.Host, error) {
	opts.defaults()
	if opts.AccelRange > 3 {
		return nil, fmt.Errorf("periph: accel range must be 0-3, got %d", opts.AccelRange)
	}
	if opts.GyroRange > 3 {
		return nil, fmt.Errorf("periph: gyro range must be 0-3, got %d", opts.GyroRange)
	}

	h := native.NewHost()
	add := func(t sensors.SensorType, r native.Reader, probe func(context.Context) error) {
		h.Add(native.New(native.Options{
			Type:      t,
			Reader:    r,
			Probe:     probe,
			Emitter:   opts.Emitter,
			MinPeriod: opts.MinPeriod,
			Logger:    opts.Logger,
			Now:       opts.Now,
		}))
	}

	if imu := devs.IMU; imu != nil {
		d := newIMUDevice(imu, opts.AccelRange, opts.GyroRange, opts.GravityTimeConstant, opts.Now)
		probe := func(context.Context) error { return d.probe() }
		derived := map[sensors.SensorType]func(imuReading) []float64{
			sensors.Accelerometer:      func(r imuReading) []float64 { return r.accel[:] },
			sensors.Gyroscope:          func(r imuReading) []float64 { return r.gyro[:] },
			sensors.Gravity:            func(r imuReading) []float64 { return r.gravity[:] },
			sensors.LinearAcceleration: func(r imuReading) []float64 { return r.linear[:] },
			sensors.Orientation: func(r imuReading) []float64 {
				return orientation.QuaternionFromPose(r.pose).RotationVector()
			},
		}
		for t, values := range derived {
			values := values
			add(t, native.ReaderFunc(func() (native.Sample, error) {
				r, err := d.read()
				if err != nil {
					return native.Sample{}, err
				}
				return native.Sample{Values: values(r), Time: r.at}, nil
			}), probe)
		}
	}

	if baro := devs.Barometer; baro != nil {
		add(sensors.Barometer, native.ReaderFunc(func() (native.Sample, error) {
			hpa, err := readPressure(baro)
			if err != nil {
				return native.Sample{}, err
			}
			return native.Sample{Values: []float64{hpa}, Time: opts.Now()}, nil
		}), func(context.Context) error {
			_, err := readPressure(baro)
			return err
		})
	}

	if mag := devs.Magnetometer; mag != nil {
		add(sensors.Magnetometer, native.ReaderFunc(func() (native.Sample, error) {
			b, err := readField(mag)
			if err != nil {
				return native.Sample{}, err
			}
			return native.Sample{Values: b[:], Time: opts.Now()}, nil
		}), func(context.Context) error {
			_, err := readField(mag)
			return err
		})
	}

	return h, nil
}
