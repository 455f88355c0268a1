// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"

	"github.com/relabs-tech/sensor_bridge/internal/config"
	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/internal/native/mock"
	"github.com/relabs-tech/sensor_bridge/internal/native/periph"
	"github.com/relabs-tech/sensor_bridge/internal/native/serialhub"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// BuildHost creates the native host for the configured backend. Sensors
// emit their readings to emitter.
func BuildHost(cfg *config.Config, emitter event.Emitter) (*native.Host, error) {
	switch cfg.Backend {
	case config.BackendPeriph:
		return periph.NewHost(periph.Options{
			IMUSPIDevice:        cfg.IMUSPIDevice,
			IMUCSPin:            cfg.IMUCSPin,
			AccelRange:          cfg.IMUAccelRange,
			GyroRange:           cfg.IMUGyroRange,
			BMPSPIDevice:        cfg.BMPSPIDevice,
			MagI2CBus:           cfg.MagI2CBus,
			GravityTimeConstant: cfg.GravityTimeConstant,
			Emitter:             emitter,
			MinPeriod:           cfg.MinSamplePeriod,
			Logger:              logging.Component("periph"),
		}), nil

	case config.BackendSerial:
		return serialhub.NewHost(serialhub.Options{
			PortName:     cfg.SerialPort,
			BaudRate:     cfg.SerialBaudRate,
			ProbeTimeout: cfg.SerialProbeTimeout,
			Emitter:      emitter,
			MinPeriod:    cfg.MinSamplePeriod,
			Logger:       logging.Component("serialhub"),
		}), nil

	case config.BackendMock:
		return mock.NewHost(mock.Options{
			Emitter:     emitter,
			Unavailable: cfg.MockUnavailable,
			MinPeriod:   cfg.MinSamplePeriod,
			Logger:      logging.Component("mock"),
		}), nil
	}
	return nil, fmt.Errorf("app: unknown backend %q", cfg.Backend)
}

// Settings is the part of the dispatcher boot settings are applied through.
type Settings interface {
	Registered() []sensors.SensorType
	Start(t sensors.SensorType) error
	SetUpdateInterval(t sensors.SensorType, intervalMs int) error
	SetAccelerationXThreshold(t sensors.SensorType, threshold float64) error
	SetAccelerationYThreshold(t sensors.SensorType, threshold float64) error
	SetAccelerationZThreshold(t sensors.SensorType, threshold float64) error
	SetLogLevel(t sensors.SensorType, level int) error
}

// ApplySettings pushes the configured per sensor settings to the
// registered sensors. Settings for unregistered sensors are skipped.
func ApplySettings(d Settings, settings map[sensors.SensorType]config.SensorSettings) error {
	for _, t := range d.Registered() {
		s, ok := settings[t]
		if !ok {
			continue
		}
		if err := d.SetUpdateInterval(t, s.IntervalMs); err != nil {
			return fmt.Errorf("app: %s interval: %w", t, err)
		}
		if err := d.SetAccelerationXThreshold(t, s.ThresholdX); err != nil {
			return fmt.Errorf("app: %s threshold x: %w", t, err)
		}
		if err := d.SetAccelerationYThreshold(t, s.ThresholdY); err != nil {
			return fmt.Errorf("app: %s threshold y: %w", t, err)
		}
		if err := d.SetAccelerationZThreshold(t, s.ThresholdZ); err != nil {
			return fmt.Errorf("app: %s threshold z: %w", t, err)
		}
		if err := d.SetLogLevel(t, s.LogLevel); err != nil {
			return fmt.Errorf("app: %s log level: %w", t, err)
		}
	}
	return nil
}

// StartSensors starts each of types that is registered and returns the ones
// it started.
func StartSensors(d Settings, types []sensors.SensorType) []sensors.SensorType {
	log := logging.Component("app")
	var started []sensors.SensorType
	for _, t := range types {
		if err := d.Start(t); err != nil {
			log.Warn("sensor not started", "type", t, "err", err)
			continue
		}
		started = append(started, t)
	}
	return started
}
