// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Backends.
const (
	BackendPeriph = "periph"
	BackendSerial = "serial"
	BackendMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	Backend  string
	LogLevel string

	// MQTT, disabled when MQTTBroker is empty
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	// Web Server, disabled when 0
	WebServerPort int

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// BMP Hardware
	BMPSPIDevice string

	// Magnetometer Hardware (TLV493D), empty disables
	MagI2CBus string

	// Serial sensor hub
	SerialPort         string
	SerialBaudRate     uint
	SerialProbeTimeout time.Duration

	// Sampling
	MinSamplePeriod     time.Duration
	GravityTimeConstant time.Duration

	// Mock backend
	MockUnavailable []sensors.SensorType

	// Sensors started at boot
	StartSensors []sensors.SensorType

	// Per sensor settings applied at boot
	Sensors map[sensors.SensorType]SensorSettings
}

// SensorSettings are the per sensor knobs, applied through the dispatch
// operations of the same name.
type SensorSettings struct {
	IntervalMs int
	ThresholdX float64
	ThresholdY float64
	ThresholdZ float64
	LogLevel   int
}

// Package-level singleton: InitGlobal sets it once, Get reads it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		Backend:             BackendPeriph,
		LogLevel:            "info",
		MQTTTopicPrefix:     "sensors",
		IMUSPIDevice:        "/dev/spidev0.0",
		IMUCSPin:            "GPIO8",
		BMPSPIDevice:        "/dev/spidev0.1",
		SerialBaudRate:      115200,
		SerialProbeTimeout:  2 * time.Second,
		MinSamplePeriod:     10 * time.Millisecond,
		GravityTimeConstant: 200 * time.Millisecond,
		Sensors:             make(map[sensors.SensorType]SensorSettings),
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r on top of Default. Blank lines and
// lines starting with '#' are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	if strings.HasPrefix(key, "SENSOR_") {
		return c.setSensorValue(key, value)
	}

	switch key {
	case "BACKEND":
		switch value {
		case BackendPeriph, BackendSerial, BackendMock:
			c.Backend = value
		default:
			return fmt.Errorf("BACKEND must be %s, %s or %s, got %q", BackendPeriph, BackendSerial, BackendMock, value)
		}
	case "LOG_LEVEL":
		if _, err := log.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
		}
		c.LogLevel = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC_PREFIX":
		c.MQTTTopicPrefix = strings.TrimSuffix(value, "/")

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", port)
		}
		c.WebServerPort = port

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)

	// BMP Hardware
	case "BMP_SPI_DEVICE":
		c.BMPSPIDevice = value

	// Magnetometer Hardware
	case "MAG_I2C_BUS":
		c.MagI2CBus = value

	// Serial sensor hub
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = uint(rate)
	case "SERIAL_PROBE_TIMEOUT_MS":
		d, err := parseMillis("SERIAL_PROBE_TIMEOUT_MS", value)
		if err != nil {
			return err
		}
		c.SerialProbeTimeout = d

	// Sampling
	case "MIN_SAMPLE_PERIOD_MS":
		d, err := parseMillis("MIN_SAMPLE_PERIOD_MS", value)
		if err != nil {
			return err
		}
		c.MinSamplePeriod = d
	case "GRAVITY_TIME_CONSTANT_MS":
		d, err := parseMillis("GRAVITY_TIME_CONSTANT_MS", value)
		if err != nil {
			return err
		}
		c.GravityTimeConstant = d

	case "MOCK_UNAVAILABLE":
		types, err := parseTypeList("MOCK_UNAVAILABLE", value)
		if err != nil {
			return err
		}
		c.MockUnavailable = types
	case "START_SENSORS":
		if value == "all" {
			c.StartSensors = sensors.Types()
			return nil
		}
		types, err := parseTypeList("START_SENSORS", value)
		if err != nil {
			return err
		}
		c.StartSensors = types

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// setSensorValue handles SENSOR_<TYPE>_<SETTING> keys, e.g.
// SENSOR_LINEAR_ACCELERATION_INTERVAL.
func (c *Config) setSensorValue(key, value string) error {
	rest := strings.TrimPrefix(key, "SENSOR_")
	for _, t := range sensors.Types() {
		prefix := KeyName(t) + "_"
		if !strings.HasPrefix(rest, prefix) {
			continue
		}

		s := c.Sensors[t]
		switch setting := strings.TrimPrefix(rest, prefix); setting {
		case "INTERVAL":
			ms, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			if ms < 0 {
				return fmt.Errorf("%s must be >= 0, got %d", key, ms)
			}
			s.IntervalMs = ms
		case "THRESHOLD_X", "THRESHOLD_Y", "THRESHOLD_Z":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			switch setting {
			case "THRESHOLD_X":
				s.ThresholdX = v
			case "THRESHOLD_Y":
				s.ThresholdY = v
			default:
				s.ThresholdZ = v
			}
		case "LOG_LEVEL":
			level, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			if level < 0 {
				return fmt.Errorf("%s must be >= 0, got %d", key, level)
			}
			s.LogLevel = level
		default:
			return fmt.Errorf("unknown config key: %q", key)
		}
		c.Sensors[t] = s
		return nil
	}
	return fmt.Errorf("unknown config key: %q", key)
}

// KeyName is the upper snake case form of t used in config keys.
func KeyName(t sensors.SensorType) string {
	var b strings.Builder
	for i, r := range string(t) {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func parseMillis(key, value string) (time.Duration, error) {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if ms <= 0 {
		return 0, fmt.Errorf("%s must be > 0, got %d", key, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parseTypeList(key, value string) ([]sensors.SensorType, error) {
	var out []sensors.SensorType
	for _, f := range strings.Split(value, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		t, err := sensors.ParseSensorType(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// validate checks that the selected backend has what it needs.
func (c *Config) validate() error {
	switch c.Backend {
	case BackendPeriph:
		if c.IMUSPIDevice == "" && c.BMPSPIDevice == "" && c.MagI2CBus == "" {
			return fmt.Errorf("IMU_SPI_DEVICE, BMP_SPI_DEVICE or MAG_I2C_BUS is required for the %s backend", BackendPeriph)
		}
		if c.IMUSPIDevice != "" && c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required when IMU_SPI_DEVICE is set")
		}
	case BackendSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for the %s backend", BackendSerial)
		}
		if c.SerialBaudRate == 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required for the %s backend", BackendSerial)
		}
	}
	if c.MQTTBroker != "" && c.MQTTTopicPrefix == "" {
		return fmt.Errorf("MQTT_TOPIC_PREFIX is required when MQTT_BROKER is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
