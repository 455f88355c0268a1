// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package native

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relabs-tech/sensor_bridge/internal/orientation"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Sample is one raw reading as produced by a backend.
//
// Values layout per type:
//   - accelerometer, linearAcceleration, gravity: x, y, z in m/s²
//   - gyroscope: x, y, z in rad/s
//   - magnetometer: x, y, z in µT
//   - barometer: pressure in hPa
//   - orientation: rotation vector x, y, z and optionally w
type Sample struct {
	Values []float64
	Time   time.Time
}

// Value returns Values[i], or 0 when the sample is shorter.
func (s Sample) Value(i int) float64 {
	if i < len(s.Values) {
		return s.Values[i]
	}
	return 0
}

// ErrNoData is returned by a Reader that has nothing new since the last
// Read. The sampling loop skips it silently.
var ErrNoData = errors.New("no new data")

// Reader produces samples for one sensor type.
type Reader interface {
	Read() (Sample, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func() (Sample, error)

func (f ReaderFunc) Read() (Sample, error) {
	return f()
}

// DisplayName is the module name without its common prefix, e.g. "Gyroscope".
func DisplayName(t sensors.SensorType) string {
	name := sensors.ModuleName(t)
	if name == "" {
		return string(t)
	}
	return strings.TrimPrefix(name, "RNSensors")
}

// Payload shapes a sample into the event data for t.
func Payload(t sensors.SensorType, s Sample) (map[string]float64, error) {
	data := make(map[string]float64, 8)

	switch t {
	case sensors.Accelerometer, sensors.LinearAcceleration, sensors.Gravity,
		sensors.Gyroscope, sensors.Magnetometer:
		data["x"] = s.Value(0)
		data["y"] = s.Value(1)
		data["z"] = s.Value(2)

	case sensors.Barometer:
		data["pressure"] = s.Value(0)

	case sensors.Orientation:
		q := orientation.QuaternionFromVector(s.Values)
		yaw, pitch, roll := orientation.Angles(q.RotationMatrix())

		data["qw"] = q.W
		data["qx"] = q.X
		data["qy"] = q.Y
		data["qz"] = q.Z
		data["yaw"] = yaw
		data["pitch"] = pitch
		data["roll"] = roll

	default:
		return nil, fmt.Errorf("sensor type %q not implemented", string(t))
	}

	data["timestamp"] = EpochMillis(s.Time)
	return data, nil
}

// EpochMillis converts t to fractional milliseconds since the Unix epoch.
func EpochMillis(t time.Time) float64 {
	return float64(t.UnixMilli()) + float64(t.Nanosecond()%int(time.Millisecond))/float64(time.Millisecond)
}
