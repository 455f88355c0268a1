// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// SensorType identifies which native handle an operation addresses.
type SensorType string

const (
	Accelerometer      SensorType = "accelerometer"
	LinearAcceleration SensorType = "linearAcceleration"
	Gyroscope          SensorType = "gyroscope"
	Magnetometer       SensorType = "magnetometer"
	Barometer          SensorType = "barometer"
	Orientation        SensorType = "orientation"
	Gravity            SensorType = "gravity"
)

// SensorTypes is the lookup form of the sensor type constants.
var SensorTypes = struct {
	Accelerometer      SensorType
	LinearAcceleration SensorType
	Gyroscope          SensorType
	Magnetometer       SensorType
	Barometer          SensorType
	Orientation        SensorType
	Gravity            SensorType
}{
	Accelerometer:      Accelerometer,
	LinearAcceleration: LinearAcceleration,
	Gyroscope:          Gyroscope,
	Magnetometer:       Magnetometer,
	Barometer:          Barometer,
	Orientation:        Orientation,
	Gravity:            Gravity,
}

// moduleNames maps each sensor type to the name its native module is
// registered under. The module name doubles as the event name.
var moduleNames = map[SensorType]string{
	Accelerometer:      "RNSensorsAccelerometer",
	LinearAcceleration: "RNSensorsLinearAcceleration",
	Gyroscope:          "RNSensorsGyroscope",
	Magnetometer:       "RNSensorsMagnetometer",
	Barometer:          "RNSensorsBarometer",
	Orientation:        "RNSensorsOrientation",
	Gravity:            "RNSensorsGravity",
}

// Types returns every known sensor type in a stable order.
func Types() []SensorType {
	return []SensorType{
		Accelerometer,
		LinearAcceleration,
		Gyroscope,
		Magnetometer,
		Barometer,
		Orientation,
		Gravity,
	}
}

// ModuleName returns the native module name for t, or "" for unknown types.
func ModuleName(t SensorType) string {
	return moduleNames[t]
}

// Known reports whether t is one of the fixed sensor types.
func (t SensorType) Known() bool {
	_, ok := moduleNames[t]
	return ok
}

func (t SensorType) String() string {
	return string(t)
}

// ParseSensorType converts s into a SensorType, rejecting unknown names.
func ParseSensorType(s string) (SensorType, error) {
	t := SensorType(s)
	if !t.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSensorType, s)
	}
	return t, nil
}
