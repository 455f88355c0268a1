// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorTypes_LookupMatchesConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Accelerometer, SensorTypes.Accelerometer)
	assert.Equal(t, LinearAcceleration, SensorTypes.LinearAcceleration)
	assert.Equal(t, Gyroscope, SensorTypes.Gyroscope)
	assert.Equal(t, Magnetometer, SensorTypes.Magnetometer)
	assert.Equal(t, Barometer, SensorTypes.Barometer)
	assert.Equal(t, Orientation, SensorTypes.Orientation)
	assert.Equal(t, Gravity, SensorTypes.Gravity)

	assert.Equal(t, "linearAcceleration", string(SensorTypes.LinearAcceleration))
}

func TestModuleNames(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, typ := range Types() {
		name := ModuleName(typ)
		require.NotEmpty(t, name, typ)
		assert.False(t, seen[name], "duplicate module name %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, 7)
	assert.Equal(t, "RNSensorsGyroscope", ModuleName(Gyroscope))
	assert.Empty(t, ModuleName("thermometer"))
}

func TestParseSensorType(t *testing.T) {
	t.Parallel()

	typ, err := ParseSensorType("gravity")
	require.NoError(t, err)
	assert.Equal(t, Gravity, typ)

	_, err = ParseSensorType("Gravity")
	assert.ErrorIs(t, err, ErrUnknownSensorType)
}
