// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mock

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

func TestValues_Consistent(t *testing.T) {
	t.Parallel()

	for _, elapsed := range []float64{0, 0.5, 3.7, 42} {
		acc, err := Values(sensors.Accelerometer, elapsed)
		require.NoError(t, err)
		grav, err := Values(sensors.Gravity, elapsed)
		require.NoError(t, err)
		lin, err := Values(sensors.LinearAcceleration, elapsed)
		require.NoError(t, err)

		norm := math.Sqrt(grav[0]*grav[0] + grav[1]*grav[1] + grav[2]*grav[2])
		assert.InDelta(t, StandardGravity, norm, 1e-9)
		for i := range acc {
			assert.InDelta(t, grav[i]+lin[i], acc[i], 1e-12)
		}

		rv, err := Values(sensors.Orientation, elapsed)
		require.NoError(t, err)
		require.Len(t, rv, 4)
		qn := rv[0]*rv[0] + rv[1]*rv[1] + rv[2]*rv[2] + rv[3]*rv[3]
		assert.InDelta(t, 1, qn, 1e-9)
		assert.GreaterOrEqual(t, rv[3], 0.0)
	}

	baro, err := Values(sensors.Barometer, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1013.25}, baro)

	_, err = Values(sensors.SensorType("thermometer"), 0)
	assert.ErrorIs(t, err, sensors.ErrUnknownSensorType)
}

func TestNewHost_AllTypesWithUnavailableOnes(t *testing.T) {
	t.Parallel()

	host := NewHost(Options{
		Unavailable: []sensors.SensorType{sensors.Magnetometer},
		Logger:      log.New(io.Discard),
	})
	defer host.Close()

	s, err := sensors.New(host)
	require.NoError(t, err)
	assert.Equal(t, sensors.Types(), s.Registered())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, err := s.IsAvailable(sensors.Magnetometer)
	require.NoError(t, err)
	err = a.Wait(ctx)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Contains(t, err.Error(), "no Magnetometer found")

	a, err = s.IsAvailable(sensors.Barometer)
	require.NoError(t, err)
	assert.NoError(t, a.Wait(ctx))
}

func TestNewHost_EmitsReadings(t *testing.T) {
	t.Parallel()

	rec := &event.Recorder{}
	host := NewHost(Options{
		Emitter:   rec,
		MinPeriod: time.Millisecond,
		Logger:    log.New(io.Discard),
	})
	defer host.Close()

	s, err := sensors.New(host)
	require.NoError(t, err)
	require.NoError(t, s.Start(sensors.Orientation))

	require.Eventually(t, func() bool { return len(rec.Events()) > 0 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(sensors.Orientation))

	ev := rec.Events()[0]
	assert.Equal(t, "RNSensorsOrientation", ev.Name)
	for _, k := range []string{"qw", "qx", "qy", "qz", "yaw", "pitch", "roll", "timestamp"} {
		assert.Contains(t, ev.Data, k)
	}
}
