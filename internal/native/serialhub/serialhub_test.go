// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialhub

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// sentence wraps body with the start delimiter and its checksum.
func sentence(body string) string {
	return "$" + body + "*" + nmea.Checksum(body)
}

func newTestHub(probe time.Duration) *Hub {
	return NewHub(probe, log.New(io.Discard), nil)
}

func TestParseSentences(t *testing.T) {
	t.Parallel()

	p := newSentenceParser()

	s, err := p.Parse(sentence("PRSEN,gyroscope,0.1,-0.2,0.3"))
	require.NoError(t, err)
	r, ok := s.(Reading)
	require.True(t, ok)
	assert.Equal(t, sensors.Gyroscope, r.Sensor)
	assert.Equal(t, []float64{0.1, -0.2, 0.3}, r.Values)

	s, err = p.Parse(sentence("PRSEN,orientation,0,0,0.7071,0.7071"))
	require.NoError(t, err)
	assert.Len(t, s.(Reading).Values, 4)

	s, err = p.Parse(sentence("PRSAV,accelerometer,barometer"))
	require.NoError(t, err)
	assert.Equal(t, []sensors.SensorType{sensors.Accelerometer, sensors.Barometer}, s.(Announce).Sensors)
}

func TestParseSentences_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"bad checksum", "$PRSEN,gyroscope,1,2,3*00"},
		{"unknown type", sentence("PRSEN,thermometer,21.5")},
		{"no values", sentence("PRSEN,barometer")},
		{"too many values", sentence("PRSEN,orientation,1,2,3,4,5")},
		{"not a number", sentence("PRSEN,barometer,high")},
		{"unknown announced type", sentence("PRSAV,accelerometer,sonar")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newSentenceParser().Parse(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestHub_ReadOncePerSentence(t *testing.T) {
	t.Parallel()

	h := newTestHub(0)

	_, err := h.Read(sensors.Barometer)
	assert.ErrorIs(t, err, native.ErrNoData)

	require.NoError(t, h.HandleLine(sentence("PRSEN,barometer,1001.5")+"\r\n"))
	smp, err := h.Read(sensors.Barometer)
	require.NoError(t, err)
	assert.Equal(t, []float64{1001.5}, smp.Values)
	assert.False(t, smp.Time.IsZero())

	_, err = h.Read(sensors.Barometer)
	assert.ErrorIs(t, err, native.ErrNoData)
}

func TestHub_IgnoresForeignLines(t *testing.T) {
	t.Parallel()

	h := newTestHub(0)
	assert.NoError(t, h.HandleLine(""))
	assert.NoError(t, h.HandleLine("booting sensor hub v2"))
	assert.NoError(t, h.HandleLine(sentence("GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W")))

	_, err := h.Read(sensors.Accelerometer)
	assert.ErrorIs(t, err, native.ErrNoData)
}

func TestHub_Probe(t *testing.T) {
	t.Parallel()

	h := newTestHub(20 * time.Millisecond)
	ctx := context.Background()

	assert.ErrorIs(t, h.Probe(ctx, sensors.Magnetometer), ErrNotReported)

	require.NoError(t, h.HandleLine(sentence("PRSAV,magnetometer")))
	assert.NoError(t, h.Probe(ctx, sensors.Magnetometer))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, newTestHub(time.Hour).Probe(cancelled, sensors.Gravity), context.Canceled)
}

func TestHub_ProbeWaitsForFirstReading(t *testing.T) {
	t.Parallel()

	h := newTestHub(time.Second)
	errc := make(chan error, 1)
	go func() { errc <- h.Probe(context.Background(), sensors.Gravity) }()

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, h.HandleLine(sentence("PRSEN,gravity,0,0,9.81")))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("probe did not return after a reading arrived")
	}
}

func TestHub_Run(t *testing.T) {
	t.Parallel()

	h := newTestHub(0)
	input := strings.Join([]string{
		sentence("PRSAV,accelerometer"),
		"garbage",
		"$PRSEN,accelerometer,1,2*FF",
		sentence("PRSEN,accelerometer,0.5,0.25,9.8"),
	}, "\r\n")

	require.NoError(t, h.Run(strings.NewReader(input)))

	smp, err := h.Read(sensors.Accelerometer)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 9.8}, smp.Values)
}

func TestNewHostWithPort(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	rec := &event.Recorder{}
	host := NewHostWithPort(Options{
		Emitter:   rec,
		MinPeriod: time.Millisecond,
		Logger:    log.New(io.Discard),
	}, pr)

	s, err := sensors.New(host)
	require.NoError(t, err)
	assert.Equal(t, sensors.Types(), s.Registered())
	require.NoError(t, s.Start(sensors.Magnetometer))

	go func() {
		_, _ = io.WriteString(pw, sentence("PRSEN,magnetometer,21.5,-3.25,-40")+"\r\n")
	}()

	require.Eventually(t, func() bool { return len(rec.Events()) == 1 }, time.Second, time.Millisecond)
	ev := rec.Events()[0]
	assert.Equal(t, "RNSensorsMagnetometer", ev.Name)
	assert.Equal(t, 21.5, ev.Data["x"])
	assert.Equal(t, -3.25, ev.Data["y"])
	assert.Equal(t, -40.0, ev.Data["z"])

	a, err := s.IsAvailable(sensors.Magnetometer)
	require.NoError(t, err)
	assert.NoError(t, a.Wait(context.Background()))

	require.NoError(t, host.Close())
}
