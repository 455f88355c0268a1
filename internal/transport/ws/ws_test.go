// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

func newTestServer(t *testing.T, d Dispatch, settings func() []native.Status) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(log.New(io.Discard))
	srv := httptest.NewServer(NewServer("", hub, d, settings).Handler)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsEvents(t *testing.T) {
	t.Parallel()

	hub, srv := newTestServer(t, noSensors{}, nil)
	a, b := dial(t, srv), dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, time.Millisecond)

	ev := event.Event{
		Name: "RNSensorsGyroscope",
		Type: sensors.Gyroscope,
		Data: map[string]float64{"x": 0.1, "y": 0, "z": -0.1, "timestamp": 1700000000000},
	}
	require.NoError(t, hub.Emit(ev))

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var got event.Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, ev, got)
	}

	a.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, time.Millisecond)
}

func TestHub_EmitWithoutClients(t *testing.T) {
	t.Parallel()

	hub := NewHub(log.New(io.Discard))
	assert.NoError(t, hub.Emit(event.Event{Type: sensors.Barometer}))
	assert.Zero(t, hub.Clients())
}

func TestStatusHandler(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	host := sensors.Modules{}
	host.Register(sensors.Accelerometer, probeHandle{})
	host.Register(sensors.Barometer, probeHandle{err: errors.New("no BMP")})
	host.Register(sensors.Gravity, probeHandle{block: block})
	d, err := sensors.New(host)
	require.NoError(t, err)

	settings := func() []native.Status {
		return []native.Status{{Type: sensors.Accelerometer, Running: true, IntervalMs: 100}}
	}
	_, srv := newTestServer(t, d, settings)

	resp, err := http.Get(srv.URL + "/api/sensors")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out []SensorStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, len(sensors.Types()))

	byType := map[sensors.SensorType]SensorStatus{}
	for _, st := range out {
		byType[st.Type] = st
	}

	acc := byType[sensors.Accelerometer]
	assert.True(t, acc.Registered)
	assert.Equal(t, "available", acc.Availability)
	assert.Equal(t, "RNSensorsAccelerometer", acc.Module)
	require.NotNil(t, acc.Settings)
	assert.Equal(t, 100, acc.Settings.IntervalMs)

	baro := byType[sensors.Barometer]
	assert.Equal(t, "unavailable", baro.Availability)
	assert.Equal(t, "no BMP", baro.Error)
	assert.Nil(t, baro.Settings)

	assert.Equal(t, "pending", byType[sensors.Gravity].Availability)

	gyro := byType[sensors.Gyroscope]
	assert.False(t, gyro.Registered)
	assert.Empty(t, gyro.Availability)
}

// noSensors is a dispatcher with nothing registered.
type noSensors struct{}

func (noSensors) Registered() []sensors.SensorType { return nil }

func (noSensors) IsAvailable(t sensors.SensorType) (*sensors.Availability, error) {
	return nil, sensors.ErrModuleNotRegistered
}

// probeHandle answers IsAvailable with err, after block is closed if set.
type probeHandle struct {
	err   error
	block chan struct{}
}

func (h probeHandle) IsAvailable(ctx context.Context) error {
	if h.block != nil {
		<-h.block
	}
	return h.err
}

func (h probeHandle) StartUpdates() error                     { return nil }
func (h probeHandle) StopUpdates() error                      { return nil }
func (h probeHandle) SetUpdateInterval(int) error             { return nil }
func (h probeHandle) SetAccelerationXThreshold(float64) error { return nil }
func (h probeHandle) SetAccelerationYThreshold(float64) error { return nil }
func (h probeHandle) SetAccelerationZThreshold(float64) error { return nil }
func (h probeHandle) SetLogLevel(int) error                   { return nil }
