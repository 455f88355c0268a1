// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want log.Level
	}{
		{-3, log.WarnLevel},
		{0, log.WarnLevel},
		{1, log.InfoLevel},
		{2, log.DebugLevel},
		{7, log.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SensorLevel(tt.in), "level %d", tt.in)
	}
}

func TestSetup(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "warn"))

	Component("imu").Info("hidden")
	Component("imu").Warn("shown", "sensor", "gyroscope")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "imu")
	assert.Contains(t, out, "gyroscope")

	assert.Error(t, Setup(&buf, "loud"))
}
