// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Sensor log levels as accepted by SetLogLevel on a native handle.
const (
	SensorLevelQuiet     = 0 // warnings and errors only
	SensorLevelLifecycle = 1 // start/stop/configuration changes
	SensorLevelReadings  = 2 // every emitted reading
)

// Setup replaces the default logger with one writing to w at the named
// level ("debug", "info", "warn", "error"). An empty level means info.
func Setup(w io.Writer, level string) error {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}
	if w == nil {
		w = os.Stderr
	}

	log.SetDefault(log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	}))
	return nil
}

// Component returns a child of the default logger tagged with name.
func Component(name string) *log.Logger {
	return log.WithPrefix(name)
}

// SensorLevel maps a native handle log level onto a logger level.
func SensorLevel(level int) log.Level {
	switch {
	case level <= SensorLevelQuiet:
		return log.WarnLevel
	case level == SensorLevelLifecycle:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}
