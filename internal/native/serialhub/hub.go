// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package serialhub is the backend for a sensor hub on a serial line. The
// hub streams NMEA style proprietary sentences: $PRSAV announces which
// sensors it carries and $PRSEN carries one reading.
package serialhub

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/charmbracelet/log"

	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// DefaultProbeTimeout bounds how long IsAvailable waits for the hub to
// mention a sensor.
const DefaultProbeTimeout = 2 * time.Second

// ErrNotReported means the hub neither announced the sensor nor sent a
// reading for it before the probe timed out.
var ErrNotReported = errors.New("not reported by sensor hub")

// Hub tracks what the serial hub reports: the latest reading per sensor
// and the sensors it has announced.
type Hub struct {
	parser       *nmea.SentenceParser
	probeTimeout time.Duration
	logger       *log.Logger
	now          func() time.Time

	mu        sync.RWMutex
	latest    map[sensors.SensorType]native.Sample
	fresh     map[sensors.SensorType]bool
	announced map[sensors.SensorType]bool
	changed   chan struct{} // closed and replaced on every update
}

// NewHub creates an empty Hub. Feed it with Run or HandleLine.
func NewHub(probeTimeout time.Duration, logger *log.Logger, now func() time.Time) *Hub {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = logging.Component("serialhub")
	}
	if now == nil {
		now = time.Now
	}
	return &Hub{
		parser:       newSentenceParser(),
		probeTimeout: probeTimeout,
		logger:       logger,
		now:          now,
		latest:       make(map[sensors.SensorType]native.Sample),
		fresh:        make(map[sensors.SensorType]bool),
		announced:    make(map[sensors.SensorType]bool),
		changed:      make(chan struct{}),
	}
}

// Run reads sentences from r until it fails or reaches EOF. Lines that do
// not parse are logged and skipped.
func (h *Hub) Run(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if perr := h.HandleLine(line); perr != nil {
				// noisy lines and partial sentences are expected on a live port
				h.logger.Debug("skipping line", "err", perr, "line", strings.TrimSpace(line))
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("serialhub: read: %w", err)
		}
	}
}

// HandleLine parses one line. Blank lines and lines that are not sentences
// are ignored.
func (h *Hub) HandleLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return nil
	}

	sentence, err := h.parser.Parse(line)
	if err != nil {
		return err
	}

	switch s := sentence.(type) {
	case Reading:
		h.update(func() {
			h.latest[s.Sensor] = native.Sample{Values: s.Values, Time: h.now()}
			h.fresh[s.Sensor] = true
		})
	case Announce:
		h.update(func() {
			for _, t := range s.Sensors {
				h.announced[t] = true
			}
		})
		h.logger.Info("hub announced sensors", "sensors", s.Sensors)
	default:
		// standard sentences (GPS and friends) share the line, not ours
	}
	return nil
}

func (h *Hub) update(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
	close(h.changed)
	h.changed = make(chan struct{})
}

// Read returns the latest reading for t once. Until a newer one arrives it
// returns native.ErrNoData.
func (h *Hub) Read(t sensors.SensorType) (native.Sample, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.fresh[t] {
		return native.Sample{}, native.ErrNoData
	}
	h.fresh[t] = false
	return h.latest[t], nil
}

// Probe succeeds once the hub has announced t or sent a reading for it. It
// waits up to the probe timeout for that to happen.
func (h *Hub) Probe(ctx context.Context, t sensors.SensorType) error {
	timer := time.NewTimer(h.probeTimeout)
	defer timer.Stop()

	for {
		h.mu.RLock()
		_, seen := h.latest[t]
		ok := seen || h.announced[t]
		changed := h.changed
		h.mu.RUnlock()

		if ok {
			return nil
		}

		select {
		case <-changed:
		case <-timer.C:
			return ErrNotReported
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
