// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// StatusWait bounds how long /api/sensors waits on a pending availability
// query before reporting it as pending.
const StatusWait = 500 * time.Millisecond

// Dispatch is what the status API needs from the sensors dispatcher.
type Dispatch interface {
	Registered() []sensors.SensorType
	IsAvailable(t sensors.SensorType) (*sensors.Availability, error)
}

// SensorStatus is one entry of the /api/sensors response.
type SensorStatus struct {
	Type         sensors.SensorType `json:"type"`
	Module       string             `json:"module"`
	Registered   bool               `json:"registered"`
	Availability string             `json:"availability,omitempty"` // available, unavailable or pending
	Error        string             `json:"error,omitempty"`
	Settings     *native.Status     `json:"settings,omitempty"`
}

// StatusHandler serves the registration and availability of every sensor
// type. settings may be nil.
func StatusHandler(d Dispatch, settings func() []native.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), StatusWait)
		defer cancel()

		var known []native.Status
		if settings != nil {
			known = settings()
		}

		registered := d.Registered()
		out := make([]SensorStatus, 0, len(sensors.Types()))
		for _, t := range sensors.Types() {
			st := SensorStatus{Type: t, Module: sensors.ModuleName(t)}
			st.Registered = slices.Contains(registered, t)

			if st.Registered {
				st.Availability, st.Error = availability(ctx, d, t)
			}
			for i := range known {
				if known[i].Type == t {
					st.Settings = &known[i]
				}
			}
			out = append(out, st)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

func availability(ctx context.Context, d Dispatch, t sensors.SensorType) (string, string) {
	a, err := d.IsAvailable(t)
	if err != nil {
		return "unavailable", err.Error()
	}
	err = a.Wait(ctx)
	switch {
	case err == nil:
		return "available", ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "pending", ""
	default:
		return "unavailable", err.Error()
	}
}

// NewServer routes /ws to hub and /api/sensors to the status handler.
func NewServer(addr string, hub *Hub, d Dispatch, settings func() []native.Status) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/api/sensors", StatusHandler(d, settings))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
