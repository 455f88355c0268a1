// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native/mock"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// ConsoleInterval is the update interval of every sensor in the console.
const ConsoleInterval = 100 * time.Millisecond

// RunConsole starts every sensor of a mock host and prints its events to w
// until ctx is cancelled.
func RunConsole(ctx context.Context, w io.Writer) error {
	var mu sync.Mutex
	printer := event.Func(func(ev event.Event) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(w, FormatEvent(ev))
		return err
	})

	host := mock.NewHost(mock.Options{
		Emitter: printer,
		Logger:  logging.Component("mock"),
	})
	defer host.Close()

	d, err := sensors.New(host)
	if err != nil {
		return err
	}

	for _, t := range d.Registered() {
		if err := d.SetUpdateInterval(t, int(ConsoleInterval.Milliseconds())); err != nil {
			return err
		}
		// mock readings can be negative on every axis
		for _, set := range []func(sensors.SensorType, float64) error{
			d.SetAccelerationXThreshold,
			d.SetAccelerationYThreshold,
			d.SetAccelerationZThreshold,
		} {
			if err := set(t, -1e9); err != nil {
				return err
			}
		}
		if err := d.Start(t); err != nil {
			return err
		}
	}

	<-ctx.Done()
	return nil
}

// FormatEvent renders ev on one line for the consoles.
func FormatEvent(ev event.Event) string {
	d := ev.Data
	switch ev.Type {
	case sensors.Barometer:
		return fmt.Sprintf("[%-18s] pressure=%8.2f hPa", ev.Type, d["pressure"])
	case sensors.Orientation:
		return fmt.Sprintf("[%-18s] q=(%6.3f %6.3f %6.3f %6.3f)  yaw=%7.2f pitch=%7.2f roll=%7.2f",
			ev.Type, d["qw"], d["qx"], d["qy"], d["qz"], d["yaw"], d["pitch"], d["roll"])
	default:
		return fmt.Sprintf("[%-18s] x=%8.3f y=%8.3f z=%8.3f", ev.Type, d["x"], d["y"], d["z"])
	}
}
