// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialhub

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Options configures the serial hub backend.
type Options struct {
	PortName     string
	BaudRate     uint
	ProbeTimeout time.Duration

	Emitter   event.Emitter
	MinPeriod time.Duration
	Logger    *log.Logger
	Now       func() time.Time
}

// NewHost opens the serial port and registers a sensor for every type; the
// hub decides which of them are available. When the port cannot be opened
// the host is empty.
func NewHost(opts Options) *native.Host {
	if opts.Logger == nil {
		opts.Logger = logging.Component("serialhub")
	}

	serialOpts := serial.OpenOptions{
		PortName:              opts.PortName,
		BaudRate:              opts.BaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		opts.Logger.Error("cannot open serial port", "port", opts.PortName, "err", err)
		return native.NewHost()
	}
	opts.Logger.Info("serial port opened", "port", opts.PortName, "baud", opts.BaudRate)

	return NewHostWithPort(opts, port)
}

// NewHostWithPort runs the hub over an already open port. Closing the host
// closes the port.
func NewHostWithPort(opts Options, port io.ReadCloser) *native.Host {
	if opts.Logger == nil {
		opts.Logger = logging.Component("serialhub")
	}

	hub := NewHub(opts.ProbeTimeout, opts.Logger, opts.Now)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := hub.Run(port); err != nil {
			opts.Logger.Warn("serial hub stopped", "err", err)
		}
	}()

	h := NewHostWithHub(opts, hub)
	h.OnClose(func() error {
		err := port.Close()
		<-done
		return err
	})
	return h
}

// NewHostWithHub registers a sensor for every type, backed by hub.
func NewHostWithHub(opts Options, hub *Hub) *native.Host {
	h := native.NewHost()
	for _, t := range sensors.Types() {
		t := t
		h.Add(native.New(native.Options{
			Type:      t,
			Reader:    native.ReaderFunc(func() (native.Sample, error) { return hub.Read(t) }),
			Probe:     func(ctx context.Context) error { return hub.Probe(ctx, t) },
			Emitter:   opts.Emitter,
			MinPeriod: opts.MinPeriod,
			Logger:    opts.Logger,
			Now:       opts.Now,
		}))
	}
	return h
}
