// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_bridge/internal/config"
	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/native"
	"github.com/relabs-tech/sensor_bridge/internal/transport/mqtt"
	"github.com/relabs-tech/sensor_bridge/internal/transport/ws"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

const shutdownTimeout = 5 * time.Second

// RunDaemon runs the sensor bridge until ctx is cancelled. It fails when the
// backend provides no sensor module at all.
func RunDaemon(ctx context.Context, cfg *config.Config) error {
	return runDaemon(ctx, cfg, nil, func(h *native.Host) (*sensors.Sensors, error) {
		if err := sensors.Init(h); err != nil {
			return nil, err
		}
		return sensors.Default(), nil
	})
}

// runDaemon wires the daemon. extra receives every event on top of the
// configured transports; newDispatch builds the dispatcher over the host.
func runDaemon(ctx context.Context, cfg *config.Config, extra event.Emitter,
	newDispatch func(*native.Host) (*sensors.Sensors, error)) error {
	log := logging.Component("sensord")

	emitters := event.Multi{extra}

	var hub *ws.Hub
	if cfg.WebServerPort != 0 {
		hub = ws.NewHub(logging.Component("ws"))
		emitters = append(emitters, hub)
	}

	var client paho.Client
	if cfg.MQTTBroker != "" {
		var err error
		client, err = mqtt.Connect(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		log.Info("connected to MQTT broker", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)

		emitters = append(emitters, mqtt.NewPublisher(client, cfg.MQTTTopicPrefix))
	}

	host, err := BuildHost(cfg, emitters)
	if err != nil {
		return err
	}
	defer func() {
		if err := host.Close(); err != nil {
			log.Warn("backend shutdown", "err", err)
		}
	}()

	d, err := newDispatch(host)
	if err != nil {
		return fmt.Errorf("sensord: %s backend: %w", cfg.Backend, err)
	}
	log.Info("sensor modules registered", "backend", cfg.Backend, "types", d.Registered())

	if err := ApplySettings(d, cfg.Sensors); err != nil {
		return err
	}

	if client != nil {
		commands := mqtt.NewCommands(client, cfg.MQTTTopicPrefix, d, logging.Component("mqtt"))
		if err := commands.Subscribe(); err != nil {
			return err
		}
	}

	var srv *http.Server
	if hub != nil {
		srv = ws.NewServer(fmt.Sprintf(":%d", cfg.WebServerPort), hub, d, host.Statuses)
		go func() {
			log.Info("web server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("web server stopped", "err", err)
			}
		}()
	}

	started := StartSensors(d, cfg.StartSensors)
	log.Info("sensors started", "types", started)

	<-ctx.Done()
	log.Info("shutting down")

	for _, t := range started {
		if err := d.Stop(t); err != nil {
			log.Warn("stop failed", "type", t, "err", err)
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("web server shutdown", "err", err)
		}
	}
	return nil
}
