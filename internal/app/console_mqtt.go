// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_bridge/internal/config"
	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/internal/transport/mqtt"
)

// RunConsoleMQTT prints the events and availability replies a bridge
// publishes under the configured prefix until ctx is cancelled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, w io.Writer) error {
	log := logging.Component("console")

	clientID := cfg.MQTTClientID
	if clientID == "" {
		clientID = mqtt.DefaultClientID("sensor-console")
	}
	client, err := mqtt.Connect(cfg.MQTTBroker, clientID)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Info("connected to MQTT broker", "broker", cfg.MQTTBroker)

	topic := cfg.MQTTTopicPrefix + "/#"
	token := client.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		line, err := FormatMessage(cfg.MQTTTopicPrefix, msg.Topic(), msg.Payload())
		if err != nil {
			log.Warn("cannot decode message", "topic", msg.Topic(), "err", err)
			return
		}
		if line != "" {
			fmt.Fprintln(w, line)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Info("subscribed", "topic", topic)

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

// FormatMessage renders one message published under prefix. Commands are
// skipped and yield an empty line.
func FormatMessage(prefix, topic string, payload []byte) (string, error) {
	rest := strings.TrimPrefix(topic, prefix+"/")
	switch {
	case rest == "cmd":
		return "", nil
	case strings.HasPrefix(rest, "availability/"):
		var r mqtt.AvailabilityReply
		if err := json.Unmarshal(payload, &r); err != nil {
			return "", err
		}
		if r.Available {
			return fmt.Sprintf("[%-18s] available", r.Type), nil
		}
		return fmt.Sprintf("[%-18s] unavailable: %s", r.Type, r.Error), nil
	default:
		var ev event.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return "", err
		}
		return FormatEvent(ev), nil
	}
}
