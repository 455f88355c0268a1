// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mqtt carries sensor events and control commands over MQTT.
//
// Topics, relative to a configurable prefix:
//
//	<prefix>/<sensorType>              sensor events (JSON event.Event)
//	<prefix>/cmd                       commands (JSON Command)
//	<prefix>/availability/<sensorType> replies to isAvailable commands
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/sensor_bridge/internal/event"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// PublishTimeout bounds how long Emit waits for the broker.
const PublishTimeout = 2 * time.Second

// Client is the part of paho.Client this package uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Connect dials broker. An empty clientID gets a random one, so several
// bridges can share a broker.
func Connect(broker, clientID string) (paho.Client, error) {
	if clientID == "" {
		clientID = DefaultClientID("sensor-bridge")
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", broker, token.Error())
	}
	return client, nil
}

// DefaultClientID returns prefix followed by a random suffix.
func DefaultClientID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// EventTopic is the topic events of type t are published on.
func EventTopic(prefix string, t sensors.SensorType) string {
	return prefix + "/" + string(t)
}

// CommandTopic is the topic commands are received on.
func CommandTopic(prefix string) string {
	return prefix + "/cmd"
}

// AvailabilityTopic is the topic isAvailable replies for t are published on.
func AvailabilityTopic(prefix string, t sensors.SensorType) string {
	return prefix + "/availability/" + string(t)
}

// Publisher is an event.Emitter that publishes events as JSON.
type Publisher struct {
	client Client
	prefix string
}

var _ event.Emitter = (*Publisher)(nil)

func NewPublisher(client Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Emit publishes ev on its sensor type topic.
func (p *Publisher) Emit(ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("mqtt: marshal %s event: %w", ev.Type, err)
	}
	return publish(p.client, EventTopic(p.prefix, ev.Type), false, payload)
}

func publish(client Client, topic string, retained bool, payload []byte) error {
	token := client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return fmt.Errorf("mqtt: publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", topic, err)
	}
	return nil
}
