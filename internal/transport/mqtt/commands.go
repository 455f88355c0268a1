// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_bridge/internal/logging"
	"github.com/relabs-tech/sensor_bridge/sensors"
)

// AvailabilityTimeout bounds how long an isAvailable command waits for the
// native answer before replying.
const AvailabilityTimeout = 5 * time.Second

// Command is a control message received on the command topic.
type Command struct {
	Op    string  `json:"op"`
	Type  string  `json:"type"`
	Value float64 `json:"value,omitempty"`
}

// AvailabilityReply is published in answer to an isAvailable command.
// Pending replies are not retained; ask again for the outcome.
type AvailabilityReply struct {
	Type      sensors.SensorType `json:"type"`
	Available bool               `json:"available"`
	Pending   bool               `json:"pending,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Dispatcher is the set of sensor operations commands can drive.
// *sensors.Sensors implements it.
type Dispatcher interface {
	Start(t sensors.SensorType) error
	Stop(t sensors.SensorType) error
	IsAvailable(t sensors.SensorType) (*sensors.Availability, error)
	SetUpdateInterval(t sensors.SensorType, intervalMs int) error
	SetAccelerationXThreshold(t sensors.SensorType, threshold float64) error
	SetAccelerationYThreshold(t sensors.SensorType, threshold float64) error
	SetAccelerationZThreshold(t sensors.SensorType, threshold float64) error
	SetLogLevel(t sensors.SensorType, level int) error
}

var _ Dispatcher = (*sensors.Sensors)(nil)

// Commands subscribes to the command topic and forwards commands to a
// Dispatcher.
type Commands struct {
	client      Client
	prefix      string
	sensors     Dispatcher
	logger      *log.Logger
	availWithin time.Duration
}

func NewCommands(client Client, prefix string, d Dispatcher, logger *log.Logger) *Commands {
	if logger == nil {
		logger = logging.Component("mqtt")
	}
	return &Commands{client: client, prefix: prefix, sensors: d, logger: logger, availWithin: AvailabilityTimeout}
}

// Subscribe starts listening on the command topic.
func (c *Commands) Subscribe() error {
	topic := CommandTopic(c.prefix)
	token := c.client.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		if err := c.Handle(msg.Payload()); err != nil {
			c.logger.Warn("command failed", "err", err)
		}
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: subscribe %s: %w", topic, err)
	}
	c.logger.Info("listening for commands", "topic", topic)
	return nil
}

// Handle decodes and runs one command.
func (c *Commands) Handle(payload []byte) error {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("mqtt: decode command: %w", err)
	}

	t, err := sensors.ParseSensorType(cmd.Type)
	if err != nil {
		return fmt.Errorf("mqtt: %s: %w", cmd.Op, err)
	}

	c.logger.Debug("command", "op", cmd.Op, "type", t, "value", cmd.Value)

	switch cmd.Op {
	case "start":
		err = c.sensors.Start(t)
	case "stop":
		err = c.sensors.Stop(t)
	case "setUpdateInterval":
		err = c.sensors.SetUpdateInterval(t, int(cmd.Value))
	case "setAccelerationXThreshold":
		err = c.sensors.SetAccelerationXThreshold(t, cmd.Value)
	case "setAccelerationYThreshold":
		err = c.sensors.SetAccelerationYThreshold(t, cmd.Value)
	case "setAccelerationZThreshold":
		err = c.sensors.SetAccelerationZThreshold(t, cmd.Value)
	case "setLogLevel":
		err = c.sensors.SetLogLevel(t, int(cmd.Value))
	case "isAvailable":
		var a *sensors.Availability
		a, err = c.sensors.IsAvailable(t)
		if err == nil {
			go c.replyAvailability(t, a)
		}
	default:
		return fmt.Errorf("mqtt: unknown command %q", cmd.Op)
	}

	if err != nil {
		return fmt.Errorf("mqtt: %s %s: %w", cmd.Op, t, err)
	}
	return nil
}

func (c *Commands) replyAvailability(t sensors.SensorType, a *sensors.Availability) {
	ctx, cancel := context.WithTimeout(context.Background(), c.availWithin)
	defer cancel()

	reply := AvailabilityReply{Type: t, Available: true}
	retained := true
	switch err := a.Wait(ctx); {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		reply.Available = false
		reply.Pending = true
		retained = false
	default:
		reply.Available = false
		reply.Error = err.Error()
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		c.logger.Error("marshal availability reply", "err", err)
		return
	}
	if err := publish(c.client, AvailabilityTopic(c.prefix, t), retained, payload); err != nil {
		c.logger.Warn("availability reply failed", "err", err)
	}
}
