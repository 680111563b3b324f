// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package bridge

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/SwitchHal/pkg/hal"
	"github.com/binkynet/SwitchHal/pkg/util"
)

const (
	mqttConnectTimeout = time.Second * 10
)

// mqttBridge maps pins onto MQTT topics.
// The level of pin N is received on <prefix>pinN/state,
// output levels are sent to <prefix>pinN/command.
type mqttBridge struct {
	log         zerolog.Logger
	mutex       sync.Mutex
	client      mqttapi.Client
	topicPrefix string
	states      map[string]string
	inputs      map[string]*mqttInputPin
	outputs     map[string]*mqttOutputPin
}

// NewMQTTBridge implements a bridge whose pins live on another device that
// talks MQTT.
func NewMQTTBridge(log zerolog.Logger, brokerAddress, clientID, topicPrefix string) (API, error) {
	b := newMQTTBridge(log, topicPrefix)
	opts := util.NewMQTTClientOptions(brokerAddress, clientID+"-bridge")
	opts.SetOnConnectHandler(func(c mqttapi.Client) {
		b.log.Debug().Msg("Connected to MQTT")
		if err := b.subscribe(c); err != nil {
			b.log.Error().Err(err).Msg("Subscribe failed")
			c.Disconnect(500)
		}
	})
	client := mqttapi.NewClient(opts)
	b.client = client
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		client.Disconnect(0)
		return nil, errors.Errorf("timeout connecting to mqtt broker '%s'", brokerAddress)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to mqtt")
	}
	return b, nil
}

func newMQTTBridge(log zerolog.Logger, topicPrefix string) *mqttBridge {
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}
	return &mqttBridge{
		log:         log.With().Str("component", "mqtt-bridge").Logger(),
		topicPrefix: topicPrefix,
		states:      make(map[string]string),
		inputs:      make(map[string]*mqttInputPin),
		outputs:     make(map[string]*mqttOutputPin),
	}
}

// Name returns "mqtt".
func (b *mqttBridge) Name() string {
	return "mqtt"
}

func (b *mqttBridge) subscribe(c mqttapi.Client) error {
	topic := b.topicPrefix + "+/state"
	if token := c.Subscribe(topic, 0, b.onMessage); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "failed to subscribe to '%s'", topic)
	}
	b.log.Debug().Str("topic", topic).Msg("Subscribed to MQTT topic")
	return nil
}

func (b *mqttBridge) stateTopic(pin string) string {
	return fmt.Sprintf("%spin%s/state", b.topicPrefix, pin)
}

func (b *mqttBridge) commandTopic(pin string) string {
	return fmt.Sprintf("%spin%s/command", b.topicPrefix, pin)
}

// Receive messages
func (b *mqttBridge) onMessage(client mqttapi.Client, msg mqttapi.Message) {
	topic := strings.TrimPrefix(msg.Topic(), b.topicPrefix)
	if !strings.HasPrefix(topic, "pin") || !strings.HasSuffix(topic, "/state") {
		// Not a valid message
		return
	}
	pin := strings.TrimSuffix(strings.TrimPrefix(topic, "pin"), "/state")

	b.mutex.Lock()
	b.states[pin] = string(msg.Payload())
	ip := b.inputs[pin]
	b.mutex.Unlock()

	if ip != nil {
		ip.wakers.wakeAll()
	}
}

// readState returns the last level received for the given pin.
func (b *mqttBridge) readState(pin string) (bool, error) {
	b.mutex.Lock()
	state, found := b.states[pin]
	b.mutex.Unlock()

	if !found {
		return false, errors.Wrapf(ErrNoState, "pin %s", pin)
	}
	value, err := util.ParseBool(state)
	if err != nil {
		return false, errors.Wrapf(err, "pin %s", pin)
	}
	return value, nil
}

// Input returns the pin that follows the state topic of the given pin.
func (b *mqttBridge) Input(pin string) (hal.WaitableInputPin, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if ip, found := b.inputs[pin]; found {
		return ip, nil
	}
	ip := &mqttInputPin{bridge: b, pin: pin}
	ip.LevelWaiter = newLevelWaiter(ip.IsHigh, &ip.wakers)
	b.inputs[pin] = ip
	b.log.Debug().Str("topic", b.stateTopic(pin)).Msg("Opened input pin")
	return ip, nil
}

// Output returns the pin that publishes to the command topic of the
// given pin.
func (b *mqttBridge) Output(pin string, initial hal.Level) (hal.StatefulOutputPin, error) {
	b.mutex.Lock()
	op, found := b.outputs[pin]
	if !found {
		op = &mqttOutputPin{bridge: b, pin: pin}
		b.outputs[pin] = op
	}
	b.mutex.Unlock()

	if err := hal.Set(op, initial); err != nil {
		return nil, err
	}
	return op, nil
}

// Close disconnects from the broker.
func (b *mqttBridge) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.client != nil {
		b.client.Disconnect(250)
		b.client = nil
	}
	return nil
}

// publish sends the given level as retained command.
func (b *mqttBridge) publish(pin string, level hal.Level) error {
	b.mutex.Lock()
	client := b.client
	b.mutex.Unlock()
	if client == nil {
		return errors.Errorf("mqtt bridge closed")
	}

	topic := b.commandTopic(pin)
	payload := util.FormatBool(bool(level))
	retain := true
	token := client.Publish(topic, 0, retain, payload)
	if !token.WaitTimeout(util.MQTTPublishTimeout) {
		b.log.Error().Err(token.Error()).
			Str("topic", topic).
			Str("payload", payload).
			Msg("failed to deliver MQTT command in time")
		return errors.Wrapf(ErrPublishTimeout, "topic '%s'", topic)
	}
	return maskAny(token.Error())
}

type mqttInputPin struct {
	hal.LevelWaiter
	bridge *mqttBridge
	pin    string
	wakers wakeList
}

// IsHigh returns the last received level.
func (ip *mqttInputPin) IsHigh() (bool, error) {
	return ip.bridge.readState(ip.pin)
}

// IsLow returns the last received level.
func (ip *mqttInputPin) IsLow() (bool, error) {
	return lowOf(ip.IsHigh())
}

type mqttOutputPin struct {
	mutex  sync.Mutex
	bridge *mqttBridge
	pin    string
	level  hal.Level
}

// SetLow sends an OFF command.
func (op *mqttOutputPin) SetLow() error {
	return op.write(hal.Low)
}

// SetHigh sends an ON command.
func (op *mqttOutputPin) SetHigh() error {
	return op.write(hal.High)
}

// IsSetHigh returns true when the last command was ON.
func (op *mqttOutputPin) IsSetHigh() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.level == hal.High, nil
}

// IsSetLow returns true when the last command was OFF.
func (op *mqttOutputPin) IsSetLow() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.level == hal.Low, nil
}

// Toggle sends the opposite of the last command.
func (op *mqttOutputPin) Toggle() error {
	return hal.Toggle(op)
}

func (op *mqttOutputPin) write(level hal.Level) error {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if err := op.bridge.publish(op.pin, level); err != nil {
		return err
	}
	op.level = level
	return nil
}
