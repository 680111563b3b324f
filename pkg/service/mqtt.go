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

package service

import (
	"context"
	"strings"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/util"
)

const (
	stateTopicSuffix   = "/state"
	commandTopicSuffix = "/set"
	logsTopic          = "logs"
)

// runMQTT publishes state changes to <prefix><name>/state and executes
// commands received on <prefix><name>/set until the context is canceled.
func (s *service) runMQTT(ctx context.Context) error {
	log := s.Logger.With().Str("component", "mqtt").Logger()
	client := s.MQTTClient
	injected := client != nil
	if !injected {
		opts := util.NewMQTTClientOptions(s.MQTT.Broker, s.MQTT.ClientID)
		opts.SetOnConnectHandler(func(c mqttapi.Client) {
			log.Debug().Msg("Connected to MQTT")
			if err := s.subscribeCommands(c); err != nil {
				log.Error().Err(err).Msg("Subscribe failed")
				c.Disconnect(500)
				return
			}
			s.publishAll(c)
		})
		client = mqttapi.NewClient(opts)
	}

	// Listen for changes before the initial publish, so none are missed.
	cancel := s.Subscribe(func(st Status) {
		s.publishState(client, st.Name)
	})
	defer cancel()

	token := client.Connect()
	if injected {
		if token.Wait() && token.Error() != nil {
			return errors.Wrap(token.Error(), "failed to connect to mqtt")
		}
		if err := s.subscribeCommands(client); err != nil {
			return err
		}
		s.publishAll(client)
	} else {
		// The client keeps retrying until connected.
		go func() {
			if token.Wait() && token.Error() != nil {
				log.Error().Err(token.Error()).Msg("failed to connect to mqtt")
			}
		}()
	}
	defer client.Disconnect(250)

	if s.LogWriter != nil && s.MQTT.PublishLogs {
		s.LogWriter.SetDestination(s.MQTT.TopicPrefix+logsTopic, client)
		s.LogWriter.Enable(true)
		defer s.LogWriter.Enable(false)
	}

	<-ctx.Done()
	return nil
}

func (s *service) subscribeCommands(c mqttapi.Client) error {
	topic := s.MQTT.TopicPrefix + "+" + commandTopicSuffix
	if token := c.Subscribe(topic, 0, s.onCommand); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "failed to subscribe to '%s'", topic)
	}
	s.Logger.Debug().Str("topic", topic).Msg("Subscribed to MQTT topic")
	return nil
}

// onCommand executes a command message.
func (s *service) onCommand(client mqttapi.Client, msg mqttapi.Message) {
	name := strings.TrimPrefix(msg.Topic(), s.MQTT.TopicPrefix)
	if !strings.HasSuffix(name, commandTopicSuffix) {
		// Not a valid message
		return
	}
	name = strings.TrimSuffix(name, commandTopicSuffix)
	mqttCommandsReceivedTotal.Inc()

	log := s.Logger.With().Str("name", name).Str("payload", string(msg.Payload())).Logger()
	action, err := ParseAction(string(msg.Payload()))
	if err != nil {
		log.Warn().Err(err).Msg("Invalid MQTT command")
		return
	}
	if _, err := s.Execute(name, action); err != nil {
		log.Warn().Err(err).Msg("MQTT command failed")
	}
}

// publishAll publishes the state of every switch with a known state.
func (s *service) publishAll(c mqttapi.Client) {
	for _, e := range s.ordered {
		s.publishState(c, e.conf.Name)
	}
}

// publishState publishes the current state of the switch with given name.
// Changes are delivered concurrently, so the state is read under a lock
// to make the last retained message the latest state.
func (s *service) publishState(c mqttapi.Client, name string) {
	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()

	st, err := s.Get(name)
	if err != nil {
		return
	}
	value, known := st.IsSet()
	if !known {
		return
	}
	topic := s.MQTT.TopicPrefix + name + stateTopicSuffix
	payload := util.FormatBool(value)
	retain := true
	token := c.Publish(topic, 0, retain, payload)
	if !token.WaitTimeout(util.MQTTPublishTimeout) {
		s.Logger.Error().Err(token.Error()).
			Str("topic", topic).
			Str("payload", payload).
			Msg("failed to deliver MQTT state in time")
	}
}
