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
	"sync"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

// MQTTOptions configures the mqtt bridge.
type MQTTOptions struct {
	BrokerAddress string
	ClientID      string
	TopicPrefix   string
}

// Set opens bridges on first use and closes them together.
type Set struct {
	log     zerolog.Logger
	mqtt    MQTTOptions
	mutex   sync.Mutex
	bridges map[string]API
}

// NewSet creates an empty set of bridges.
func NewSet(log zerolog.Logger, mqtt MQTTOptions) *Set {
	return &Set{
		log:     log.With().Str("component", "bridges").Logger(),
		mqtt:    mqtt,
		bridges: make(map[string]API),
	}
}

// Add registers an already opened bridge under its name.
func (s *Set) Add(b API) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.bridges[b.Name()] = b
}

// Get returns the bridge with the given name, opening it when needed.
// The chip is only used by the gpiocdev bridge.
func (s *Set) Get(name, chip string) (API, error) {
	key := name
	if name == "gpiocdev" {
		key = name + ":" + chip
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if b, found := s.bridges[key]; found {
		return b, nil
	}
	b, err := s.open(name, chip)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("bridge", key).Msg("Opened bridge")
	s.bridges[key] = b
	return b, nil
}

func (s *Set) open(name, chip string) (API, error) {
	switch name {
	case "virtual":
		return NewVirtualBridge(), nil
	case "rpi":
		return NewRaspberryPiBridge(), nil
	case "periph":
		return NewPeriphBridge()
	case "gpiocdev":
		return NewGPIOCDevBridge(chip)
	case "mqtt":
		if s.mqtt.BrokerAddress == "" {
			return nil, errors.Errorf("mqtt bridge requires a broker address")
		}
		return NewMQTTBridge(s.log, s.mqtt.BrokerAddress, s.mqtt.ClientID, s.mqtt.TopicPrefix)
	default:
		return nil, errors.Wrapf(ErrUnknownBridge, "'%s'", name)
	}
}

// Input opens an input pin on the given bridge.
func (s *Set) Input(bridgeName, chip, pin string) (hal.WaitableInputPin, error) {
	b, err := s.Get(bridgeName, chip)
	if err != nil {
		return nil, err
	}
	p, err := b.Input(pin)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: input pin '%s'", bridgeName, pin)
	}
	pinsOpenedTotal.WithLabelValues(bridgeName, "input").Inc()
	return p, nil
}

// Output opens an output pin on the given bridge.
func (s *Set) Output(bridgeName, chip, pin string, initial hal.Level) (hal.StatefulOutputPin, error) {
	b, err := s.Get(bridgeName, chip)
	if err != nil {
		return nil, err
	}
	p, err := b.Output(pin, initial)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: output pin '%s'", bridgeName, pin)
	}
	pinsOpenedTotal.WithLabelValues(bridgeName, "output").Inc()
	return p, nil
}

// Close closes all bridges.
func (s *Set) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var ae aerr.AggregateError
	for key, b := range s.bridges {
		ae.Add(errors.Wrapf(b.Close(), "close bridge '%s'", key))
	}
	s.bridges = make(map[string]API)
	return ae.AsError()
}
