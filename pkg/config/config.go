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

package config

import (
	"fmt"
	"os"
	"strings"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/binkynet/SwitchHal/pkg/switches"
)

var (
	maskAny = errors.WithStack
)

// Kind of a switch.
type Kind string

const (
	// KindInput is a switch that is read (button, sensor).
	KindInput Kind = "input"
	// KindOutput is a switch that is driven (relay, LED).
	KindOutput Kind = "output"
)

// Names of the supported bridges.
const (
	BridgeVirtual  = "virtual"
	BridgeRPI      = "rpi"
	BridgePeriph   = "periph"
	BridgeGPIOCDev = "gpiocdev"
	BridgeMQTT     = "mqtt"
	// BridgeAuto is replaced by the bridge detected for the host.
	BridgeAuto     = "auto"

	// DefaultChip is the GPIO chip used by the gpiocdev bridge when none is set.
	DefaultChip = "gpiochip0"
)

// Config is the content of a switch layout file.
type Config struct {
	MQTT     MQTT     `yaml:"mqtt"`
	Switches []Switch `yaml:"switches"`
}

// MQTT holds the broker settings used by the mqtt bridge and
// the state / command channel of the service.
type MQTT struct {
	// Broker address, e.g. tcp://localhost:1883.
	// When empty, MQTT is disabled.
	Broker      string `yaml:"broker,omitempty"`
	ClientID    string `yaml:"clientID,omitempty"`
	TopicPrefix string `yaml:"topicPrefix,omitempty"`
	// PublishLogs forwards all log lines to <topicPrefix>logs.
	PublishLogs bool `yaml:"publishLogs,omitempty"`
}

// Enabled returns true when a broker is configured.
func (m MQTT) Enabled() bool {
	return m.Broker != ""
}

// Switch describes a single named switch.
type Switch struct {
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	Polarity string `yaml:"polarity,omitempty"`
	Bridge   string `yaml:"bridge,omitempty"`
	Pin      string `yaml:"pin"`
	// Initial state of an output: on | off
	Initial string `yaml:"initial,omitempty"`
	// GPIO chip, used by the gpiocdev bridge only
	Chip string `yaml:"chip,omitempty"`
}

// Load reads and parses the file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config '%s'", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config '%s'", path)
	}
	return cfg, nil
}

// Parse decodes the given YAML, fills in defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, maskAny(err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "switchhal"
	}
	if c.MQTT.TopicPrefix != "" && !strings.HasSuffix(c.MQTT.TopicPrefix, "/") {
		c.MQTT.TopicPrefix += "/"
	}
	for i := range c.Switches {
		sw := &c.Switches[i]
		if sw.Polarity == "" {
			sw.Polarity = switches.ActiveHigh{}.String()
		}
		if sw.Bridge == "" {
			sw.Bridge = BridgeVirtual
		}
		if sw.Bridge == BridgeGPIOCDev && sw.Chip == "" {
			sw.Chip = DefaultChip
		}
		if sw.Kind == KindOutput && sw.Initial == "" {
			sw.Initial = "off"
		}
	}
}

// Validate checks the configuration and returns all problems found.
func (c Config) Validate() error {
	var ae aerr.AggregateError
	names := make(map[string]struct{})
	for i, sw := range c.Switches {
		if sw.Name == "" {
			ae.Add(fmt.Errorf("switch %d: name is empty", i))
		} else if _, found := names[sw.Name]; found {
			ae.Add(fmt.Errorf("switch %d: duplicate name '%s'", i, sw.Name))
		}
		names[sw.Name] = struct{}{}
		if err := sw.Validate(); err != nil {
			ae.Add(fmt.Errorf("switch '%s': %w", sw.Name, err))
		}
		if sw.Bridge == BridgeMQTT && !c.MQTT.Enabled() {
			ae.Add(fmt.Errorf("switch '%s': mqtt bridge requires a broker", sw.Name))
		}
	}
	if err := ae.AsError(); err != nil {
		return maskAny(err)
	}
	return nil
}

// ResolveBridges replaces the auto bridge of all switches with the given
// detected bridge.
func (c *Config) ResolveBridges(detected string) {
	for i := range c.Switches {
		sw := &c.Switches[i]
		if sw.Bridge == BridgeAuto {
			sw.Bridge = detected
			if detected == BridgeGPIOCDev && sw.Chip == "" {
				sw.Chip = DefaultChip
			}
		}
	}
}

// Validate checks a single switch.
func (s Switch) Validate() error {
	switch s.Kind {
	case KindInput, KindOutput:
	default:
		return fmt.Errorf("unknown kind '%s'", s.Kind)
	}
	if _, err := s.ParsePolarity(); err != nil {
		return err
	}
	switch s.Bridge {
	case BridgeVirtual, BridgeRPI, BridgePeriph, BridgeGPIOCDev, BridgeMQTT, BridgeAuto:
	default:
		return fmt.Errorf("unknown bridge '%s'", s.Bridge)
	}
	if s.Pin == "" {
		return fmt.Errorf("pin is empty")
	}
	if s.Kind == KindOutput {
		if _, err := s.InitialOn(); err != nil {
			return err
		}
	}
	return nil
}

// ParsePolarity returns the polarity of the switch.
func (s Switch) ParsePolarity() (switches.Polarity, error) {
	return switches.ParsePolarity(s.Polarity)
}

// InitialOn returns true when an output must start in the on state.
func (s Switch) InitialOn() (bool, error) {
	switch strings.ToLower(s.Initial) {
	case "", "off":
		return false, nil
	case "on":
		return true, nil
	default:
		return false, fmt.Errorf("invalid initial state '%s'", s.Initial)
	}
}
