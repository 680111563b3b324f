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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/SwitchHal/pkg/switches"
)

const sample = `
mqtt:
  broker: tcp://localhost:1883
  topicPrefix: layout
switches:
  - name: door
    kind: input
    polarity: active-low
    pin: "17"
  - name: lamp
    kind: output
    bridge: gpiocdev
    pin: "22"
    initial: on
`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, "switchhal", cfg.MQTT.ClientID)
	assert.Equal(t, "layout/", cfg.MQTT.TopicPrefix)
	require.Len(t, cfg.Switches, 2)

	door := cfg.Switches[0]
	assert.Equal(t, KindInput, door.Kind)
	assert.Equal(t, BridgeVirtual, door.Bridge)
	p, err := door.ParsePolarity()
	require.NoError(t, err)
	assert.Equal(t, switches.ActiveLow{}, p)

	lamp := cfg.Switches[1]
	assert.Equal(t, "active-high", lamp.Polarity)
	assert.Equal(t, DefaultChip, lamp.Chip)
	on, err := lamp.InitialOn()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		Name    string
		YAML    string
		Message string
	}{
		{"empty name", "switches:\n  - kind: input\n    pin: '1'\n", "name is empty"},
		{"duplicate", "switches:\n  - {name: a, kind: input, pin: '1'}\n  - {name: a, kind: input, pin: '2'}\n", "duplicate name 'a'"},
		{"kind", "switches:\n  - {name: a, kind: relay, pin: '1'}\n", "unknown kind 'relay'"},
		{"polarity", "switches:\n  - {name: a, kind: input, polarity: both, pin: '1'}\n", "unknown polarity"},
		{"bridge", "switches:\n  - {name: a, kind: input, bridge: i2c, pin: '1'}\n", "unknown bridge 'i2c'"},
		{"pin", "switches:\n  - {name: a, kind: input}\n", "pin is empty"},
		{"initial", "switches:\n  - {name: a, kind: output, pin: '1', initial: maybe}\n", "invalid initial state 'maybe'"},
		{"mqtt broker", "switches:\n  - {name: a, kind: output, bridge: mqtt, pin: '1'}\n", "requires a broker"},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, err := Parse([]byte(test.YAML))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.Message)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	_, err := Parse([]byte("switches:\n  - {name: a, kind: relay, pin: '1'}\n  - {name: b, kind: input}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
	assert.Contains(t, err.Error(), "pin is empty")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "switches.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Switches, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolveBridges(t *testing.T) {
	cfg, err := Parse([]byte("switches:\n  - {name: a, kind: input, bridge: auto, pin: '4'}\n  - {name: b, kind: input, bridge: rpi, pin: '5'}\n"))
	require.NoError(t, err)
	cfg.ResolveBridges(BridgeGPIOCDev)
	assert.Equal(t, BridgeGPIOCDev, cfg.Switches[0].Bridge)
	assert.Equal(t, DefaultChip, cfg.Switches[0].Chip)
	assert.Equal(t, BridgeRPI, cfg.Switches[1].Bridge)
}
