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

package util

import (
	"fmt"
	"strings"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
)

const (
	// MQTTPublishTimeout is the time allowed for a publish to be delivered.
	MQTTPublishTimeout = time.Millisecond * 200
)

// NewMQTTClientOptions returns the client options shared by all MQTT users.
// A broker address without a scheme is prefixed with tcp://.
func NewMQTTClientOptions(brokerAddress, clientID string) *mqttapi.ClientOptions {
	if !strings.Contains(brokerAddress, "://") {
		brokerAddress = "tcp://" + brokerAddress
	}
	opts := mqttapi.NewClientOptions().
		AddBroker(brokerAddress).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetOrderMatters(false)
	opts.SetDefaultPublishHandler(func(c mqttapi.Client, m mqttapi.Message) {
		// Ignore messages when no subscription match
	})
	return opts
}

// ParseBool parses an MQTT payload into a bool.
func ParseBool(str string) (bool, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	switch str {
	case "1", "t", "true", "on", "yes", "high":
		return true, nil
	case "0", "f", "false", "off", "no", "low":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value '%s'", str)
}

// FormatBool formats a bool as MQTT payload.
func FormatBool(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
