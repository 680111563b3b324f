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
	"github.com/binkynet/SwitchHal/pkg/metrics"
)

const (
	subSystem = "service"
)

var (
	// Number of executed commands, per switch and action
	commandsTotal = metrics.MustRegisterCounterVec(subSystem,
		"commands_total",
		"Number of executed switch commands",
		"name", "action")
	// Number of failed commands, per switch
	commandErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"command_errors_total",
		"Number of failed switch commands",
		"name")
	// Number of observed input changes, per switch
	inputChangesTotal = metrics.MustRegisterCounterVec(subSystem,
		"input_changes_total",
		"Number of times the state of an input switch has changed",
		"name")
	// Logical state of every switch
	switchActiveGauge = metrics.MustRegisterGaugeVec(subSystem,
		"switch_active",
		"Logical state of a switch (0=inactive/off, 1=active/on)",
		"name")
	// Number of MQTT command messages received
	mqttCommandsReceivedTotal = metrics.MustRegisterCounter(subSystem,
		"mqtt_commands_received_total",
		"Number of MQTT command messages received")
)
