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
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/config"
	"github.com/binkynet/SwitchHal/pkg/util"
)

var (
	maskAny = errors.WithStack

	// ErrUnknownSwitch is returned for a switch name that is not configured.
	ErrUnknownSwitch = errors.New("unknown switch")
	// ErrNotAnOutput is returned when commanding an input switch.
	ErrNotAnOutput = errors.New("switch is not an output")
	// ErrInvalidAction is returned for an unsupported action.
	ErrInvalidAction = errors.New("invalid action")
)

// Action is a command for an output switch.
type Action string

const (
	// ActionOn turns the switch on
	ActionOn Action = "on"
	// ActionOff turns the switch off
	ActionOff Action = "off"
	// ActionToggle toggles the switch
	ActionToggle Action = "toggle"
)

// ParseAction parses an action name (case-insensitive).
// Boolean values such as 1/0 or true/false are accepted for on/off.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionOn, ActionOff, ActionToggle:
		return a, nil
	}
	if on, err := util.ParseBool(s); err == nil {
		if on {
			return ActionOn, nil
		}
		return ActionOff, nil
	}
	return "", errors.Wrapf(ErrInvalidAction, "'%s'", s)
}

// Status of a single switch.
type Status struct {
	Name     string      `json:"name"`
	Kind     config.Kind `json:"kind"`
	Polarity string      `json:"polarity"`
	// Active is set for input switches
	Active *bool `json:"active,omitempty"`
	// On is set for output switches
	On *bool `json:"on,omitempty"`
	// Error of the last failed pin operation
	Error      string     `json:"error,omitempty"`
	LastChange *time.Time `json:"last_change,omitempty"`
	// Since is LastChange in human readable form
	Since string `json:"since,omitempty"`
}

// IsSet returns the logical state and true when the state is known.
func (s Status) IsSet() (bool, bool) {
	switch {
	case s.Active != nil:
		return *s.Active, true
	case s.On != nil:
		return *s.On, true
	default:
		return false, false
	}
}

func newStatus(sw config.Switch, known, state bool, lastErr error, lastChange time.Time) Status {
	st := Status{
		Name:     sw.Name,
		Kind:     sw.Kind,
		Polarity: sw.Polarity,
	}
	if known {
		value := state
		if sw.Kind == config.KindInput {
			st.Active = &value
		} else {
			st.On = &value
		}
	}
	if lastErr != nil {
		st.Error = lastErr.Error()
	}
	if !lastChange.IsZero() {
		ts := lastChange
		st.LastChange = &ts
		st.Since = humanize.Time(lastChange)
	}
	return st
}
