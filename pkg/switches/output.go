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

package switches

import (
	"github.com/binkynet/SwitchHal/pkg/hal"
)

var (
	_ OutputSwitch           = &Output[ActiveHigh, hal.OutputPin]{}
	_ StatefulOutputSwitch   = &StatefulOutput[ActiveLow, hal.StatefulOutputPin]{}
	_ ToggleableOutputSwitch = &StatefulOutput[ActiveLow, hal.StatefulOutputPin]{}
)

// Output is an output switch with polarity A on top of pin type T.
type Output[A Polarity, T hal.OutputPin] struct {
	pin T
}

// NewOutput wraps the given pin in an output switch with polarity A.
func NewOutput[A Polarity, T hal.OutputPin](pin T) *Output[A, T] {
	return &Output[A, T]{pin: pin}
}

// Pin returns the wrapped pin.
func (s *Output[A, T]) Pin() T {
	return s.pin
}

// On drives the pin to the active level.
func (s *Output[A, T]) On() error {
	if activeLevel[A]() == hal.High {
		return s.pin.SetHigh()
	}
	return s.pin.SetLow()
}

// Off drives the pin to the inactive level.
func (s *Output[A, T]) Off() error {
	if activeLevel[A]() == hal.High {
		return s.pin.SetLow()
	}
	return s.pin.SetHigh()
}

// StatefulOutput is an output switch on a pin that remembers its
// commanded level.
type StatefulOutput[A Polarity, T hal.StatefulOutputPin] struct {
	Output[A, T]
}

// NewStatefulOutput wraps the given pin in a stateful output switch with polarity A.
func NewStatefulOutput[A Polarity, T hal.StatefulOutputPin](pin T) *StatefulOutput[A, T] {
	return &StatefulOutput[A, T]{Output: Output[A, T]{pin: pin}}
}

// IsOn returns true when the pin was last set to the active level.
func (s *StatefulOutput[A, T]) IsOn() (bool, error) {
	if activeLevel[A]() == hal.High {
		return s.pin.IsSetHigh()
	}
	return s.pin.IsSetLow()
}

// IsOff returns true when the pin was last set to the inactive level.
func (s *StatefulOutput[A, T]) IsOff() (bool, error) {
	if activeLevel[A]() == hal.High {
		return s.pin.IsSetLow()
	}
	return s.pin.IsSetHigh()
}

// Toggle toggles the pin. Inverting the level inverts the logical state
// under either polarity.
func (s *StatefulOutput[A, T]) Toggle() error {
	return s.pin.Toggle()
}
