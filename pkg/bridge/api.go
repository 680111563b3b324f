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
	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

var (
	maskAny = errors.WithStack

	// ErrUnknownBridge is returned when a bridge name is not supported.
	ErrUnknownBridge = errors.New("unknown bridge")
	// ErrNoState is returned when the level of a pin is not (yet) known.
	ErrNoState = errors.New("no state received")
	// ErrPublishTimeout is returned when a command is not delivered in time.
	ErrPublishTimeout = errors.New("publish timeout")
)

// lowOf turns the result of a high read into the result of a low read.
// A failed read is never reported as low.
func lowOf(high bool, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return !high, nil
}

// API of a bridge, the hardware (or virtual) backend that gives access
// to the digital pins that switches are connected to.
type API interface {
	// Name returns the name of the bridge as used in the configuration.
	Name() string
	// Input opens the pin with the given name as an input.
	Input(pin string) (hal.WaitableInputPin, error)
	// Output opens the pin with the given name as an output,
	// driven to the given initial level.
	Output(pin string, initial hal.Level) (hal.StatefulOutputPin, error)
	// Close releases all pins opened by this bridge.
	Close() error
}
