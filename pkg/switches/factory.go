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
	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

// The functions below pick the generic instantiation for a polarity that
// is only known at runtime (e.g. from a configuration file).

// StatefulOutputSwitchWithToggle is what NewStatefulOutputFor returns.
type StatefulOutputSwitchWithToggle interface {
	StatefulOutputSwitch
	ToggleableOutputSwitch
}

// NewInputFor creates an input switch with the given polarity.
func NewInputFor(polarity Polarity, pin hal.InputPin) (InputSwitch, error) {
	switch polarity.(type) {
	case ActiveHigh:
		return NewInput[ActiveHigh](pin), nil
	case ActiveLow:
		return NewInput[ActiveLow](pin), nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolarity, "%v", polarity)
	}
}

// NewWaitableInputFor creates a waitable input switch with the given polarity.
func NewWaitableInputFor(polarity Polarity, pin hal.WaitableInputPin) (WaitableInputSwitch, error) {
	switch polarity.(type) {
	case ActiveHigh:
		return NewWaitableInput[ActiveHigh](pin), nil
	case ActiveLow:
		return NewWaitableInput[ActiveLow](pin), nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolarity, "%v", polarity)
	}
}

// NewOutputFor creates an output switch with the given polarity.
func NewOutputFor(polarity Polarity, pin hal.OutputPin) (OutputSwitch, error) {
	switch polarity.(type) {
	case ActiveHigh:
		return NewOutput[ActiveHigh](pin), nil
	case ActiveLow:
		return NewOutput[ActiveLow](pin), nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolarity, "%v", polarity)
	}
}

// NewStatefulOutputFor creates a stateful output switch with the given polarity.
func NewStatefulOutputFor(polarity Polarity, pin hal.StatefulOutputPin) (StatefulOutputSwitchWithToggle, error) {
	switch polarity.(type) {
	case ActiveHigh:
		return NewStatefulOutput[ActiveHigh](pin), nil
	case ActiveLow:
		return NewStatefulOutput[ActiveLow](pin), nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolarity, "%v", polarity)
	}
}
