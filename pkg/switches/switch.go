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

// Package switches wraps digital pins into switches with a fixed polarity,
// so callers deal with active/inactive and on/off instead of electrical
// levels.
//
// The polarity is a type parameter:
//
//	led := switches.NewStatefulOutput[switches.ActiveLow](pin)
//	led.On() // drives pin low
//
// Switches do not lock, do not retry and return pin errors unchanged.
package switches

import "github.com/binkynet/SwitchHal/pkg/task"

// InputSwitch is a switch whose logical state can be read.
type InputSwitch interface {
	// IsActive returns true when the switch is active.
	IsActive() (bool, error)
}

// WaitableInputSwitch is an input switch that can wait for its state.
type WaitableInputSwitch interface {
	InputSwitch
	// WaitForActive resolves once the switch is active.
	WaitForActive() task.Future[task.Unit]
	// WaitForInactive resolves once the switch is inactive.
	WaitForInactive() task.Future[task.Unit]
	// WaitForChange resolves once the switch leaves the state it had
	// when the future was first polled.
	WaitForChange() task.Future[task.Unit]
}

// OutputSwitch is a switch that can be turned on and off.
type OutputSwitch interface {
	On() error
	Off() error
}

// StatefulOutputSwitch is an output switch that reports its commanded state.
type StatefulOutputSwitch interface {
	OutputSwitch
	// IsOn returns true when the switch was last turned on.
	IsOn() (bool, error)
	// IsOff returns true when the switch was last turned off.
	IsOff() (bool, error)
}

// ToggleableOutputSwitch is an output switch that can be toggled.
type ToggleableOutputSwitch interface {
	Toggle() error
}
