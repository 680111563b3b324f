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

// Package hal defines the capability contracts of a digital pin.
// A pin type implements whichever of these interfaces its driver supports.
// All levels in this package are electrical levels.
package hal

import "github.com/binkynet/SwitchHal/pkg/task"

// Level is the electrical level of a digital pin.
type Level bool

const (
	// Low electrical level
	Low Level = false
	// High electrical level
	High Level = true
)

// String returns the name of the level.
func (l Level) String() string {
	if l == High {
		return "High"
	}
	return "Low"
}

// Invert returns the opposite level.
func (l Level) Invert() Level {
	return !l
}

// InputPin is the interface satisfied by pins that can sense their level.
type InputPin interface {
	// IsHigh returns true when the pin is at a high level.
	IsHigh() (bool, error)
	// IsLow returns true when the pin is at a low level.
	IsLow() (bool, error)
}

// OutputPin is the interface satisfied by pins that can drive a level.
type OutputPin interface {
	// SetLow drives the pin low.
	SetLow() error
	// SetHigh drives the pin high.
	SetHigh() error
}

// StatefulOutputPin is an output pin that remembers the level it was
// last commanded to.
type StatefulOutputPin interface {
	OutputPin
	// IsSetHigh returns true when the pin was last set high.
	IsSetHigh() (bool, error)
	// IsSetLow returns true when the pin was last set low.
	IsSetLow() (bool, error)
	// Toggle drives the pin to the opposite of its commanded level.
	Toggle() error
}

// Waiter is implemented by pins that can wait for a level or edge.
// Each method returns a future that resolves once the condition has been
// observed; errors are those of the pin driver.
type Waiter interface {
	WaitForHigh() task.Future[task.Unit]
	WaitForLow() task.Future[task.Unit]
	WaitForRisingEdge() task.Future[task.Unit]
	WaitForFallingEdge() task.Future[task.Unit]
	WaitForAnyEdge() task.Future[task.Unit]
}

// WaitableInputPin is an input pin that can also wait.
type WaitableInputPin interface {
	InputPin
	Waiter
}

// SettableOutputPin is the minimum a pin needs for Toggle.
type SettableOutputPin interface {
	OutputPin
	IsSetLow() (bool, error)
}

// Toggle flips the commanded level of the given pin.
// It is the default toggle for stateful pins without a native one:
// a failure to read the commanded level is returned as is.
func Toggle(p SettableOutputPin) error {
	wasLow, err := p.IsSetLow()
	if err != nil {
		return err
	}
	if wasLow {
		return p.SetHigh()
	}
	return p.SetLow()
}

// Set drives the given pin to the given level.
func Set(p OutputPin, level Level) error {
	if level == High {
		return p.SetHigh()
	}
	return p.SetLow()
}
