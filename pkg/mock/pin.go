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

// Package mock contains a deterministic in-memory digital pin.
// It is meant as a test double for code using the hal pin contracts.
// A Pin is not safe for concurrent use.
package mock

import (
	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/hal"
	"github.com/binkynet/SwitchHal/pkg/task"
)

var (
	// ErrStateNotSet is returned when reading a pin that has never been
	// given a level.
	ErrStateNotSet = errors.New("state not set")
	maskAny        = errors.WithStack
)

var (
	_ hal.WaitableInputPin  = &Pin{}
	_ hal.StatefulOutputPin = &Pin{}
)

// State is the level held by a mock pin.
type State int8

const (
	// Uninitialized means no level has been set yet.
	Uninitialized State = iota
	// Low level
	Low
	// High level
	High
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Low:
		return "Low"
	case High:
		return "High"
	default:
		return "Uninitialized"
	}
}

func stateOf(level hal.Level) State {
	if level == hal.High {
		return High
	}
	return Low
}

// Pin is a mock digital pin.
// The zero value is an uninitialized pin.
type Pin struct {
	state State
}

// New returns an uninitialized pin.
func New() *Pin {
	return &Pin{}
}

// WithState returns a pin that starts at the given level.
func WithState(level hal.Level) *Pin {
	return &Pin{state: stateOf(level)}
}

// State returns the current state of the pin.
func (p *Pin) State() State {
	return p.state
}

// IsHigh returns true when the pin is high.
func (p *Pin) IsHigh() (bool, error) {
	switch p.state {
	case High:
		return true, nil
	case Low:
		return false, nil
	default:
		return false, maskAny(ErrStateNotSet)
	}
}

// IsLow returns true when the pin is low.
func (p *Pin) IsLow() (bool, error) {
	high, err := p.IsHigh()
	if err != nil {
		return false, err
	}
	return !high, nil
}

// SetLow sets the pin low.
func (p *Pin) SetLow() error {
	p.state = Low
	return nil
}

// SetHigh sets the pin high.
func (p *Pin) SetHigh() error {
	p.state = High
	return nil
}

// IsSetHigh returns the same as IsHigh; the mock keeps a single level.
func (p *Pin) IsSetHigh() (bool, error) {
	return p.IsHigh()
}

// IsSetLow returns the same as IsLow; the mock keeps a single level.
func (p *Pin) IsSetLow() (bool, error) {
	return p.IsLow()
}

// Toggle flips the level of the pin.
// It fails when the pin is uninitialized.
func (p *Pin) Toggle() error {
	return hal.Toggle(p)
}

// WaitForHigh resolves once the pin is high.
func (p *Pin) WaitForHigh() task.Future[task.Unit] {
	return p.waitFor(High)
}

// WaitForLow resolves once the pin is low.
func (p *Pin) WaitForLow() task.Future[task.Unit] {
	return p.waitFor(Low)
}

// WaitForRisingEdge waits for low, then for high.
func (p *Pin) WaitForRisingEdge() task.Future[task.Unit] {
	return task.Then(p.WaitForLow(), func(task.Unit) task.Future[task.Unit] {
		return p.WaitForHigh()
	})
}

// WaitForFallingEdge waits for high, then for low.
func (p *Pin) WaitForFallingEdge() task.Future[task.Unit] {
	return task.Then(p.WaitForHigh(), func(task.Unit) task.Future[task.Unit] {
		return p.WaitForLow()
	})
}

// WaitForAnyEdge waits for the edge leaving the level seen on first poll.
// Reading an uninitialized pin completes the future with ErrStateNotSet.
func (p *Pin) WaitForAnyEdge() task.Future[task.Unit] {
	return task.Defer(func() task.Future[task.Unit] {
		high, err := p.IsHigh()
		if err != nil {
			return task.Fail[task.Unit](err)
		}
		if high {
			return p.WaitForFallingEdge()
		}
		return p.WaitForRisingEdge()
	})
}

// waitFor only compares the state; the waker is not used since nothing
// inside the mock changes the state on its own.
func (p *Pin) waitFor(target State) task.Future[task.Unit] {
	return task.FutureFunc[task.Unit](func(task.Waker) task.Poll[task.Unit] {
		if p.state == target {
			return task.Ready(task.Unit{})
		}
		return task.Pending[task.Unit]()
	})
}
