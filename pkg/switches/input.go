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
	"github.com/binkynet/SwitchHal/pkg/task"
)

var (
	_ InputSwitch         = &Input[ActiveHigh, hal.InputPin]{}
	_ WaitableInputSwitch = &WaitableInput[ActiveLow, hal.WaitableInputPin]{}
)

// Input is an input switch with polarity A on top of pin type T.
type Input[A Polarity, T hal.InputPin] struct {
	pin T
}

// NewInput wraps the given pin in an input switch with polarity A.
func NewInput[A Polarity, T hal.InputPin](pin T) *Input[A, T] {
	return &Input[A, T]{pin: pin}
}

// Pin returns the wrapped pin.
func (s *Input[A, T]) Pin() T {
	return s.pin
}

// IsActive returns true when the pin is at the active level.
func (s *Input[A, T]) IsActive() (bool, error) {
	if activeLevel[A]() == hal.High {
		return s.pin.IsHigh()
	}
	return s.pin.IsLow()
}

// WaitableInput is an input switch on a pin that can wait for levels.
type WaitableInput[A Polarity, T hal.WaitableInputPin] struct {
	Input[A, T]
}

// NewWaitableInput wraps the given pin in a waitable input switch with polarity A.
func NewWaitableInput[A Polarity, T hal.WaitableInputPin](pin T) *WaitableInput[A, T] {
	return &WaitableInput[A, T]{Input: Input[A, T]{pin: pin}}
}

// WaitForActive waits for the active level.
func (s *WaitableInput[A, T]) WaitForActive() task.Future[task.Unit] {
	return s.waitForLevel(activeLevel[A]())
}

// WaitForInactive waits for the inactive level.
func (s *WaitableInput[A, T]) WaitForInactive() task.Future[task.Unit] {
	return s.waitForLevel(activeLevel[A]().Invert())
}

// WaitForChange reads the level on first poll and waits for the opposite
// level. This does not depend on the polarity.
func (s *WaitableInput[A, T]) WaitForChange() task.Future[task.Unit] {
	return task.Defer(func() task.Future[task.Unit] {
		high, err := s.pin.IsHigh()
		if err != nil {
			return task.Fail[task.Unit](err)
		}
		if high {
			return s.pin.WaitForLow()
		}
		return s.pin.WaitForHigh()
	})
}

func (s *WaitableInput[A, T]) waitForLevel(level hal.Level) task.Future[task.Unit] {
	if level == hal.High {
		return s.pin.WaitForHigh()
	}
	return s.pin.WaitForLow()
}
