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
	"github.com/binkynet/SwitchHal/pkg/task"
	"github.com/binkynet/SwitchHal/pkg/util"
)

var (
	// ErrPinBorrowed is returned when a shared pin is used while it is
	// already borrowed.
	ErrPinBorrowed = errors.New("pin already borrowed")
)

// Shared gives several switches access to a single pin.
// Every access borrows the pin exclusively; a conflicting access fails
// with ErrPinBorrowed instead of waiting.
type Shared[T any] struct {
	claim util.Claim
	pin   T
}

// NewShared wraps the given pin for shared access.
func NewShared[T any](pin T) *Shared[T] {
	return &Shared[T]{pin: pin}
}

// Borrow calls fn with exclusive access to the pin.
func (s *Shared[T]) Borrow(fn func(pin T) error) error {
	if !s.claim.TryAcquire() {
		return errors.WithStack(ErrPinBorrowed)
	}
	defer s.claim.Release()
	return fn(s.pin)
}

func borrowBool[T any](s *Shared[T], fn func(pin T) (bool, error)) (bool, error) {
	var result bool
	err := s.Borrow(func(pin T) error {
		var err error
		result, err = fn(pin)
		return err
	})
	return result, err
}

// SharedInput is an input pin view on a shared pin.
type SharedInput[T hal.InputPin] struct {
	shared *Shared[T]
}

// InputOf returns an input pin view on the given shared pin.
func InputOf[T hal.InputPin](s *Shared[T]) SharedInput[T] {
	return SharedInput[T]{shared: s}
}

// IsHigh borrows the pin and reads it.
func (v SharedInput[T]) IsHigh() (bool, error) {
	return borrowBool(v.shared, func(pin T) (bool, error) { return pin.IsHigh() })
}

// IsLow borrows the pin and reads it.
func (v SharedInput[T]) IsLow() (bool, error) {
	return borrowBool(v.shared, func(pin T) (bool, error) { return pin.IsLow() })
}

// SharedWaitableInput is a waitable input pin view on a shared pin.
// Every poll of a returned future borrows the pin.
type SharedWaitableInput[T hal.WaitableInputPin] struct {
	SharedInput[T]
}

// WaitableInputOf returns a waitable input pin view on the given shared pin.
func WaitableInputOf[T hal.WaitableInputPin](s *Shared[T]) SharedWaitableInput[T] {
	return SharedWaitableInput[T]{SharedInput: SharedInput[T]{shared: s}}
}

// WaitForHigh waits for a high level.
func (v SharedWaitableInput[T]) WaitForHigh() task.Future[task.Unit] {
	return v.wait(func(pin T) task.Future[task.Unit] { return pin.WaitForHigh() })
}

// WaitForLow waits for a low level.
func (v SharedWaitableInput[T]) WaitForLow() task.Future[task.Unit] {
	return v.wait(func(pin T) task.Future[task.Unit] { return pin.WaitForLow() })
}

// WaitForRisingEdge waits for a rising edge.
func (v SharedWaitableInput[T]) WaitForRisingEdge() task.Future[task.Unit] {
	return v.wait(func(pin T) task.Future[task.Unit] { return pin.WaitForRisingEdge() })
}

// WaitForFallingEdge waits for a falling edge.
func (v SharedWaitableInput[T]) WaitForFallingEdge() task.Future[task.Unit] {
	return v.wait(func(pin T) task.Future[task.Unit] { return pin.WaitForFallingEdge() })
}

// WaitForAnyEdge waits for any edge.
func (v SharedWaitableInput[T]) WaitForAnyEdge() task.Future[task.Unit] {
	return v.wait(func(pin T) task.Future[task.Unit] { return pin.WaitForAnyEdge() })
}

// wait builds the future of the pin on first poll and borrows the pin
// around every poll. A conflicting borrow completes the future with
// ErrPinBorrowed.
func (v SharedWaitableInput[T]) wait(build func(pin T) task.Future[task.Unit]) task.Future[task.Unit] {
	var inner task.Future[task.Unit]
	return task.FutureFunc[task.Unit](func(w task.Waker) task.Poll[task.Unit] {
		var result task.Poll[task.Unit]
		if err := v.shared.Borrow(func(pin T) error {
			if inner == nil {
				inner = build(pin)
			}
			result = inner.Poll(w)
			return nil
		}); err != nil {
			return task.Failed[task.Unit](err)
		}
		return result
	})
}

// SharedOutput is a stateful output pin view on a shared pin.
type SharedOutput[T hal.StatefulOutputPin] struct {
	shared *Shared[T]
}

// OutputOf returns a stateful output pin view on the given shared pin.
func OutputOf[T hal.StatefulOutputPin](s *Shared[T]) SharedOutput[T] {
	return SharedOutput[T]{shared: s}
}

// SetLow borrows the pin and drives it low.
func (v SharedOutput[T]) SetLow() error {
	return v.shared.Borrow(func(pin T) error { return pin.SetLow() })
}

// SetHigh borrows the pin and drives it high.
func (v SharedOutput[T]) SetHigh() error {
	return v.shared.Borrow(func(pin T) error { return pin.SetHigh() })
}

// IsSetHigh borrows the pin and reads its commanded level.
func (v SharedOutput[T]) IsSetHigh() (bool, error) {
	return borrowBool(v.shared, func(pin T) (bool, error) { return pin.IsSetHigh() })
}

// IsSetLow borrows the pin and reads its commanded level.
func (v SharedOutput[T]) IsSetLow() (bool, error) {
	return borrowBool(v.shared, func(pin T) (bool, error) { return pin.IsSetLow() })
}

// Toggle borrows the pin and toggles it.
func (v SharedOutput[T]) Toggle() error {
	return v.shared.Borrow(func(pin T) error { return pin.Toggle() })
}
