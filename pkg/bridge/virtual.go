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
	"sync"

	"github.com/binkynet/SwitchHal/pkg/hal"
	"github.com/binkynet/SwitchHal/pkg/mock"
)

// Virtual is a bridge without hardware. Its pins are in-memory mock pins.
// An input and an output opened with the same pin name share one pin,
// so driving the output is seen by the input.
type Virtual struct {
	mutex sync.Mutex
	pins  map[string]*VirtualPin
}

var (
	_ API                   = &Virtual{}
	_ hal.WaitableInputPin  = &VirtualPin{}
	_ hal.StatefulOutputPin = &VirtualPin{}
)

// NewVirtualBridge implements the bridge for a setup without hardware.
func NewVirtualBridge() *Virtual {
	return &Virtual{
		pins: make(map[string]*VirtualPin),
	}
}

// Name returns "virtual".
func (v *Virtual) Name() string {
	return "virtual"
}

// Pin returns the pin with the given name, creating it when needed.
// A new pin is uninitialized.
func (v *Virtual) Pin(name string) *VirtualPin {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	p, found := v.pins[name]
	if !found {
		p = newVirtualPin(mock.New())
		v.pins[name] = p
	}
	return p
}

// Input opens the pin with the given name as an input.
// An uninitialized pin starts low.
func (v *Virtual) Input(pin string) (hal.WaitableInputPin, error) {
	p := v.Pin(pin)
	p.initialize(hal.Low)
	return p, nil
}

// Output opens the pin with the given name as an output.
func (v *Virtual) Output(pin string, initial hal.Level) (hal.StatefulOutputPin, error) {
	p := v.Pin(pin)
	if err := hal.Set(p, initial); err != nil {
		return nil, maskAny(err)
	}
	return p, nil
}

// Close forgets all pins.
func (v *Virtual) Close() error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.pins = make(map[string]*VirtualPin)
	return nil
}

// VirtualPin is a mock pin that is safe for concurrent use and wakes
// pending waits when its level changes.
type VirtualPin struct {
	hal.LevelWaiter
	mutex  sync.Mutex
	pin    *mock.Pin
	wakers wakeList
}

func newVirtualPin(pin *mock.Pin) *VirtualPin {
	p := &VirtualPin{pin: pin}
	p.LevelWaiter = newLevelWaiter(p.IsHigh, &p.wakers)
	return p
}

// initialize sets the level of an uninitialized pin.
func (p *VirtualPin) initialize(level hal.Level) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.pin.State() == mock.Uninitialized {
		hal.Set(p.pin, level)
	}
}

// State returns the state of the underlying mock pin.
func (p *VirtualPin) State() mock.State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pin.State()
}

// IsHigh returns true when the pin is high.
func (p *VirtualPin) IsHigh() (bool, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pin.IsHigh()
}

// IsLow returns true when the pin is low.
func (p *VirtualPin) IsLow() (bool, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pin.IsLow()
}

// SetLow drives the pin low.
func (p *VirtualPin) SetLow() error {
	return p.change(p.pin.SetLow)
}

// SetHigh drives the pin high.
func (p *VirtualPin) SetHigh() error {
	return p.change(p.pin.SetHigh)
}

// IsSetHigh returns true when the pin was last set high.
func (p *VirtualPin) IsSetHigh() (bool, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pin.IsSetHigh()
}

// IsSetLow returns true when the pin was last set low.
func (p *VirtualPin) IsSetLow() (bool, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pin.IsSetLow()
}

// Toggle flips the level of the pin.
func (p *VirtualPin) Toggle() error {
	return p.change(p.pin.Toggle)
}

func (p *VirtualPin) change(op func() error) error {
	p.mutex.Lock()
	err := op()
	p.mutex.Unlock()
	if err != nil {
		return err
	}
	p.wakers.wakeAll()
	return nil
}
