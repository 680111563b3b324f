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

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

type periphBridge struct {
	mutex   sync.Mutex
	inputs  map[string]*periphInputPin
	outputs map[string]*periphOutputPin
}

// NewPeriphBridge implements the bridge for any host supported by periph.io.
// Pins are looked up by name (e.g. "GPIO17") or number.
func NewPeriphBridge() (API, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init failed")
	}
	return &periphBridge{
		inputs:  make(map[string]*periphInputPin),
		outputs: make(map[string]*periphOutputPin),
	}, nil
}

// Name returns "periph".
func (b *periphBridge) Name() string {
	return "periph"
}

func lookupPeriphPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Errorf("pin '%s' not found", name)
	}
	return p, nil
}

// Input configures the pin as input with edge detection.
// A goroutine waits for edges and wakes pending waits.
func (b *periphBridge) Input(pin string) (hal.WaitableInputPin, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if ip, found := b.inputs[pin]; found {
		return ip, nil
	}
	p, err := lookupPeriphPin(pin)
	if err != nil {
		return nil, err
	}
	if err := p.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return nil, errors.Wrapf(err, "In[%s] failed", pin)
	}
	ip := &periphInputPin{pin: p}
	ip.LevelWaiter = newLevelWaiter(ip.IsHigh, &ip.wakers)
	go ip.watchEdges()
	b.inputs[pin] = ip
	return ip, nil
}

// Output configures the pin as output at the given level.
func (b *periphBridge) Output(pin string, initial hal.Level) (hal.StatefulOutputPin, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	op, found := b.outputs[pin]
	if !found {
		p, err := lookupPeriphPin(pin)
		if err != nil {
			return nil, err
		}
		op = &periphOutputPin{pin: p}
	}
	if err := hal.Set(op, initial); err != nil {
		return nil, err
	}
	b.outputs[pin] = op
	return op, nil
}

// Close halts all pins.
func (b *periphBridge) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var ae aerr.AggregateError
	for name, ip := range b.inputs {
		ae.Add(errors.Wrapf(ip.pin.Halt(), "Halt[%s] failed", name))
	}
	for name, op := range b.outputs {
		ae.Add(errors.Wrapf(op.pin.Halt(), "Halt[%s] failed", name))
	}
	b.inputs = make(map[string]*periphInputPin)
	b.outputs = make(map[string]*periphOutputPin)
	return ae.AsError()
}

type periphInputPin struct {
	hal.LevelWaiter
	pin    gpio.PinIO
	wakers wakeList
}

// watchEdges wakes pending waits on every edge. It ends when the pin is
// halted or does not support edge detection.
func (ip *periphInputPin) watchEdges() {
	for ip.pin.WaitForEdge(-1) {
		ip.wakers.wakeAll()
	}
}

// IsHigh reads the pin.
func (ip *periphInputPin) IsHigh() (bool, error) {
	return ip.pin.Read() == gpio.High, nil
}

// IsLow reads the pin.
func (ip *periphInputPin) IsLow() (bool, error) {
	return ip.pin.Read() == gpio.Low, nil
}

type periphOutputPin struct {
	mutex sync.Mutex
	pin   gpio.PinIO
	level hal.Level
}

// SetLow drives the pin low.
func (op *periphOutputPin) SetLow() error {
	return op.write(hal.Low)
}

// SetHigh drives the pin high.
func (op *periphOutputPin) SetHigh() error {
	return op.write(hal.High)
}

// IsSetHigh returns true when the pin was last set high.
func (op *periphOutputPin) IsSetHigh() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.level == hal.High, nil
}

// IsSetLow returns true when the pin was last set low.
func (op *periphOutputPin) IsSetLow() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.level == hal.Low, nil
}

// Toggle drives the pin to the opposite level.
func (op *periphOutputPin) Toggle() error {
	return hal.Toggle(op)
}

func (op *periphOutputPin) write(level hal.Level) error {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if err := op.pin.Out(gpio.Level(level)); err != nil {
		return errors.Wrap(err, "Out failed")
	}
	op.level = level
	return nil
}
