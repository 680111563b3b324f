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
	"strconv"
	"sync"

	"github.com/ecc1/gpio"
	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

type piBridge struct {
	mutex   sync.Mutex
	inputs  map[int]*piInputPin
	outputs map[int]*piOutputPin
}

// NewRaspberryPiBridge implements the bridge for the local GPIO pins of a
// Raspberry PI, using BCM pin numbers.
func NewRaspberryPiBridge() API {
	return &piBridge{
		inputs:  make(map[int]*piInputPin),
		outputs: make(map[int]*piOutputPin),
	}
}

// Name returns "rpi".
func (p *piBridge) Name() string {
	return "rpi"
}

// Input initializes a GPIO input pin with the given pin number.
// Polarity is handled by the switch, so the pin itself is never active low.
func (p *piBridge) Input(pin string) (hal.WaitableInputPin, error) {
	pinNumber, err := parsePinNumber(pin)
	if err != nil {
		return nil, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if ip, found := p.inputs[pinNumber]; found {
		return ip, nil
	}
	raw, err := gpio.Input(pinNumber, false)
	if err != nil {
		return nil, errors.Wrapf(err, "Input[%d] failed", pinNumber)
	}
	ip := &piInputPin{pin: raw}
	ip.LevelWaiter = newLevelWaiter(ip.IsHigh, nil)
	p.inputs[pinNumber] = ip
	return ip, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial level.
func (p *piBridge) Output(pin string, initial hal.Level) (hal.StatefulOutputPin, error) {
	pinNumber, err := parsePinNumber(pin)
	if err != nil {
		return nil, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if op, found := p.outputs[pinNumber]; found {
		if err := hal.Set(op, initial); err != nil {
			return nil, err
		}
		return op, nil
	}
	raw, err := gpio.Output(pinNumber, false, bool(initial))
	if err != nil {
		return nil, errors.Wrapf(err, "Output[%d] failed", pinNumber)
	}
	op := &piOutputPin{pin: raw, level: initial}
	p.outputs[pinNumber] = op
	return op, nil
}

// Close forgets all pins. The kernel keeps exported pins at their last level.
func (p *piBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.inputs = make(map[int]*piInputPin)
	p.outputs = make(map[int]*piOutputPin)
	return nil
}

type piInputPin struct {
	hal.LevelWaiter
	pin gpio.InputPin
}

// IsHigh reads the pin.
func (ip *piInputPin) IsHigh() (bool, error) {
	value, err := ip.pin.Read()
	if err != nil {
		return false, errors.Wrap(err, "Read failed")
	}
	return value, nil
}

// IsLow reads the pin.
func (ip *piInputPin) IsLow() (bool, error) {
	return lowOf(ip.IsHigh())
}

type piOutputPin struct {
	mutex sync.Mutex
	pin   gpio.OutputPin
	level hal.Level
}

// SetLow drives the pin low.
func (op *piOutputPin) SetLow() error {
	return op.write(hal.Low)
}

// SetHigh drives the pin high.
func (op *piOutputPin) SetHigh() error {
	return op.write(hal.High)
}

// IsSetHigh returns true when the pin was last set high.
func (op *piOutputPin) IsSetHigh() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.level == hal.High, nil
}

// IsSetLow returns true when the pin was last set low.
func (op *piOutputPin) IsSetLow() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.level == hal.Low, nil
}

// Toggle drives the pin to the opposite level.
func (op *piOutputPin) Toggle() error {
	return hal.Toggle(op)
}

func (op *piOutputPin) write(level hal.Level) error {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if err := op.pin.Write(bool(level)); err != nil {
		return errors.Wrap(err, "Write failed")
	}
	op.level = level
	return nil
}

// parsePinNumber parses a numeric pin name.
func parsePinNumber(pin string) (int, error) {
	pinNumber, err := strconv.Atoi(pin)
	if err != nil || pinNumber < 0 {
		return 0, errors.Errorf("invalid pin number '%s'", pin)
	}
	return pinNumber, nil
}
