//go:build linux

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
	"github.com/warthog618/go-gpiocdev"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

type gpiocdevBridge struct {
	mutex   sync.Mutex
	chip    *gpiocdev.Chip
	inputs  map[int]*cdevInputPin
	outputs map[int]*cdevOutputPin
}

// NewGPIOCDevBridge implements the bridge for the lines of a Linux GPIO
// character device (e.g. gpiochip0). Pins are line offsets.
func NewGPIOCDevBridge(chipName string) (API, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, errors.Wrapf(err, "open gpio chip '%s' failed", chipName)
	}
	return &gpiocdevBridge{
		chip:    chip,
		inputs:  make(map[int]*cdevInputPin),
		outputs: make(map[int]*cdevOutputPin),
	}, nil
}

// Name returns "gpiocdev".
func (b *gpiocdevBridge) Name() string {
	return "gpiocdev"
}

// Input requests the line as input with edge events on both edges.
// Every edge event wakes pending waits.
func (b *gpiocdevBridge) Input(pin string) (hal.WaitableInputPin, error) {
	offset, err := parsePinNumber(pin)
	if err != nil {
		return nil, err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if ip, found := b.inputs[offset]; found {
		return ip, nil
	}
	ip := &cdevInputPin{}
	line, err := b.chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			ip.wakers.wakeAll()
		}))
	if err != nil {
		return nil, errors.Wrapf(err, "request line %d failed", offset)
	}
	ip.line = line
	ip.LevelWaiter = newLevelWaiter(ip.IsHigh, &ip.wakers)
	b.inputs[offset] = ip
	return ip, nil
}

// Output requests the line as output at the given level.
func (b *gpiocdevBridge) Output(pin string, initial hal.Level) (hal.StatefulOutputPin, error) {
	offset, err := parsePinNumber(pin)
	if err != nil {
		return nil, err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if op, found := b.outputs[offset]; found {
		if err := hal.Set(op, initial); err != nil {
			return nil, err
		}
		return op, nil
	}
	line, err := b.chip.RequestLine(offset, gpiocdev.AsOutput(levelValue(initial)))
	if err != nil {
		return nil, errors.Wrapf(err, "request line %d failed", offset)
	}
	op := &cdevOutputPin{line: line}
	b.outputs[offset] = op
	return op, nil
}

// Close releases all lines and the chip.
func (b *gpiocdevBridge) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var ae aerr.AggregateError
	for offset, ip := range b.inputs {
		ae.Add(errors.Wrapf(ip.line.Close(), "close line %d failed", offset))
	}
	for offset, op := range b.outputs {
		ae.Add(errors.Wrapf(op.line.Close(), "close line %d failed", offset))
	}
	b.inputs = make(map[int]*cdevInputPin)
	b.outputs = make(map[int]*cdevOutputPin)
	if b.chip != nil {
		ae.Add(errors.Wrap(b.chip.Close(), "close chip failed"))
		b.chip = nil
	}
	return ae.AsError()
}

func levelValue(level hal.Level) int {
	if level == hal.High {
		return 1
	}
	return 0
}

type cdevInputPin struct {
	hal.LevelWaiter
	line   *gpiocdev.Line
	wakers wakeList
}

// IsHigh reads the line.
func (ip *cdevInputPin) IsHigh() (bool, error) {
	value, err := ip.line.Value()
	if err != nil {
		return false, errors.Wrap(err, "read line failed")
	}
	return value != 0, nil
}

// IsLow reads the line.
func (ip *cdevInputPin) IsLow() (bool, error) {
	return lowOf(ip.IsHigh())
}

type cdevOutputPin struct {
	mutex sync.Mutex
	line  *gpiocdev.Line
}

// SetLow drives the line low.
func (op *cdevOutputPin) SetLow() error {
	return op.write(hal.Low)
}

// SetHigh drives the line high.
func (op *cdevOutputPin) SetHigh() error {
	return op.write(hal.High)
}

// IsSetHigh reads back the value of the output line.
func (op *cdevOutputPin) IsSetHigh() (bool, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	value, err := op.line.Value()
	if err != nil {
		return false, errors.Wrap(err, "read line failed")
	}
	return value != 0, nil
}

// IsSetLow reads back the value of the output line.
func (op *cdevOutputPin) IsSetLow() (bool, error) {
	return lowOf(op.IsSetHigh())
}

// Toggle drives the line to the opposite level.
func (op *cdevOutputPin) Toggle() error {
	return hal.Toggle(op)
}

func (op *cdevOutputPin) write(level hal.Level) error {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if err := op.line.SetValue(levelValue(level)); err != nil {
		return errors.Wrap(err, "set line failed")
	}
	return nil
}
