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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/SwitchHal/pkg/hal"
	"github.com/binkynet/SwitchHal/pkg/mock"
	"github.com/binkynet/SwitchHal/pkg/task"
)

var polarities = []Polarity{ActiveHigh{}, ActiveLow{}}

// failingPin returns the same error from every operation.
type failingPin struct {
	err   error
	calls int
}

func (p *failingPin) IsHigh() (bool, error)    { p.calls++; return false, p.err }
func (p *failingPin) IsLow() (bool, error)     { p.calls++; return false, p.err }
func (p *failingPin) SetLow() error            { p.calls++; return p.err }
func (p *failingPin) SetHigh() error           { p.calls++; return p.err }
func (p *failingPin) IsSetHigh() (bool, error) { p.calls++; return false, p.err }
func (p *failingPin) IsSetLow() (bool, error)  { p.calls++; return false, p.err }
func (p *failingPin) Toggle() error            { p.calls++; return p.err }

func poll(f task.Future[task.Unit]) task.Poll[task.Unit] {
	return f.Poll(task.NoopWaker)
}

func TestIsActive(t *testing.T) {
	for _, level := range []hal.Level{hal.Low, hal.High} {
		t.Run(level.String(), func(t *testing.T) {
			active, err := NewInput[ActiveHigh](mock.WithState(level)).IsActive()
			require.NoError(t, err)
			assert.Equal(t, level == hal.High, active)

			active, err = NewInput[ActiveLow](mock.WithState(level)).IsActive()
			require.NoError(t, err)
			assert.Equal(t, level == hal.Low, active)
		})
	}
}

func TestOnOffLevels(t *testing.T) {
	high := NewOutput[ActiveHigh](mock.New())
	require.NoError(t, high.On())
	assert.Equal(t, mock.High, high.Pin().State())
	require.NoError(t, high.Off())
	assert.Equal(t, mock.Low, high.Pin().State())

	low := NewOutput[ActiveLow](mock.New())
	require.NoError(t, low.On())
	assert.Equal(t, mock.Low, low.Pin().State())
	require.NoError(t, low.Off())
	assert.Equal(t, mock.High, low.Pin().State())
}

func TestOnIsOnForAllPolarities(t *testing.T) {
	for _, polarity := range polarities {
		t.Run(polarity.String(), func(t *testing.T) {
			sw, err := NewStatefulOutputFor(polarity, mock.New())
			require.NoError(t, err)

			for i := 0; i < 2; i++ {
				require.NoError(t, sw.On())
				on, err := sw.IsOn()
				require.NoError(t, err)
				assert.True(t, on)
				off, err := sw.IsOff()
				require.NoError(t, err)
				assert.False(t, off)
			}

			for i := 0; i < 2; i++ {
				require.NoError(t, sw.Off())
				on, err := sw.IsOn()
				require.NoError(t, err)
				assert.False(t, on)
				off, err := sw.IsOff()
				require.NoError(t, err)
				assert.True(t, off)
			}
		})
	}
}

func TestToggleRoundTrip(t *testing.T) {
	for _, level := range []hal.Level{hal.Low, hal.High} {
		pin := mock.WithState(level)
		sw := NewStatefulOutput[ActiveLow](pin)
		wasOn, err := sw.IsOn()
		require.NoError(t, err)

		require.NoError(t, sw.Toggle())
		on, err := sw.IsOn()
		require.NoError(t, err)
		assert.Equal(t, !wasOn, on)

		require.NoError(t, sw.Toggle())
		assert.Equal(t, mock.WithState(level).State(), pin.State())
	}
}

func TestActiveLowOnHighPin(t *testing.T) {
	pin := mock.WithState(hal.High)
	in := NewInput[ActiveLow](pin)
	active, err := in.IsActive()
	require.NoError(t, err)
	assert.False(t, active)

	out := NewStatefulOutput[ActiveLow](pin)
	on, err := out.IsOn()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestOnDrivesUninitializedPinHigh(t *testing.T) {
	pin := mock.New()
	sw := NewStatefulOutput[ActiveHigh](pin)
	require.NoError(t, sw.On())
	assert.Equal(t, mock.High, pin.State())
	on, err := sw.IsOn()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestUninitializedErrorsPassThrough(t *testing.T) {
	in := NewInput[ActiveLow](mock.New())
	_, err := in.IsActive()
	assert.True(t, errors.Is(err, mock.ErrStateNotSet))

	out := NewStatefulOutput[ActiveHigh](mock.New())
	_, err = out.IsOn()
	assert.True(t, errors.Is(err, mock.ErrStateNotSet))
	assert.True(t, errors.Is(out.Toggle(), mock.ErrStateNotSet))
}

func TestErrorsAreReturnedUnchanged(t *testing.T) {
	driverErr := errors.New("line driver fault")
	pin := &failingPin{err: driverErr}

	_, err := NewInput[ActiveHigh](pin).IsActive()
	assert.Same(t, driverErr, err)

	out := NewStatefulOutput[ActiveLow](pin)
	assert.Same(t, driverErr, out.On())
	assert.Same(t, driverErr, out.Off())
	assert.Same(t, driverErr, out.Toggle())
	_, err = out.IsOn()
	assert.Same(t, driverErr, err)
	_, err = out.IsOff()
	assert.Same(t, driverErr, err)

	// One pin call per operation, no retries.
	assert.Equal(t, 6, pin.calls)
}

func TestWaitForActive(t *testing.T) {
	pin := mock.WithState(hal.High)
	sw := NewWaitableInput[ActiveLow](pin)
	f := sw.WaitForActive()
	assert.True(t, poll(f).IsPending())
	require.NoError(t, pin.SetLow())
	assert.True(t, poll(f).IsReady())

	assert.True(t, poll(NewWaitableInput[ActiveHigh](mock.WithState(hal.High)).WaitForActive()).IsReady())
}

func TestWaitForInactive(t *testing.T) {
	assert.True(t, poll(NewWaitableInput[ActiveLow](mock.WithState(hal.High)).WaitForInactive()).IsReady())
	assert.True(t, poll(NewWaitableInput[ActiveHigh](mock.WithState(hal.High)).WaitForInactive()).IsPending())
	assert.True(t, poll(NewWaitableInput[ActiveHigh](mock.WithState(hal.Low)).WaitForInactive()).IsReady())
}

func TestWaitForChange(t *testing.T) {
	for _, polarity := range polarities {
		for _, level := range []hal.Level{hal.Low, hal.High} {
			t.Run(polarity.String()+"/"+level.String(), func(t *testing.T) {
				pin := mock.WithState(level)
				sw, err := NewWaitableInputFor(polarity, pin)
				require.NoError(t, err)

				f := sw.WaitForChange()
				assert.True(t, poll(f).IsPending())
				require.NoError(t, hal.Set(pin, level.Invert()))
				assert.True(t, poll(f).IsReady())
			})
		}
	}
}

func TestWaitForChangeReadError(t *testing.T) {
	p := poll(NewWaitableInput[ActiveHigh](mock.New()).WaitForChange())
	assert.True(t, p.IsReady())
	assert.True(t, errors.Is(p.Err(), mock.ErrStateNotSet))
}

func TestParsePolarity(t *testing.T) {
	tests := map[string]Polarity{
		"":            ActiveHigh{},
		"active-high": ActiveHigh{},
		"Active-Low":  ActiveLow{},
		" low ":       ActiveLow{},
	}
	for name, expected := range tests {
		p, err := ParsePolarity(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, p, name)
	}

	_, err := ParsePolarity("sideways")
	assert.True(t, errors.Is(err, ErrUnknownPolarity))
}

func TestFactoryRejectsUnknownPolarity(t *testing.T) {
	_, err := NewInputFor(nil, mock.New())
	assert.True(t, errors.Is(err, ErrUnknownPolarity))
	_, err = NewOutputFor(nil, mock.New())
	assert.True(t, errors.Is(err, ErrUnknownPolarity))
}

func TestFactoryPolarity(t *testing.T) {
	in, err := NewInputFor(ActiveLow{}, mock.WithState(hal.Low))
	require.NoError(t, err)
	active, err := in.IsActive()
	require.NoError(t, err)
	assert.True(t, active)

	pin := mock.New()
	out, err := NewOutputFor(ActiveLow{}, pin)
	require.NoError(t, err)
	require.NoError(t, out.On())
	assert.Equal(t, mock.Low, pin.State())
}

func TestPolarityVariants(t *testing.T) {
	levels := map[string]hal.Level{}
	for _, p := range polarities {
		p.polarity()
		levels[p.String()] = p.ActiveLevel()
	}
	assert.Equal(t, map[string]hal.Level{
		"active-high": hal.High,
		"active-low":  hal.Low,
	}, levels)
}
