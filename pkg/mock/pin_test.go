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

package mock

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/SwitchHal/pkg/hal"
	"github.com/binkynet/SwitchHal/pkg/task"
)

func poll(f task.Future[task.Unit]) task.Poll[task.Unit] {
	return f.Poll(task.NoopWaker)
}

func TestNewIsUninitialized(t *testing.T) {
	pin := New()
	assert.Equal(t, Uninitialized, pin.State())

	var zero Pin
	assert.Equal(t, Uninitialized, zero.State())
}

func TestUninitializedReadsFail(t *testing.T) {
	reads := map[string]func(*Pin) (bool, error){
		"IsHigh":    (*Pin).IsHigh,
		"IsLow":     (*Pin).IsLow,
		"IsSetHigh": (*Pin).IsSetHigh,
		"IsSetLow":  (*Pin).IsSetLow,
	}
	for name, read := range reads {
		t.Run(name, func(t *testing.T) {
			_, err := read(New())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStateNotSet))
			assert.Equal(t, ErrStateNotSet, errors.Cause(err))
		})
	}
}

func TestWithState(t *testing.T) {
	assert.Equal(t, High, WithState(hal.High).State())
	assert.Equal(t, Low, WithState(hal.Low).State())
}

func TestInputPin(t *testing.T) {
	tests := []struct {
		level    hal.Level
		wantHigh bool
	}{
		{hal.High, true},
		{hal.Low, false},
	}
	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			pin := WithState(tc.level)
			high, err := pin.IsHigh()
			require.NoError(t, err)
			assert.Equal(t, tc.wantHigh, high)

			low, err := pin.IsLow()
			require.NoError(t, err)
			assert.Equal(t, !tc.wantHigh, low)

			setHigh, err := pin.IsSetHigh()
			require.NoError(t, err)
			assert.Equal(t, tc.wantHigh, setHigh)

			setLow, err := pin.IsSetLow()
			require.NoError(t, err)
			assert.Equal(t, !tc.wantHigh, setLow)
		})
	}
}

func TestOutputPin(t *testing.T) {
	pin := New()
	require.NoError(t, pin.SetLow())
	low, err := pin.IsLow()
	require.NoError(t, err)
	assert.True(t, low)

	require.NoError(t, pin.SetHigh())
	high, err := pin.IsHigh()
	require.NoError(t, err)
	assert.True(t, high)
	assert.Equal(t, High, pin.State())
}

func TestToggle(t *testing.T) {
	pin := WithState(hal.Low)
	require.NoError(t, pin.Toggle())
	high, err := pin.IsSetHigh()
	require.NoError(t, err)
	assert.True(t, high)

	require.NoError(t, pin.Toggle())
	assert.Equal(t, Low, pin.State())
}

func TestToggleUninitializedFails(t *testing.T) {
	pin := New()
	err := pin.Toggle()
	assert.True(t, errors.Is(err, ErrStateNotSet))
	assert.Equal(t, Uninitialized, pin.State())
}

func TestWaitForLevel(t *testing.T) {
	assert.True(t, poll(WithState(hal.High).WaitForHigh()).IsReady())
	assert.True(t, poll(WithState(hal.Low).WaitForHigh()).IsPending())
	assert.True(t, poll(WithState(hal.Low).WaitForLow()).IsReady())
	assert.True(t, poll(WithState(hal.High).WaitForLow()).IsPending())
}

func TestWaitForLevelUninitializedStaysPending(t *testing.T) {
	pin := New()
	p := poll(pin.WaitForHigh())
	assert.True(t, p.IsPending())
	assert.NoError(t, p.Err())
	assert.True(t, poll(pin.WaitForLow()).IsPending())
}

func TestWaitForHighResolvesAfterSet(t *testing.T) {
	pin := WithState(hal.Low)
	f := pin.WaitForHigh()
	assert.True(t, poll(f).IsPending())
	require.NoError(t, pin.SetHigh())
	assert.True(t, poll(f).IsReady())
}

func TestWaitForRisingEdge(t *testing.T) {
	pin := WithState(hal.High)
	f := pin.WaitForRisingEdge()
	assert.True(t, poll(f).IsPending(), "already high is not a rising edge")

	require.NoError(t, pin.SetLow())
	assert.True(t, poll(f).IsPending())

	require.NoError(t, pin.SetHigh())
	assert.True(t, poll(f).IsReady())
}

func TestWaitForFallingEdge(t *testing.T) {
	pin := WithState(hal.Low)
	f := pin.WaitForFallingEdge()
	assert.True(t, poll(f).IsPending(), "already low is not a falling edge")

	require.NoError(t, pin.SetHigh())
	assert.True(t, poll(f).IsPending())

	require.NoError(t, pin.SetLow())
	assert.True(t, poll(f).IsReady())
}

func TestWaitForAnyEdge(t *testing.T) {
	t.Run("WhileHigh", func(t *testing.T) {
		pin := WithState(hal.High)
		f := pin.WaitForAnyEdge()
		assert.True(t, poll(f).IsPending())
		require.NoError(t, pin.SetLow())
		assert.True(t, poll(f).IsReady())
	})
	t.Run("WhileLow", func(t *testing.T) {
		pin := WithState(hal.Low)
		f := pin.WaitForAnyEdge()
		assert.True(t, poll(f).IsPending())
		require.NoError(t, pin.SetHigh())
		assert.True(t, poll(f).IsReady())
	})
	t.Run("Uninitialized", func(t *testing.T) {
		p := poll(New().WaitForAnyEdge())
		assert.True(t, p.IsReady())
		assert.True(t, errors.Is(p.Err(), ErrStateNotSet))
	})
}

func TestWaitForAnyEdgeReadsOnFirstPoll(t *testing.T) {
	pin := New()
	f := pin.WaitForAnyEdge()
	// Level set after construction but before the first poll counts.
	require.NoError(t, pin.SetLow())
	assert.True(t, poll(f).IsPending())
	require.NoError(t, pin.SetHigh())
	assert.True(t, poll(f).IsReady())
}

func TestEdgeWaitsOnUnsetPin(t *testing.T) {
	assert.True(t, poll(New().WaitForRisingEdge()).IsPending())
	assert.True(t, poll(New().WaitForFallingEdge()).IsPending())

	p := poll(New().WaitForAnyEdge())
	require.True(t, p.IsReady())
	assert.True(t, errors.Is(p.Err(), ErrStateNotSet))
}
