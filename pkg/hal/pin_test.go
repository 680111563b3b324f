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

package hal

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/SwitchHal/pkg/task"
)

// memPin is a minimal pin that knows its level and wakes on change.
type memPin struct {
	level   Level
	readErr error
}

func (p *memPin) SetLow() error  { p.level = Low; return nil }
func (p *memPin) SetHigh() error { p.level = High; return nil }
func (p *memPin) IsSetLow() (bool, error) {
	return p.level == Low, p.readErr
}

func (p *memPin) waiter() LevelWaiter {
	return LevelWaiter{
		WaitForLevel: func(level Level) task.Future[task.Unit] {
			return task.FutureFunc[task.Unit](func(task.Waker) task.Poll[task.Unit] {
				if p.level == level {
					return task.Ready(task.Unit{})
				}
				return task.Pending[task.Unit]()
			})
		},
		ReadHigh: func() (bool, error) {
			return p.level == High, p.readErr
		},
	}
}

func poll(f task.Future[task.Unit]) task.Poll[task.Unit] {
	return f.Poll(task.NoopWaker)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "High", High.String())
	assert.Equal(t, "Low", Low.String())
	assert.Equal(t, Low, High.Invert())
	assert.Equal(t, High, Low.Invert())
}

func TestToggle(t *testing.T) {
	p := &memPin{level: Low}
	require.NoError(t, Toggle(p))
	assert.Equal(t, High, p.level)
	require.NoError(t, Toggle(p))
	assert.Equal(t, Low, p.level)

	readErr := errors.New("read failed")
	p.readErr = readErr
	assert.Same(t, readErr, Toggle(p))
	assert.Equal(t, Low, p.level)
}

func TestSet(t *testing.T) {
	p := &memPin{}
	require.NoError(t, Set(p, High))
	assert.Equal(t, High, p.level)
	require.NoError(t, Set(p, Low))
	assert.Equal(t, Low, p.level)
}

func TestLevelWaiterEdges(t *testing.T) {
	p := &memPin{level: High}
	w := p.waiter()

	rising := w.WaitForRisingEdge()
	assert.True(t, poll(rising).IsPending())
	p.level = Low
	assert.True(t, poll(rising).IsPending())
	p.level = High
	assert.True(t, poll(rising).IsReady())

	falling := w.WaitForFallingEdge()
	assert.True(t, poll(falling).IsPending())
	p.level = Low
	assert.True(t, poll(falling).IsReady())
}

func TestLevelWaiterAnyEdge(t *testing.T) {
	p := &memPin{level: Low}
	w := p.waiter()

	f := w.WaitForAnyEdge()
	p.level = High
	// The level is sampled on first poll, so this waits for a falling edge.
	assert.True(t, poll(f).IsPending())
	p.level = Low
	assert.True(t, poll(f).IsReady())

	readErr := errors.New("read failed")
	p.readErr = readErr
	res := poll(w.WaitForAnyEdge())
	assert.True(t, res.IsReady())
	assert.Same(t, readErr, res.Err())
}
