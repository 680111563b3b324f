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

package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flag is a future that is pending until set is true.
func flag(set *bool) Future[Unit] {
	return FutureFunc[Unit](func(Waker) Poll[Unit] {
		if *set {
			return Ready(Unit{})
		}
		return Pending[Unit]()
	})
}

func TestPollOutcomes(t *testing.T) {
	p := Pending[int]()
	assert.True(t, p.IsPending())
	assert.False(t, p.IsReady())

	r := Ready(7)
	assert.True(t, r.IsReady())
	v, err := r.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	f := Failed[int](errors.New("boom"))
	assert.True(t, f.IsReady())
	assert.EqualError(t, f.Err(), "boom")
}

func TestDoneAndFail(t *testing.T) {
	assert.True(t, Done(Unit{}).Poll(NoopWaker).IsReady())
	p := Fail[Unit](errors.New("broken")).Poll(NoopWaker)
	assert.True(t, p.IsReady())
	assert.EqualError(t, p.Err(), "broken")
}

func TestDeferBuildsOnFirstPoll(t *testing.T) {
	builds := 0
	f := Defer(func() Future[int] {
		builds++
		return Done(builds)
	})
	assert.Equal(t, 0, builds)
	v, err := f.Poll(NoopWaker).Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	f.Poll(NoopWaker)
	assert.Equal(t, 1, builds)
}

func TestThenIsSequential(t *testing.T) {
	var first, second bool
	built := false
	f := Then(flag(&first), func(Unit) Future[Unit] {
		built = true
		return flag(&second)
	})

	assert.True(t, f.Poll(NoopWaker).IsPending())
	assert.False(t, built, "second future must not be built before the first resolves")

	first = true
	assert.True(t, f.Poll(NoopWaker).IsPending())
	assert.True(t, built)

	// The first future is not consulted again once it resolved.
	first = false
	second = true
	assert.True(t, f.Poll(NoopWaker).IsReady())

	// Completed result is remembered.
	second = false
	assert.True(t, f.Poll(NoopWaker).IsReady())
}

func TestThenStopsOnError(t *testing.T) {
	called := false
	f := Then(Fail[Unit](errors.New("first failed")), func(Unit) Future[int] {
		called = true
		return Done(1)
	})
	p := f.Poll(NoopWaker)
	assert.True(t, p.IsReady())
	assert.EqualError(t, p.Err(), "first failed")
	assert.False(t, called)
}

func TestBlockReady(t *testing.T) {
	v, err := Block(context.Background(), Done(42))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestBlockRepollsUntilReady(t *testing.T) {
	var polls int32
	f := FutureFunc[int](func(Waker) Poll[int] {
		if atomic.AddInt32(&polls, 1) >= 3 {
			return Ready(3)
		}
		return Pending[int]()
	})
	v, err := Block[int](context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestBlockWakeUp(t *testing.T) {
	var ready int32
	f := FutureFunc[Unit](func(w Waker) Poll[Unit] {
		if atomic.LoadInt32(&ready) == 1 {
			return Ready(Unit{})
		}
		go func() {
			atomic.StoreInt32(&ready, 1)
			w.Wake()
		}()
		return Pending[Unit]()
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Block[Unit](ctx, f)
	require.NoError(t, err)
}

func TestBlockCanceled(t *testing.T) {
	never := false
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*30)
	defer cancel()
	_, err := Block(ctx, flag(&never))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
