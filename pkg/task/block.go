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
	"time"
)

const (
	minRepollDelay = time.Millisecond * 10
	maxRepollDelay = time.Millisecond * 250
)

// Block drives the given future on the calling goroutine until it
// completes or the given context is canceled.
// Between polls it waits for a wake-up from the future, or for a re-poll
// delay that starts at 10ms and grows up to 250ms, so futures that never
// wake still make progress.
func Block[T any](ctx context.Context, f Future[T]) (T, error) {
	woken := make(chan struct{}, 1)
	waker := WakerFunc(func() {
		select {
		case woken <- struct{}{}:
		default:
			// Wake-up already queued
		}
	})
	delay := minRepollDelay
	for {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		if p := f.Poll(waker); p.IsReady() {
			return p.Result()
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-woken:
			delay = minRepollDelay
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * 1.5)
			if delay > maxRepollDelay {
				delay = maxRepollDelay
			}
		}
	}
}
