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

import "github.com/binkynet/SwitchHal/pkg/task"

// LevelWaiter builds the edge waits of a Waiter out of its two level waits.
// Pins embed it and provide WaitForLevel.
type LevelWaiter struct {
	// WaitForLevel returns a future that resolves once the pin is at the given level.
	WaitForLevel func(level Level) task.Future[task.Unit]
	// ReadHigh reads the current level.
	ReadHigh func() (bool, error)
}

// WaitForHigh waits until the pin is high.
func (w LevelWaiter) WaitForHigh() task.Future[task.Unit] {
	return w.WaitForLevel(High)
}

// WaitForLow waits until the pin is low.
func (w LevelWaiter) WaitForLow() task.Future[task.Unit] {
	return w.WaitForLevel(Low)
}

// WaitForRisingEdge waits for the pin to be low, then high.
func (w LevelWaiter) WaitForRisingEdge() task.Future[task.Unit] {
	return w.edge(Low, High)
}

// WaitForFallingEdge waits for the pin to be high, then low.
func (w LevelWaiter) WaitForFallingEdge() task.Future[task.Unit] {
	return w.edge(High, Low)
}

// WaitForAnyEdge reads the level on first poll and waits for the edge
// leaving it. A failed read completes the future with that error.
func (w LevelWaiter) WaitForAnyEdge() task.Future[task.Unit] {
	return task.Defer(func() task.Future[task.Unit] {
		high, err := w.ReadHigh()
		if err != nil {
			return task.Fail[task.Unit](err)
		}
		if high {
			return w.WaitForFallingEdge()
		}
		return w.WaitForRisingEdge()
	})
}

func (w LevelWaiter) edge(from, to Level) task.Future[task.Unit] {
	return task.Then(w.WaitForLevel(from), func(task.Unit) task.Future[task.Unit] {
		return w.WaitForLevel(to)
	})
}
