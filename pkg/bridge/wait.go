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
	"github.com/binkynet/SwitchHal/pkg/task"
)

// wakeList holds the wakers of pending level waits on a single pin.
// Pins that observe level changes (writes, edge events, MQTT messages)
// call wakeAll so blocked waits are polled again.
type wakeList struct {
	mutex  sync.Mutex
	wakers map[*levelWait]task.Waker
}

// levelWait identifies a single wait future.
type levelWait struct {
	level hal.Level
}

func (l *wakeList) register(id *levelWait, w task.Waker) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.wakers == nil {
		l.wakers = make(map[*levelWait]task.Waker)
	}
	l.wakers[id] = w
}

func (l *wakeList) unregister(id *levelWait) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.wakers, id)
}

// wakeAll wakes and forgets all registered wakers.
func (l *wakeList) wakeAll() {
	l.mutex.Lock()
	wakers := l.wakers
	l.wakers = nil
	l.mutex.Unlock()

	for _, w := range wakers {
		w.Wake()
	}
}

// newLevelWaiter builds the waits of a pin from a level reader.
// Every poll reads the pin. When wakers is nil, the pin has no way to
// signal changes and waits rely on the driver re-polling them.
func newLevelWaiter(readHigh func() (bool, error), wakers *wakeList) hal.LevelWaiter {
	return hal.LevelWaiter{
		ReadHigh: readHigh,
		WaitForLevel: func(level hal.Level) task.Future[task.Unit] {
			id := &levelWait{level: level}
			return task.FutureFunc[task.Unit](func(w task.Waker) task.Poll[task.Unit] {
				// Register before reading, so a change in between still wakes us.
				if wakers != nil {
					wakers.register(id, w)
				}
				high, err := readHigh()
				if err != nil || hal.Level(high) == level {
					if wakers != nil {
						wakers.unregister(id)
					}
					if err != nil {
						return task.Failed[task.Unit](err)
					}
					return task.Ready(task.Unit{})
				}
				return task.Pending[task.Unit]()
			})
		},
	}
}
