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

package util

import "sync/atomic"

// Claim is a non-blocking exclusive claim.
// The zero value is unclaimed.
type Claim struct {
	held atomic.Bool
}

// TryAcquire takes the claim and returns true when it was free.
func (c *Claim) TryAcquire() bool {
	return c.held.CompareAndSwap(false, true)
}

// Release frees the claim.
func (c *Claim) Release() {
	c.held.Store(false)
}
