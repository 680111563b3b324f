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
	"strings"

	"github.com/pkg/errors"

	"github.com/binkynet/SwitchHal/pkg/hal"
)

var (
	// ErrUnknownPolarity is returned when parsing an unsupported polarity name.
	ErrUnknownPolarity = errors.New("unknown polarity")
)

// Polarity selects how logical states map to electrical levels.
// The only implementations are ActiveHigh and ActiveLow; the unexported
// method keeps other packages from adding more.
type Polarity interface {
	// ActiveLevel returns the electrical level of the active / on state.
	ActiveLevel() hal.Level
	// String returns the configuration name of the polarity.
	String() string
	polarity()
}

// ActiveHigh is the polarity where active / on is a high level.
type ActiveHigh struct{}

// ActiveLow is the polarity where active / on is a low level.
type ActiveLow struct{}

// ActiveLevel returns hal.High.
func (ActiveHigh) ActiveLevel() hal.Level { return hal.High }

// String returns "active-high".
func (ActiveHigh) String() string { return "active-high" }

// ActiveLevel returns hal.Low.
func (ActiveLow) ActiveLevel() hal.Level { return hal.Low }

// String returns "active-low".
func (ActiveLow) String() string { return "active-low" }

func (ActiveHigh) polarity() {}
func (ActiveLow) polarity()  {}

// ParsePolarity returns the polarity with the given name.
// An empty name means active-high.
func ParsePolarity(name string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "active-high", "activehigh", "high":
		return ActiveHigh{}, nil
	case "active-low", "activelow", "low":
		return ActiveLow{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolarity, "'%s'", name)
	}
}

// activeLevel returns the active level of polarity type A.
func activeLevel[A Polarity]() hal.Level {
	var a A
	return a.ActiveLevel()
}
