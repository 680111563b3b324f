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

package service

import (
	"context"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/SwitchHal/pkg/bridge"
	"github.com/binkynet/SwitchHal/pkg/config"
	"github.com/binkynet/SwitchHal/pkg/logging"
	"github.com/binkynet/SwitchHal/pkg/switches"
	"github.com/binkynet/SwitchHal/pkg/task"
	"github.com/binkynet/SwitchHal/pkg/util"
)

// Service hosts a set of named switches.
type Service interface {
	// Run watches all inputs and serves MQTT until the given context is canceled.
	Run(ctx context.Context) error
	// Switches returns the status of all switches, in configuration order.
	Switches() []Status
	// Get returns the status of the switch with the given name.
	Get(name string) (Status, error)
	// Execute runs the given action on the output switch with the given name.
	Execute(name string, action Action) (Status, error)
	// Subscribe registers a callback that is called on every state change.
	Subscribe(cb func(Status)) context.CancelFunc
}

// Config of the service.
type Config struct {
	Switches []config.Switch
	MQTT     config.MQTT
}

// Dependencies of the service.
type Dependencies struct {
	Logger  zerolog.Logger
	Bridges *bridge.Set
	// MQTTClient is used for the state & command topics.
	// When nil and MQTT is enabled, a client is created in Run.
	MQTTClient mqttapi.Client
	// LogWriter, when set, forwards logs to MQTT if enabled in the config.
	LogWriter logging.MQTTWriter
}

type service struct {
	Config
	Dependencies

	byName       map[string]*entry
	ordered      []*entry
	changes      *pubsub.PubSub
	publishMutex sync.Mutex
}

// entry is a single switch. Its mutex serializes all pin access.
type entry struct {
	mutex      sync.Mutex
	conf       config.Switch
	input      switches.WaitableInputSwitch
	output     switches.StatefulOutputSwitchWithToggle
	known      bool
	state      bool
	lastErr    error
	lastChange time.Time
}

// NewService opens the pins of all configured switches and returns
// the service hosting them. When a switch cannot be opened, the bridges
// are closed so already opened pins are released.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	s := &service{
		Config:       conf,
		Dependencies: deps,
		byName:       make(map[string]*entry),
		changes:      pubsub.New(),
	}
	for _, sw := range conf.Switches {
		e, err := s.open(sw)
		if err != nil {
			if deps.Bridges != nil {
				if cerr := deps.Bridges.Close(); cerr != nil {
					deps.Logger.Warn().Err(cerr).Msg("Failed to close bridges")
				}
			}
			return nil, errors.Wrapf(err, "switch '%s'", sw.Name)
		}
		s.byName[sw.Name] = e
		s.ordered = append(s.ordered, e)
	}
	return s, nil
}

// open the pin of the given switch and wrap it with its polarity.
func (s *service) open(sw config.Switch) (*entry, error) {
	polarity, err := sw.ParsePolarity()
	if err != nil {
		return nil, err
	}
	e := &entry{conf: sw}
	switch sw.Kind {
	case config.KindInput:
		pin, err := s.Bridges.Input(sw.Bridge, sw.Chip, sw.Pin)
		if err != nil {
			return nil, err
		}
		if e.input, err = switches.NewWaitableInputFor(polarity, pin); err != nil {
			return nil, err
		}
		if _, err := s.refresh(e); err != nil {
			s.Logger.Warn().Err(err).Str("name", sw.Name).Msg("Initial read failed")
		}
	case config.KindOutput:
		on, err := sw.InitialOn()
		if err != nil {
			return nil, err
		}
		level := polarity.ActiveLevel()
		if !on {
			level = level.Invert()
		}
		pin, err := s.Bridges.Output(sw.Bridge, sw.Chip, sw.Pin, level)
		if err != nil {
			return nil, err
		}
		if e.output, err = switches.NewStatefulOutputFor(polarity, pin); err != nil {
			return nil, err
		}
		e.known, e.state, e.lastChange = true, on, time.Now()
		setGauge(sw.Name, on)
	default:
		return nil, errors.Errorf("unknown kind '%s'", sw.Kind)
	}
	return e, nil
}

// Run watches all inputs and serves MQTT until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger
	g, ctx := errgroup.WithContext(ctx)
	for _, e := range s.ordered {
		if e.input != nil {
			g.Go(func() error {
				return util.UntilCanceled(ctx, log, "watch "+e.conf.Name, func() error {
					return s.watch(ctx, e)
				})
			})
		}
	}
	if s.MQTTClient != nil || s.MQTT.Enabled() {
		g.Go(func() error {
			return s.runMQTT(ctx)
		})
	}
	log.Info().Int("switches", len(s.ordered)).Msg("Service started")
	err := g.Wait()
	log.Info().Msg("Service stopped")
	return err
}

// watch reads the input, then waits for the opposite of the recorded state.
// A change between the read and the wait completes the wait immediately.
func (s *service) watch(ctx context.Context, e *entry) error {
	active, err := s.refresh(e)
	if err != nil {
		return err
	}
	wait := e.input.WaitForActive()
	if active {
		wait = e.input.WaitForInactive()
	}
	if _, err := task.Block(ctx, wait); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.recordError(e, err)
		return maskAny(err)
	}
	_, err = s.refresh(e)
	return err
}

// refresh reads the state of an input and notifies subscribers when it changed.
// It returns the state it recorded.
func (s *service) refresh(e *entry) (bool, error) {
	e.mutex.Lock()
	active, err := e.input.IsActive()
	if err != nil {
		e.lastErr = err
		e.mutex.Unlock()
		return false, maskAny(err)
	}
	wasKnown := e.known
	changed := !wasKnown || e.state != active
	e.known, e.state, e.lastErr = true, active, nil
	if changed {
		e.lastChange = time.Now()
	}
	status := e.status()
	e.mutex.Unlock()

	if changed {
		if wasKnown {
			inputChangesTotal.WithLabelValues(e.conf.Name).Inc()
		}
		setGauge(e.conf.Name, active)
		s.Logger.Debug().Str("name", e.conf.Name).Bool("active", active).Msg("Input changed")
		s.changes.Pub(status)
	}
	return active, nil
}

func (s *service) recordError(e *entry, err error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.lastErr = err
}

// Switches returns the status of all switches, in configuration order.
func (s *service) Switches() []Status {
	result := make([]Status, 0, len(s.ordered))
	for _, e := range s.ordered {
		result = append(result, e.lockedStatus())
	}
	return result
}

// Get returns the status of the switch with the given name.
func (s *service) Get(name string) (Status, error) {
	e, found := s.byName[name]
	if !found {
		return Status{}, errors.Wrapf(ErrUnknownSwitch, "'%s'", name)
	}
	return e.lockedStatus(), nil
}

// Execute runs the given action on the output switch with the given name.
func (s *service) Execute(name string, action Action) (Status, error) {
	e, found := s.byName[name]
	if !found {
		return Status{}, errors.Wrapf(ErrUnknownSwitch, "'%s'", name)
	}
	if e.output == nil {
		return Status{}, errors.Wrapf(ErrNotAnOutput, "'%s'", name)
	}
	var op func() error
	switch action {
	case ActionOn:
		op = e.output.On
	case ActionOff:
		op = e.output.Off
	case ActionToggle:
		op = e.output.Toggle
	default:
		return Status{}, errors.Wrapf(ErrInvalidAction, "'%s'", action)
	}

	e.mutex.Lock()
	commandsTotal.WithLabelValues(name, string(action)).Inc()
	err := op()
	var on bool
	if err == nil {
		on, err = e.output.IsOn()
	}
	if err != nil {
		e.lastErr = err
		e.mutex.Unlock()
		commandErrorsTotal.WithLabelValues(name).Inc()
		return Status{}, errors.Wrapf(err, "%s '%s'", action, name)
	}
	changed := !e.known || e.state != on
	e.known, e.state, e.lastErr = true, on, nil
	if changed {
		e.lastChange = time.Now()
	}
	status := e.status()
	e.mutex.Unlock()

	s.Logger.Debug().Str("name", name).Str("action", string(action)).Bool("on", on).Msg("Executed command")
	if changed {
		setGauge(name, on)
		s.changes.Pub(status)
	}
	return status, nil
}

// Subscribe registers a callback that is called on every state change.
func (s *service) Subscribe(cb func(Status)) context.CancelFunc {
	wcb := func(x Status) {
		cb(x)
	}
	s.changes.Sub(wcb)
	return func() {
		s.changes.Leave(wcb)
	}
}

// status builds the status of the entry. The mutex must be held.
func (e *entry) status() Status {
	return newStatus(e.conf, e.known, e.state, e.lastErr, e.lastChange)
}

func (e *entry) lockedStatus() Status {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.status()
}

func setGauge(name string, value bool) {
	v := 0.0
	if value {
		v = 1.0
	}
	switchActiveGauge.WithLabelValues(name).Set(v)
}
