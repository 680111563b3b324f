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

package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/SwitchHal/pkg/config"
	"github.com/binkynet/SwitchHal/pkg/service"
)

type fakeService struct {
	switches []service.Status
	executed []string
	err      error
}

func (f *fakeService) Switches() []service.Status {
	return f.switches
}

func (f *fakeService) Execute(name string, action service.Action) (service.Status, error) {
	f.executed = append(f.executed, name+":"+string(action))
	return service.Status{}, f.err
}

func newFakeService() *fakeService {
	on := true
	active := false
	return &fakeService{
		switches: []service.Status{
			{Name: "lamp", Kind: config.KindOutput, Polarity: "active-low", On: &on},
			{Name: "button", Kind: config.KindInput, Polarity: "active-high", Active: &active},
		},
	}
}

func press(t *testing.T, c Console, keys string) Console {
	m, _ := c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	result, ok := m.(Console)
	require.True(t, ok)
	return result
}

func TestConsoleView(t *testing.T) {
	c := NewConsole(newFakeService())
	view := c.View()
	assert.Contains(t, view, "lamp")
	assert.Contains(t, view, "button")
	assert.Contains(t, view, "inactive")
}

func TestConsoleCommands(t *testing.T) {
	svc := newFakeService()
	c := NewConsole(svc)

	c = press(t, c, "t")
	c = press(t, c, "j")
	c = press(t, c, "j")
	assert.Equal(t, 1, c.cursor)
	c = press(t, c, "k")
	c = press(t, c, "0")
	c = press(t, c, "1")
	assert.Equal(t, []string{"lamp:toggle", "lamp:off", "lamp:on"}, svc.executed)
	assert.Empty(t, c.message)
}

func TestConsoleShowsErrors(t *testing.T) {
	svc := newFakeService()
	svc.err = errors.New("not an output")
	c := press(t, NewConsole(svc), "j")
	c = press(t, c, "t")
	assert.Contains(t, c.message, "button toggle: not an output")
	assert.Contains(t, c.View(), "not an output")
}

func TestConsoleQuit(t *testing.T) {
	_, cmd := NewConsole(newFakeService()).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsoleRefresh(t *testing.T) {
	svc := newFakeService()
	c := NewConsole(svc)
	svc.switches = svc.switches[:1]
	m, cmd := c.Update(refreshMsg{})
	assert.NotNil(t, cmd)
	assert.Len(t, m.(Console).switches, 1)
}
