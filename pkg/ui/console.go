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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/binkynet/SwitchHal/pkg/config"
	"github.com/binkynet/SwitchHal/pkg/service"
)

const refreshInterval = time.Second

// Service that the console shows and controls.
type Service interface {
	Switches() []service.Status
	Execute(name string, action service.Action) (service.Status, error)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	On     key.Binding
	Off    key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.On, k.Off, k.Toggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	On:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "on")),
	Off:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "off")),
	Toggle: key.NewBinding(key.WithKeys("t", " ", "enter"), key.WithHelp("t", "toggle")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "disconnect")),
}

// Console is a terminal view of all switches.
type Console struct {
	service  Service
	help     help.Model
	switches []service.Status
	cursor   int
	message  string
	width    int
}

var _ tea.Model = Console{}

// NewConsole creates a console for the given service.
func NewConsole(svc Service) Console {
	return Console{
		service:  svc,
		help:     help.New(),
		switches: svc.Switches(),
	}
}

type refreshMsg struct{}

func doRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// Init starts the periodic refresh.
func (c Console) Init() tea.Cmd {
	return doRefresh()
}

// Update handles key presses and refreshes.
func (c Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		c.switches = c.service.Switches()
		return c, doRefresh()
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return c, tea.Quit
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.switches)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.On):
			c = c.execute(service.ActionOn)
		case key.Matches(msg, keys.Off):
			c = c.execute(service.ActionOff)
		case key.Matches(msg, keys.Toggle):
			c = c.execute(service.ActionToggle)
		}
	}
	return c, nil
}

func (c Console) execute(action service.Action) Console {
	if c.cursor >= len(c.switches) {
		return c
	}
	name := c.switches[c.cursor].Name
	if _, err := c.service.Execute(name, action); err != nil {
		c.message = fmt.Sprintf("%s %s: %v", name, action, err)
	} else {
		c.message = ""
	}
	c.switches = c.service.Switches()
	return c
}

// View renders the switch table.
func (c Console) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Switches") + "\n\n")
	for i, st := range c.switches {
		cursor := "  "
		if i == c.cursor {
			cursor = cursorStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%-16s %-6s %-11s %s", cursor, st.Name, st.Kind, st.Polarity, stateView(st))
		if st.Since != "" {
			b.WriteString("  " + inactiveStyle.Render(st.Since))
		}
		b.WriteString("\n")
	}
	if c.message != "" {
		b.WriteString("\n" + errorStyle.Render(c.message) + "\n")
	}
	b.WriteString("\n" + c.help.View(keys) + "\n")
	return b.String()
}

func stateView(st service.Status) string {
	if st.Error != "" {
		return errorStyle.Render("error")
	}
	state, known := st.IsSet()
	switch {
	case !known:
		return inactiveStyle.Render("unknown")
	case st.Kind == config.KindInput && state:
		return activeStyle.Render("active")
	case st.Kind == config.KindInput:
		return inactiveStyle.Render("inactive")
	case state:
		return activeStyle.Render("on")
	default:
		return inactiveStyle.Render("off")
	}
}
