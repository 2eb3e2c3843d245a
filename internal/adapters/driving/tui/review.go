// Package tui implements the interactive review screen following the
// Elm architecture.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driving"
)

// keyMap defines the review screen key bindings.
type keyMap struct {
	Analyze key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Analyze: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analyze")),
		Confirm: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "commit")),
		Cancel:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)
	newStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	updatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle    = lipgloss.NewStyle().Faint(true).Padding(1, 1, 0, 1)
)

// analyzedMsg carries the result of an analyze run.
type analyzedMsg struct {
	set *domain.ClassificationSet
	err error
}

// committedMsg carries the result of a confirm.
type committedMsg struct {
	result *domain.CommitResult
	err    error
}

// Model is the review screen for one collection.
type Model struct {
	coordinator driving.ReviewCoordinator
	ctx         context.Context
	keys        keyMap
	spinner     spinner.Model

	set     *domain.ClassificationSet
	result  *domain.CommitResult
	err     error
	working bool
	offset  int
	height  int
}

// NewModel creates a review model bound to one coordinator.
func NewModel(ctx context.Context, coordinator driving.ReviewCoordinator) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		coordinator: coordinator,
		ctx:         ctx,
		keys:        defaultKeyMap(),
		spinner:     s,
		height:      24,
	}
}

// Init starts with an immediate analyze.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.analyzeCmd())
}

func (m Model) analyzeCmd() tea.Cmd {
	return func() tea.Msg {
		set, err := m.coordinator.Analyze(m.ctx)
		return analyzedMsg{set: set, err: err}
	}
}

func (m Model) confirmCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := m.coordinator.Confirm(m.ctx)
		return committedMsg{result: result, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analyzedMsg:
		m.working = false
		m.set, m.err = msg.set, msg.err
		m.offset = 0
		return m, nil

	case committedMsg:
		m.working = false
		m.result, m.err = msg.result, msg.err
		if msg.err == nil {
			m.set = nil
		}
		return m, nil

	case tea.KeyMsg:
		if m.working {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Analyze):
			m.working = true
			m.result = nil
			return m, tea.Batch(m.spinner.Tick, m.analyzeCmd())
		case key.Matches(msg, m.keys.Confirm):
			if m.set == nil || m.set.Pending() == 0 {
				return m, nil
			}
			m.working = true
			return m, tea.Batch(m.spinner.Tick, m.confirmCmd())
		case key.Matches(msg, m.keys.Cancel):
			m.coordinator.Cancel()
			m.set = nil
			m.result = nil
			m.err = nil
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.offset > 0 {
				m.offset--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.offset++
			return m, nil
		}
	}
	return m, nil
}

// View renders the review screen.
func (m Model) View() string {
	out := headerStyle.Render(fmt.Sprintf("opsync review: %s", m.coordinator.Collection())) + "\n"

	switch {
	case m.working:
		out += statusStyle.Render(m.spinner.View()+" working...") + "\n"
	case m.err != nil:
		out += errStyle.Render("error: "+m.err.Error()) + "\n"
	case m.result != nil:
		out += statusStyle.Render(fmt.Sprintf("committed %d records (%d created, %d updated)",
			m.result.Written(), m.result.Created, m.result.Updated)) + "\n"
	}

	if m.set != nil {
		out += statusStyle.Render(fmt.Sprintf("%d new, %d updated, %d unchanged (%d skipped, %d deduplicated)",
			len(m.set.New), len(m.set.Updated), len(m.set.Unchanged),
			m.set.Skipped, m.set.Deduplicated)) + "\n\n"
		out += m.renderChanges()
	}

	out += helpStyle.Render("a analyze · c commit · x cancel · j/k scroll · q quit")
	return out
}

// renderChanges lists pending changes with scrolling.
func (m Model) renderChanges() string {
	lines := make([]string, 0, m.set.Pending())
	for _, cls := range m.set.New {
		lines = append(lines, newStyle.Render("  + "+changeLine(cls)))
	}
	for _, cls := range m.set.Updated {
		lines = append(lines, updatedStyle.Render("  ~ "+changeLine(cls)))
	}

	visible := m.height - 8
	if visible < 1 {
		visible = 1
	}
	offset := m.offset
	if offset > len(lines)-visible {
		offset = len(lines) - visible
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + visible
	if end > len(lines) {
		end = len(lines)
	}

	out := ""
	for _, line := range lines[offset:end] {
		out += line + "\n"
	}
	if len(lines) > end {
		out += statusStyle.Render(fmt.Sprintf("  ... %d more", len(lines)-end)) + "\n"
	}
	return out
}

func changeLine(cls domain.Classification) string {
	return fmt.Sprintf("%s  %s  %s",
		cls.NaturalKey,
		cls.Incoming.Timestamp.Format("2006-01-02 15:04"),
		cls.Incoming.Subject)
}

// Run starts the review program and blocks until it exits.
func Run(ctx context.Context, coordinator driving.ReviewCoordinator) error {
	program := tea.NewProgram(NewModel(ctx, coordinator), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
