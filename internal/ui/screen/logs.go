package screen

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"github.com/rovshanmuradov/paper-trader/internal/ui/component"
	"github.com/rovshanmuradov/paper-trader/internal/ui/router"
	"github.com/rovshanmuradov/paper-trader/internal/ui/style"
)

// LogsScreen shows the whole in-memory log buffer.
type LogsScreen struct {
	services ui.ServiceProvider
	keyMap   ui.KeyMap
	viewer   *component.CompactLogViewer
	helpBar  *component.HelpBar
	width    int
	height   int
}

// NewLogsScreen creates a new logs screen
func NewLogsScreen(sp ui.ServiceProvider) *LogsScreen {
	keyMap := ui.DefaultKeyMap()
	viewer := component.NewCompactLogViewer(sp.GetLogBuffer())
	viewer.SetTitle("Application Logs")
	viewer.SetLimit(0)
	viewer.ToggleLogLevel("debug")

	return &LogsScreen{
		services: sp,
		keyMap:   keyMap,
		viewer:   viewer,
		helpBar: component.NewHelpBar().
			SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),
	}
}

// Init initializes the logs screen
func (s *LogsScreen) Init() tea.Cmd {
	s.viewer.Refresh()
	return nil
}

// Update handles filter keys, scrolling and periodic refresh
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.ClockMsg:
		s.viewer.Refresh()
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.FilterError):
			s.viewer.ToggleLogLevel("error")
			return s, nil
		case key.Matches(msg, s.keyMap.FilterWarn):
			s.viewer.ToggleLogLevel("warning")
			return s, nil
		case key.Matches(msg, s.keyMap.FilterInfo):
			s.viewer.ToggleLogLevel("info")
			return s, nil
		case key.Matches(msg, s.keyMap.FilterDebug):
			s.viewer.ToggleLogLevel("debug")
			return s, nil
		}
	}

	return s, s.viewer.Update(msg)
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	var stats string
	if buf := s.services.GetLogBuffer(); buf != nil {
		total, spilled := buf.GetStats()
		stats = style.MutedStyle.Render(fmt.Sprintf("%d entries logged, %d spilled to disk", total, spilled))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.viewer.View(),
		stats,
		s.helpBar.View(),
	)
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewer.SetSize(width, height-4)
	s.helpBar.SetWidth(width)
}
