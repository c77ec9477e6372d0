// Package app holds the root terminal model: it switches between the login,
// register and trading screens and owns the blocking alert.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"github.com/rovshanmuradov/paper-trader/internal/ui/component"
	"github.com/rovshanmuradov/paper-trader/internal/ui/router"
	"github.com/rovshanmuradov/paper-trader/internal/ui/screen"
	"go.uber.org/zap"
)

// Model is the root bubbletea model.
type Model struct {
	services ui.ServiceProvider
	router   *router.Router
	alert    *component.Alert
	keyMap   ui.KeyMap
	logger   *zap.Logger

	route  ui.Route
	width  int
	height int
}

// New creates the root model showing the login screen.
func New(sp ui.ServiceProvider) *Model {
	return &Model{
		services: sp,
		router:   router.New(screen.NewLoginScreen(sp)),
		alert:    component.NewAlert(),
		keyMap:   ui.DefaultKeyMap(),
		logger:   sp.GetLogger().Named("app"),
		route:    ui.RouteLogin,
	}
}

// Route returns the active top-level screen.
func (m *Model) Route() ui.Route {
	return m.route
}

// Alert exposes the blocking prompt.
func (m *Model) Alert() *component.Alert {
	return m.alert
}

// Screen returns the screen on top of the navigation stack.
func (m *Model) Screen() router.Screen {
	return m.router.Current()
}

// Init starts the bus listener, the clock and the session check.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		m.services.GetBus().Listen(),
		ui.ClockCmd(),
		ui.RestoreCmd(m.services),
	)
}

// Update handles application-level messages and forwards the rest to the
// active screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.BusMsg:
		_, cmd := m.Update(msg.Msg)
		return m, tea.Batch(cmd, m.services.GetBus().Listen())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.router.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.ForceQuit) {
			return m, tea.Quit
		}
		if m.alert.Open() {
			if key.Matches(msg, m.keyMap.Dismiss) {
				m.alert.Dismiss()
			}
			return m, nil
		}
		return m, m.forward(msg)

	case ui.ClockMsg:
		return m, tea.Batch(m.forward(msg), ui.ClockCmd())

	case ui.AlertMsg:
		if msg.Text != "" {
			m.alert.Show(msg.Text)
		}
		return m, nil

	case ui.RouterMsg:
		return m, m.navigate(msg.To)

	case ui.AuthResultMsg:
		cmd := m.forward(msg)
		if msg.Err == nil {
			m.logger.Info("Authenticated", zap.Bool("register", msg.Register))
			return m, tea.Batch(cmd, m.navigate(ui.RouteTrading))
		}
		return m, cmd

	case ui.SessionRestoredMsg:
		if msg.OK && (m.route == ui.RouteLogin || m.route == ui.RouteRegister) {
			m.logger.Info("Existing session restored")
			return m, m.navigate(ui.RouteTrading)
		}
		return m, nil

	case ui.LoggedOutMsg:
		m.alert.Dismiss()
		return m, m.navigate(ui.RouteLogin)

	case ui.PortfolioMsg, ui.PriceMsg:
		if m.route != ui.RouteTrading {
			return m, nil
		}
	}

	return m, m.forward(msg)
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	_, cmd := m.router.Update(msg)
	return cmd
}

func (m *Model) navigate(route ui.Route) tea.Cmd {
	loggedIn := m.services.GetSession().LoggedIn()

	switch route {
	case ui.RouteLogin, ui.RouteRegister:
		if loggedIn {
			return nil
		}
		m.route = route
		if route == ui.RouteRegister {
			return m.router.Reset(screen.NewRegisterScreen(m.services))
		}
		return m.router.Reset(screen.NewLoginScreen(m.services))

	case ui.RouteTrading:
		if !loggedIn {
			return nil
		}
		m.route = route
		return m.router.Reset(screen.NewTradingScreen(m.services))

	case ui.RouteLogs:
		if _, ok := m.router.Current().(*screen.LogsScreen); ok {
			return nil
		}
		return m.router.Push(screen.NewLogsScreen(m.services))
	}
	return nil
}

// View renders the active screen, or the alert on top of everything.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.alert.Open() {
		return m.alert.View(m.width, m.height)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(m.height).Render(m.router.View())
}
