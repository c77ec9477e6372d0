package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Help      key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Authentication
	Submit     key.Binding
	SwitchAuth key.Binding

	// Trading
	Buy        key.Binding
	Sell       key.Binding
	CloseOrder key.Binding
	EditTicket key.Binding
	Timeframe  key.Binding
	NextSymbol key.Binding
	PrevSymbol key.Binding
	Replay     key.Binding
	Refresh    key.Binding
	Export     key.Binding
	Logout     key.Binding
	ToggleLogs key.Binding
	Logs       key.Binding

	// Alerts
	Dismiss key.Binding

	// Logs
	FilterError key.Binding
	FilterWarn  key.Binding
	FilterInfo  key.Binding
	FilterDebug key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Global navigation
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),

		// Authentication
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		SwitchAuth: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "login/register"),
		),

		// Trading
		Buy: key.NewBinding(
			key.WithKeys("b", "f2"),
			key.WithHelp("b/F2", "buy"),
		),
		Sell: key.NewBinding(
			key.WithKeys("s", "f3"),
			key.WithHelp("s/F3", "sell"),
		),
		CloseOrder: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close position"),
		),
		EditTicket: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit ticket"),
		),
		Timeframe: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "timeframe"),
		),
		NextSymbol: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next symbol"),
		),
		PrevSymbol: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev symbol"),
		),
		Replay: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "replay date"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/F5", "refresh"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export history"),
		),
		Logout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "logout"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "toggle logs"),
		),
		Logs: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("F12", "logs"),
		),

		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
			key.WithHelp("enter", "dismiss"),
		),

		// Logs
		FilterError: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "errors"),
		),
		FilterWarn: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "warnings"),
		),
		FilterInfo: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "info"),
		),
		FilterDebug: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "debug"),
		),
	}
}

// ShortHelp returns key help text for the current context
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns extended help text for the trading screen
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Buy, k.Sell, k.CloseOrder, k.EditTicket},
		{k.Up, k.Down, k.Tab, k.Back},
		{k.NextSymbol, k.PrevSymbol, k.Timeframe, k.Replay},
		{k.Refresh, k.Export, k.ToggleLogs, k.Logs},
		{k.Logout, k.Help, k.Quit},
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteLogin, RouteRegister:
		return []key.Binding{k.Tab, k.Enter, k.SwitchAuth, k.ForceQuit}
	case RouteTrading:
		return []key.Binding{k.Buy, k.Sell, k.CloseOrder, k.EditTicket, k.Timeframe, k.NextSymbol, k.Refresh, k.Logout, k.Help, k.Quit}
	case RouteLogs:
		return []key.Binding{k.FilterError, k.FilterWarn, k.FilterInfo, k.FilterDebug, k.Back, k.Quit}
	default:
		return k.ShortHelp()
	}
}
