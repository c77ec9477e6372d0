package ui

import (
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/session"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// BusMsg carries a message that arrived through the Bus. The root model
// re-arms the bus listener whenever it sees one.
type BusMsg struct {
	Msg interface{}
}

// ClockMsg drives the header clock and banner expiry.
type ClockMsg struct {
	Time time.Time
}

// AuthResultMsg is the outcome of a login or register attempt.
type AuthResultMsg struct {
	Register bool
	User     session.User
	Err      error
}

// SessionRestoredMsg reports whether an existing server session was found.
type SessionRestoredMsg struct {
	OK   bool
	User session.User
}

// LoggedOutMsg is sent once the local session has been cleared.
type LoggedOutMsg struct{}

// ChartLoadedMsg reports a finished chart load.
type ChartLoadedMsg struct {
	Symbol    string
	Timeframe string
	Points    int
}

// PriceMsg carries a refreshed price display.
type PriceMsg struct {
	Quote   chart.Quote
	Changed bool
}

// PortfolioMsg carries a freshly applied portfolio snapshot.
type PortfolioMsg struct {
	Snapshot *orders.Snapshot
}

// OrderResultMsg is the outcome of placing or closing an order.
type OrderResultMsg struct {
	Outcome orders.Outcome
	Err     error
}

// ReplayMsg carries a historical bar fetched on demand.
type ReplayMsg struct {
	Date string
	Bar  *api.Bar
	Err  error
}

// ExportedMsg reports where the trade history was written.
type ExportedMsg struct {
	Path string
	Err  error
}

// AlertMsg opens the blocking prompt.
type AlertMsg struct {
	Text string
}

// Route represents different screens in the application
type Route int

const (
	RouteLogin Route = iota
	RouteRegister
	RouteTrading
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteRegister:
		return "register"
	case RouteTrading:
		return "trading"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
