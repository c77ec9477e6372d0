package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/export"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"go.uber.org/zap"
)

// ClockCmd ticks once per second aligned to the wall clock.
func ClockCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return ClockMsg{Time: t}
	})
}

// Navigate returns a command that switches to route.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// Alert returns a command that opens the blocking prompt.
func Alert(text string) tea.Cmd {
	return func() tea.Msg {
		return AlertMsg{Text: text}
	}
}

// LoginCmd authenticates with the backend.
func LoginCmd(sp ServiceProvider, username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := sp.GetSession().Login(sp.GetContext(), username, password)
		return AuthResultMsg{User: user, Err: err}
	}
}

// RegisterCmd creates an account and logs into it.
func RegisterCmd(sp ServiceProvider, username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := sp.GetSession().Register(sp.GetContext(), username, password)
		return AuthResultMsg{Register: true, User: user, Err: err}
	}
}

// RestoreCmd checks once for an existing server session.
func RestoreCmd(sp ServiceProvider) tea.Cmd {
	return func() tea.Msg {
		sess := sp.GetSession()
		if !sess.Restore(sp.GetContext()) {
			return SessionRestoredMsg{}
		}
		user, _ := sess.Current()
		return SessionRestoredMsg{OK: true, User: user}
	}
}

// LogoutCmd ends the session. The local state is cleared whatever the
// backend answers.
func LogoutCmd(sp ServiceProvider) tea.Cmd {
	return func() tea.Msg {
		if err := sp.GetSession().Logout(sp.GetContext()); err != nil {
			sp.GetLogger().Debug("Logout request failed", zap.Error(err))
		}
		sp.GetOrders().Reset()
		return LoggedOutMsg{}
	}
}

// LoadChartCmd reloads the series for the active symbol and timeframe.
func LoadChartCmd(sp ServiceProvider) tea.Cmd {
	return func() tea.Msg {
		c := sp.GetChart()
		n := c.LoadChartData(sp.GetContext())
		return ChartLoadedMsg{Symbol: c.Symbol(), Timeframe: c.Timeframe(), Points: n}
	}
}

// UpdatePriceCmd refreshes the displayed price.
func UpdatePriceCmd(sp ServiceProvider) tea.Cmd {
	return func() tea.Msg {
		q, changed := sp.GetChart().UpdateCurrentPrice(sp.GetContext())
		return PriceMsg{Quote: q, Changed: changed}
	}
}

// LoadPortfolioCmd fetches the portfolio. Failures and stale responses
// produce no message.
func LoadPortfolioCmd(sp ServiceProvider) tea.Cmd {
	return func() tea.Msg {
		snap, err := sp.GetOrders().LoadPortfolio(sp.GetContext())
		if err != nil {
			return nil
		}
		return PortfolioMsg{Snapshot: snap}
	}
}

// PlaceOrderCmd opens a position from the order ticket.
func PlaceOrderCmd(sp ServiceProvider, direction api.OrderType, form orders.Form) tea.Cmd {
	return func() tea.Msg {
		out, err := sp.GetOrders().PlaceOrder(sp.GetContext(), direction, form)
		return OrderResultMsg{Outcome: out, Err: err}
	}
}

// CloseOrderCmd closes the position with id.
func CloseOrderCmd(sp ServiceProvider, id string) tea.Cmd {
	return func() tea.Msg {
		out, err := sp.GetOrders().CloseOrder(sp.GetContext(), id)
		return OrderResultMsg{Outcome: out, Err: err}
	}
}

// ReplayCmd fetches the bar for date on the active symbol.
func ReplayCmd(sp ServiceProvider, date string) tea.Cmd {
	return func() tea.Msg {
		bar, err := sp.GetChart().Replay(sp.GetContext(), date)
		return ReplayMsg{Date: date, Bar: bar, Err: err}
	}
}

// ExportHistoryCmd writes every closed order to a CSV file in the configured
// export directory.
func ExportHistoryCmd(sp ServiceProvider) tea.Cmd {
	return func() tea.Msg {
		if !sp.GetSession().LoggedIn() {
			return ExportedMsg{Err: errors.New(orders.LoginRequiredMessage)}
		}
		portfolio, err := sp.GetAPI().Portfolio(sp.GetContext())
		if err != nil {
			return ExportedMsg{Err: err}
		}
		exporter := export.NewTradeExporter(sp.GetLogger())
		path, err := exporter.ExportTrades(export.TradesFromPositions(portfolio.ClosedOrders), export.ExportOptions{
			Format:    export.FormatCSV,
			OutputDir: sp.GetConfig().ExportDir,
		})
		return ExportedMsg{Path: path, Err: err}
	}
}
