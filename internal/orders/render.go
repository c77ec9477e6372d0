package orders

import (
	"strings"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/sanitize"
	"github.com/shopspring/decimal"
)

const (
	NoPositionsText = "No open positions"
	NoHistoryText   = "No trade history"
)

// PositionRow is an open position formatted for display. All text is
// sanitized.
type PositionRow struct {
	ID         string
	Symbol     string
	Type       string
	Size       string
	Open       string
	StopLoss   string
	TakeProfit string
	Buy        bool
}

// HistoryRow is a closed trade formatted for display.
type HistoryRow struct {
	Symbol   string
	Type     string
	Size     string
	Open     string
	Close    string
	PnL      string
	Buy      bool
	Positive bool
}

// PositionRows formats open positions in backend order.
func PositionRows(positions []api.Position) []PositionRow {
	rows := make([]PositionRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, PositionRow{
			ID:         sanitize.Text(p.ID),
			Symbol:     sanitize.Text(p.Symbol),
			Type:       strings.ToUpper(sanitize.Text(string(p.Type))),
			Size:       p.LotSize.String(),
			Open:       money4(p.OpenPrice),
			StopLoss:   optionalLevel(p.StopLoss),
			TakeProfit: optionalLevel(p.TakeProfit),
			Buy:        p.Type == api.Buy,
		})
	}
	return rows
}

// HistoryRows formats closed trades in the order given, which for a Snapshot
// is most recent first.
func HistoryRows(history []api.Position) []HistoryRow {
	rows := make([]HistoryRow, 0, len(history))
	for _, p := range history {
		pnl := p.PnL.Decimal
		rows = append(rows, HistoryRow{
			Symbol:   sanitize.Text(p.Symbol),
			Type:     strings.ToUpper(sanitize.Text(string(p.Type))),
			Size:     p.LotSize.String(),
			Open:     money4(p.OpenPrice),
			Close:    money4(p.ClosePrice.Decimal),
			PnL:      "$" + pnl.StringFixed(2),
			Buy:      p.Type == api.Buy,
			Positive: !pnl.IsNegative(),
		})
	}
	return rows
}

func money4(d decimal.Decimal) string {
	return "$" + d.StringFixed(4)
}

// optionalLevel renders SL/TP; null and zero both mean "not set".
func optionalLevel(d decimal.NullDecimal) string {
	if !d.Valid || d.Decimal.IsZero() {
		return "-"
	}
	return money4(d.Decimal)
}
