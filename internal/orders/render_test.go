package orders

import (
	"testing"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionRows(t *testing.T) {
	rows := PositionRows([]api.Position{
		{
			ID: "o-1", Symbol: "XAUUSD", Type: api.Buy, LotSize: dec("0.5"), OpenPrice: dec("1901.2"),
			StopLoss: decimal.NewNullDecimal(dec("1890")), TakeProfit: decimal.NewNullDecimal(decimal.Zero),
		},
		{ID: "o-2", Symbol: "EUR\x1b[31mUSD", Type: api.Sell, LotSize: dec("1"), OpenPrice: dec("1.0812")},
	})
	require.Len(t, rows, 2)

	assert.Equal(t, PositionRow{
		ID: "o-1", Symbol: "XAUUSD", Type: "BUY", Size: "0.5", Open: "$1901.2000",
		StopLoss: "$1890.0000", TakeProfit: "-", Buy: true,
	}, rows[0])
	assert.Equal(t, "EURUSD", rows[1].Symbol)
	assert.Equal(t, "SELL", rows[1].Type)
	assert.Equal(t, "-", rows[1].StopLoss)
}

func TestHistoryRows(t *testing.T) {
	rows := HistoryRows([]api.Position{closedOrder(0), {
		Symbol: "EURUSD", Type: api.Buy, LotSize: dec("1"), OpenPrice: dec("1.08"),
		ClosePrice: decimal.NewNullDecimal(dec("1.07")), PnL: decimal.NewNullDecimal(dec("-10")),
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, "$0.00", rows[0].PnL)
	assert.True(t, rows[0].Positive)
	assert.Equal(t, "$1899.0000", rows[0].Close)
	assert.Equal(t, "$-10.00", rows[1].PnL)
	assert.False(t, rows[1].Positive)
}
