package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the direction of a position.
type OrderType string

const (
	Buy  OrderType = "buy"
	Sell OrderType = "sell"
)

// User is the account as reported by login/register.
type User struct {
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

// AuthResponse is the body of /login and /register.
type AuthResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Bar is one OHLCV sample of a price series.
type Bar struct {
	Timestamp string          `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume,omitempty"`
}

// Time parses Timestamp. The backend emits ISO-8601 with or without zone.
func (b Bar) Time() (time.Time, bool) {
	return ParseTimestamp(b.Timestamp)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the backend produces.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Position is an order as stored by the backend. Closed orders additionally
// carry ClosePrice, CloseTime and PnL.
type Position struct {
	ID         string              `json:"id"`
	Symbol     string              `json:"symbol"`
	Type       OrderType           `json:"type"`
	LotSize    decimal.Decimal     `json:"lot_size"`
	OpenPrice  decimal.Decimal     `json:"open_price"`
	StopLoss   decimal.NullDecimal `json:"stop_loss"`
	TakeProfit decimal.NullDecimal `json:"take_profit"`
	OpenTime   string              `json:"open_time"`
	Status     string              `json:"status"`

	ClosePrice decimal.NullDecimal `json:"close_price,omitempty"`
	CloseTime  string              `json:"close_time,omitempty"`
	PnL        decimal.NullDecimal `json:"pnl,omitempty"`
}

// Portfolio is the body of GET /portfolio.
type Portfolio struct {
	Balance      decimal.Decimal `json:"balance"`
	OpenOrders   []Position      `json:"open_orders"`
	ClosedOrders []Position      `json:"closed_orders"`
}

// PriceResponse is the body of GET /current-price/{symbol}.
type PriceResponse struct {
	Price decimal.NullDecimal `json:"price"`
}

// PlaceOrderRequest is the body of POST /place-order. Optional numbers are
// sent as JSON null when absent.
type PlaceOrderRequest struct {
	Symbol       string    `json:"symbol"`
	Type         OrderType `json:"type"`
	LotSize      *float64  `json:"lot_size"`
	StopLoss     *float64  `json:"stop_loss"`
	TakeProfit   *float64  `json:"take_profit"`
	CurrentPrice *float64  `json:"current_price"`
}

// PlaceOrderResponse is the body of POST /place-order.
type PlaceOrderResponse struct {
	Success bool      `json:"success"`
	Order   *Position `json:"order,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// CloseOrderResponse is the body of POST /close-order.
type CloseOrderResponse struct {
	Success bool                `json:"success"`
	PnL     decimal.Decimal     `json:"pnl"`
	Balance decimal.NullDecimal `json:"balance"`
	Error   string              `json:"error,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type closeOrderRequest struct {
	OrderID string `json:"order_id"`
}

type replayRequest struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
}

type errorBody struct {
	Error string `json:"error"`
}
