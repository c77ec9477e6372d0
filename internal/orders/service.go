// Package orders places and closes demo positions and keeps the portfolio
// view in sync with the backend.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	LoginRequiredMessage = "Please login first"
	PlacedMessage        = "Order placed successfully!"
	PlaceRetryMessage    = "Order failed. Please try again."
	CloseRetryMessage    = "Failed to close order. Please try again."

	DefaultHistoryLimit = 10
)

var (
	// ErrNotLoggedIn is returned without contacting the backend.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrStale marks a portfolio response overtaken by a newer one.
	ErrStale = errors.New("stale portfolio response")
)

// RejectedError is an application-level refusal ({success:false}).
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "rejected: " + e.Reason
}

// Backend is the part of the API client the order service needs.
type Backend interface {
	Portfolio(ctx context.Context) (*api.Portfolio, error)
	PlaceOrder(ctx context.Context, req api.PlaceOrderRequest) (*api.PlaceOrderResponse, error)
	CloseOrder(ctx context.Context, orderID string) (*api.CloseOrderResponse, error)
}

// PriceSource supplies the price currently shown to the user.
type PriceSource interface {
	CurrentPrice() (decimal.Decimal, bool)
}

// Account is the session state the service reads and updates.
type Account interface {
	LoggedIn() bool
	SetBalance(balance decimal.Decimal)
}

// Form is the raw order ticket as typed by the user.
type Form struct {
	Symbol     string
	LotSize    string
	StopLoss   string
	TakeProfit string
}

// Outcome is what the user is told after an action. Snapshot is the reloaded
// portfolio when the action succeeded and the reload did too.
type Outcome struct {
	Message  string
	PnL      decimal.Decimal
	Order    *api.Position
	Snapshot *Snapshot
}

// Snapshot is a rendered-ready portfolio.
type Snapshot struct {
	Seq         uint64
	Balance     decimal.Decimal
	Open        []api.Position
	History     []api.Position
	TotalClosed int
}

// Service is safe for concurrent use.
type Service struct {
	backend      Backend
	prices       PriceSource
	account      Account
	historyLimit int
	logger       *zap.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
	latest  *Snapshot
	journal Journal
}

// Journal records completed trades.
type Journal interface {
	RecordPlaced(order api.Position) error
	RecordClosed(orderID string, pnl decimal.Decimal) error
}

// NewService wires the service to its collaborators.
func NewService(backend Backend, prices PriceSource, account Account, historyLimit int, logger *zap.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		backend:      backend,
		prices:       prices,
		account:      account,
		historyLimit: historyLimit,
		logger:       logger.Named("orders"),
	}
}

// SetJournal attaches a trade journal. Nil detaches it.
func (s *Service) SetJournal(j Journal) {
	s.mu.Lock()
	s.journal = j
	s.mu.Unlock()
}

// Latest returns the last applied snapshot, or nil.
func (s *Service) Latest() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Reset forgets the cached snapshot, e.g. after logout.
func (s *Service) Reset() {
	s.mu.Lock()
	s.latest = nil
	s.applied = s.issued
	s.mu.Unlock()
}

// PlaceOrder opens a position in direction using the ticket in form and the
// displayed price.
func (s *Service) PlaceOrder(ctx context.Context, direction api.OrderType, form Form) (Outcome, error) {
	if !s.account.LoggedIn() {
		return Outcome{Message: LoginRequiredMessage}, ErrNotLoggedIn
	}

	req := api.PlaceOrderRequest{
		Symbol:     form.Symbol,
		Type:       direction,
		StopLoss:   optional(form.StopLoss),
		TakeProfit: optional(form.TakeProfit),
	}
	if lot, ok := ParseFloat(form.LotSize); ok {
		req.LotSize = &lot
	}
	if price, ok := s.prices.CurrentPrice(); ok {
		p := price.InexactFloat64()
		req.CurrentPrice = &p
	}

	resp, err := s.backend.PlaceOrder(ctx, req)
	if err != nil {
		s.logger.Error("Error placing order",
			zap.String("symbol", form.Symbol),
			zap.String("type", string(direction)),
			zap.Error(err))
		return Outcome{Message: PlaceRetryMessage}, fmt.Errorf("place order: %w", err)
	}
	if !resp.Success {
		s.logger.Info("Order rejected", zap.String("symbol", form.Symbol), zap.String("reason", resp.Error))
		return Outcome{Message: "Order failed: " + resp.Error}, &RejectedError{Reason: resp.Error}
	}

	out := Outcome{Message: PlacedMessage, Order: resp.Order}
	if resp.Order != nil {
		s.logger.Info("Order placed",
			zap.String("id", resp.Order.ID),
			zap.String("symbol", resp.Order.Symbol),
			zap.String("type", string(resp.Order.Type)),
			zap.String("open_price", resp.Order.OpenPrice.String()))
		s.record(func(j Journal) error { return j.RecordPlaced(*resp.Order) })
	}

	out.Snapshot = s.reload(ctx)
	return out, nil
}

// CloseOrder closes the position with id.
func (s *Service) CloseOrder(ctx context.Context, id string) (Outcome, error) {
	if !s.account.LoggedIn() {
		return Outcome{Message: LoginRequiredMessage}, ErrNotLoggedIn
	}

	resp, err := s.backend.CloseOrder(ctx, id)
	if err != nil {
		s.logger.Error("Error closing order", zap.String("id", id), zap.Error(err))
		return Outcome{Message: CloseRetryMessage}, fmt.Errorf("close order %s: %w", id, err)
	}
	if !resp.Success {
		s.logger.Info("Close rejected", zap.String("id", id), zap.String("reason", resp.Error))
		return Outcome{Message: "Close order failed: " + resp.Error}, &RejectedError{Reason: resp.Error}
	}

	if resp.Balance.Valid {
		s.account.SetBalance(resp.Balance.Decimal)
	}
	s.logger.Info("Order closed", zap.String("id", id), zap.String("pnl", resp.PnL.StringFixed(2)))
	s.record(func(j Journal) error { return j.RecordClosed(id, resp.PnL) })

	out := Outcome{
		Message: "Order closed! P&L: $" + resp.PnL.StringFixed(2),
		PnL:     resp.PnL,
	}
	out.Snapshot = s.reload(ctx)
	return out, nil
}

func (s *Service) reload(ctx context.Context) *Snapshot {
	snap, err := s.LoadPortfolio(ctx)
	if err != nil {
		s.logger.Debug("Portfolio reload after action failed", zap.Error(err))
		return nil
	}
	return snap
}

func (s *Service) record(write func(Journal) error) {
	s.mu.Lock()
	j := s.journal
	s.mu.Unlock()
	if j == nil {
		return
	}
	if err := write(j); err != nil {
		s.logger.Warn("Failed to write trade journal", zap.Error(err))
	}
}

// LoadPortfolio fetches the portfolio, updates the session balance and
// returns the snapshot. Without a user it does nothing and returns
// ErrNotLoggedIn. A response overtaken by a newer one returns ErrStale.
func (s *Service) LoadPortfolio(ctx context.Context) (*Snapshot, error) {
	if !s.account.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	portfolio, err := s.backend.Portfolio(ctx)
	if err != nil {
		s.logger.Debug("Error loading portfolio", zap.Uint64("seq", seq), zap.Error(err))
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	if !s.account.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	snap := BuildSnapshot(portfolio, s.historyLimit)
	snap.Seq = seq

	s.mu.Lock()
	if seq <= s.applied {
		s.mu.Unlock()
		s.logger.Debug("Dropping stale portfolio", zap.Uint64("seq", seq))
		return nil, ErrStale
	}
	s.applied = seq
	s.latest = snap
	s.mu.Unlock()

	s.account.SetBalance(snap.Balance)
	return snap, nil
}

// BuildSnapshot keeps all open orders and the last limit closed orders, most
// recent first.
func BuildSnapshot(p *api.Portfolio, limit int) *Snapshot {
	closed := p.ClosedOrders
	start := 0
	if len(closed) > limit {
		start = len(closed) - limit
	}
	history := make([]api.Position, 0, len(closed)-start)
	for i := len(closed) - 1; i >= start; i-- {
		history = append(history, closed[i])
	}

	open := make([]api.Position, len(p.OpenOrders))
	copy(open, p.OpenOrders)

	return &Snapshot{
		Balance:     p.Balance,
		Open:        open,
		History:     history,
		TotalClosed: len(closed),
	}
}
