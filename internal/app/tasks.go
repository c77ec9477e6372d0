package app

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/poll"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
)

// PollTasks returns the periodic refreshes of the trading screen. Both are
// no-ops while nobody is logged in; results are delivered through the bus.
func PollTasks(sp ui.ServiceProvider) []poll.Task {
	return []poll.Task{
		{
			Name: "price",
			Run: func(ctx context.Context) error {
				if !sp.GetSession().LoggedIn() {
					return nil
				}
				q, changed := sp.GetChart().UpdateCurrentPrice(ctx)
				if changed {
					sp.GetBus().Send(ui.PriceMsg{Quote: q, Changed: true})
				}
				return nil
			},
		},
		{
			Name: "portfolio",
			Run: func(ctx context.Context) error {
				if !sp.GetSession().LoggedIn() {
					return nil
				}
				snap, err := sp.GetOrders().LoadPortfolio(ctx)
				if errors.Is(err, orders.ErrStale) || errors.Is(err, orders.ErrNotLoggedIn) {
					return nil
				}
				if err != nil {
					return err
				}
				sp.GetBus().Send(ui.PortfolioMsg{Snapshot: snap})
				return nil
			},
		},
	}
}
