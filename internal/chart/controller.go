// Package chart owns the active symbol, its price series and the price
// display.
package chart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	LoadingMessage  = "Loading market data..."
	DemoModeMessage = "🎯 Demo trading mode active with simulated data"
)

// ErrNoData is logged when the backend returns an empty series.
var ErrNoData = errors.New("no data received")

// Backend is the part of the API client the chart needs.
type Backend interface {
	Bars(ctx context.Context, symbol, period, interval string) ([]api.Bar, error)
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	Replay(ctx context.Context, symbol, date string) (*api.Bar, error)
}

// LiveMessage is the banner shown after a successful load of n bars.
func LiveMessage(n int) string {
	return fmt.Sprintf("✅ Live demo trading active - %d data points loaded", n)
}

// Period maps a timeframe to the history window requested for it.
func Period(timeframe string) string {
	if timeframe == "1h" {
		return "5d"
	}
	return "1mo"
}

// Controller is safe for concurrent use.
type Controller struct {
	mu        sync.RWMutex
	backend   Backend
	logger    *zap.Logger
	bannerTTL time.Duration
	now       func() time.Time

	symbol    string
	timeframe string
	// generation changes with symbol or timeframe; loads started under an
	// older generation are discarded.
	generation uint64

	bars    []api.Bar
	tracker PriceTracker
	quote   Quote
	banner  Banner
}

// NewController creates a controller showing symbol at timeframe.
func NewController(backend Backend, symbol, timeframe string, bannerTTL time.Duration, logger *zap.Logger) *Controller {
	return &Controller{
		backend:   backend,
		logger:    logger.Named("chart"),
		bannerTTL: bannerTTL,
		now:       time.Now,
		symbol:    symbol,
		timeframe: timeframe,
	}
}

// SetClock replaces the time source used for banner expiry.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Symbol returns the active symbol.
func (c *Controller) Symbol() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbol
}

// Timeframe returns the active timeframe.
func (c *Controller) Timeframe() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeframe
}

// SetSymbol switches the instrument. The series is kept until the next
// successful load; the price memo starts over.
func (c *Controller) SetSymbol(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if symbol == c.symbol {
		return
	}
	c.symbol = symbol
	c.generation++
	c.tracker.Reset()
	c.quote = Quote{}
}

// SetTimeframe switches the bar interval.
func (c *Controller) SetTimeframe(timeframe string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeframe == c.timeframe {
		return
	}
	c.timeframe = timeframe
	c.generation++
}

// Bars returns a copy of the current series.
func (c *Controller) Bars() []api.Bar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.Bar, len(c.bars))
	copy(out, c.bars)
	return out
}

// Closes returns the close prices of the series as floats for plotting.
func (c *Controller) Closes() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]float64, len(c.bars))
	for i, b := range c.bars {
		out[i] = b.Close.InexactFloat64()
	}
	return out
}

// Quote returns what the price display currently shows.
func (c *Controller) Quote() Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quote
}

// CurrentPrice returns the displayed price at display precision, the value a
// user sees when placing an order.
func (c *Controller) CurrentPrice() (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.quote.Valid {
		return decimal.Zero, false
	}
	return c.quote.Price.Round(PriceDecimals), true
}

// Banner returns the active banner, or a zero Banner when none is visible.
func (c *Controller) Banner() Banner {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.banner.Visible(c.now()) {
		return Banner{}
	}
	return c.banner
}

// ShowBanner replaces the current banner.
func (c *Controller) ShowBanner(kind BannerKind, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setBannerLocked(kind, text)
}

func (c *Controller) setBannerLocked(kind BannerKind, text string) {
	c.banner = Banner{Kind: kind, Text: text, Expires: c.now().Add(c.bannerTTL)}
}

// ClearBanner removes the banner.
func (c *Controller) ClearBanner() {
	c.mu.Lock()
	c.banner = Banner{}
	c.mu.Unlock()
}

// LoadChartData fetches the series for the active symbol and timeframe. It
// never fails: an empty or failed fetch leaves the series untouched and
// switches the banner to demo mode. The returned count is the number of bars
// loaded, zero on fallback.
func (c *Controller) LoadChartData(ctx context.Context) int {
	c.mu.Lock()
	symbol, timeframe, gen := c.symbol, c.timeframe, c.generation
	c.setBannerLocked(BannerInfo, LoadingMessage)
	c.mu.Unlock()

	bars, err := c.backend.Bars(ctx, symbol, Period(timeframe), timeframe)
	if err == nil && len(bars) == 0 {
		err = ErrNoData
	}
	if err != nil {
		c.logger.Warn("Chart data loading failed",
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe),
			zap.Error(err))
		c.ShowBanner(BannerInfo, DemoModeMessage)
		return 0
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("Discarding chart data for previous selection",
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe))
		return 0
	}
	c.bars = bars
	c.mu.Unlock()

	c.UpdateCurrentPrice(ctx)

	c.ShowBanner(BannerSuccess, LiveMessage(len(bars)))
	c.logger.Info("Chart data loaded",
		zap.String("symbol", symbol),
		zap.String("timeframe", timeframe),
		zap.Int("points", len(bars)))
	return len(bars)
}

// UpdateCurrentPrice refreshes the price display. A rejected request leaves
// the display as is. A network failure or an unusable price body falls back
// to the last close.
func (c *Controller) UpdateCurrentPrice(ctx context.Context) (Quote, bool) {
	c.mu.RLock()
	symbol, gen := c.symbol, c.generation
	c.mu.RUnlock()

	price, err := c.backend.CurrentPrice(ctx, symbol)
	if err != nil {
		if !api.IsNetwork(err) && !errors.Is(err, api.ErrDecode) {
			c.logger.Debug("Price request rejected", zap.String("symbol", symbol), zap.Error(err))
			return c.Quote(), false
		}
		c.logger.Warn("Price update failed", zap.String("symbol", symbol), zap.Error(err))

		c.mu.RLock()
		n := len(c.bars)
		var last decimal.Decimal
		if n > 0 {
			last = c.bars[n-1].Close
		}
		c.mu.RUnlock()
		if n == 0 {
			return c.Quote(), false
		}
		price = last
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return c.quote, false
	}
	c.quote = Quote{
		Price:     price,
		Text:      FormatPrice(price),
		Direction: c.tracker.Observe(price),
		Valid:     true,
	}
	return c.quote, true
}

// Replay asks the backend for the bar of the active symbol at date
// (YYYY-MM-DD or ISO timestamp).
func (c *Controller) Replay(ctx context.Context, date string) (*api.Bar, error) {
	symbol := c.Symbol()
	bar, err := c.backend.Replay(ctx, symbol, date)
	if err != nil {
		c.logger.Warn("Replay failed", zap.String("symbol", symbol), zap.String("date", date), zap.Error(err))
		return nil, fmt.Errorf("replay %s at %s: %w", symbol, date, err)
	}
	return bar, nil
}
