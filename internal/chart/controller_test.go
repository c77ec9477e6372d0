package chart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	bars     []api.Bar
	barsErr  error
	prices   []decimal.Decimal
	priceErr error
	calls    []string
	onBars   func()
}

func (f *fakeBackend) Bars(_ context.Context, symbol, period, interval string) ([]api.Bar, error) {
	f.calls = append(f.calls, symbol+"|"+period+"|"+interval)
	if f.onBars != nil {
		f.onBars()
	}
	return f.bars, f.barsErr
}

func (f *fakeBackend) CurrentPrice(context.Context, string) (decimal.Decimal, error) {
	if f.priceErr != nil {
		return decimal.Zero, f.priceErr
	}
	p := f.prices[0]
	if len(f.prices) > 1 {
		f.prices = f.prices[1:]
	}
	return p, nil
}

func (f *fakeBackend) Replay(_ context.Context, symbol, date string) (*api.Bar, error) {
	return &api.Bar{Timestamp: date, Close: decimal.RequireFromString("2000")}, nil
}

func bar(close string) api.Bar {
	return api.Bar{Timestamp: "2024-01-01T00:00:00", Close: decimal.RequireFromString(close)}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newController(b Backend) *Controller {
	return NewController(b, "XAUUSD", "1h", 5*time.Second, zap.NewNop())
}

func TestPriceDirections(t *testing.T) {
	var tracker PriceTracker
	var got []Direction
	for _, p := range []string{"1900", "1901", "1901", "1899"} {
		got = append(got, tracker.Observe(dec(p)))
	}
	assert.Equal(t, []Direction{Neutral, Up, Neutral, Down}, got)
}

func TestLoadChartDataSuccess(t *testing.T) {
	backend := &fakeBackend{
		bars:   []api.Bar{bar("1900"), bar("1901.5")},
		prices: []decimal.Decimal{dec("1902.12345")},
	}
	c := newController(backend)

	n := c.LoadChartData(context.Background())
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"XAUUSD|5d|1h"}, backend.calls)
	assert.Equal(t, []float64{1900, 1901.5}, c.Closes())

	q := c.Quote()
	assert.True(t, q.Valid)
	assert.Equal(t, "1902.1235", q.Text)
	assert.Equal(t, Neutral, q.Direction)

	price, ok := c.CurrentPrice()
	require.True(t, ok)
	assert.Equal(t, "1902.1235", price.String())

	banner := c.Banner()
	assert.Equal(t, BannerSuccess, banner.Kind)
	assert.Equal(t, "✅ Live demo trading active - 2 data points loaded", banner.Text)
}

func TestLoadChartDataEmptyKeepsSeries(t *testing.T) {
	backend := &fakeBackend{bars: []api.Bar{bar("1.08")}, prices: []decimal.Decimal{dec("1.08")}}
	c := newController(backend)
	require.Equal(t, 1, c.LoadChartData(context.Background()))

	backend.bars = nil
	n := c.LoadChartData(context.Background())
	assert.Equal(t, 0, n)
	assert.Equal(t, []float64{1.08}, c.Closes())

	banner := c.Banner()
	assert.Equal(t, BannerInfo, banner.Kind)
	assert.Equal(t, DemoModeMessage, banner.Text)
}

func TestLoadChartDataFailureShowsDemoBanner(t *testing.T) {
	c := newController(&fakeBackend{barsErr: api.ErrNetwork})
	assert.Equal(t, 0, c.LoadChartData(context.Background()))
	assert.Empty(t, c.Bars())
	assert.Equal(t, DemoModeMessage, c.Banner().Text)
}

func TestDailyTimeframePeriod(t *testing.T) {
	backend := &fakeBackend{barsErr: api.ErrNetwork}
	c := newController(backend)
	c.SetTimeframe("1d")
	c.LoadChartData(context.Background())
	assert.Equal(t, []string{"XAUUSD|1mo|1d"}, backend.calls)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	backend := &fakeBackend{bars: []api.Bar{bar("1900")}, prices: []decimal.Decimal{dec("1900")}}
	c := newController(backend)
	backend.onBars = func() { c.SetSymbol("EURUSD") }

	assert.Equal(t, 0, c.LoadChartData(context.Background()))
	assert.Empty(t, c.Bars())
	assert.Equal(t, "EURUSD", c.Symbol())
}

func TestUpdateCurrentPriceFallsBackToLastClose(t *testing.T) {
	backend := &fakeBackend{bars: []api.Bar{bar("1900"), bar("1905")}, prices: []decimal.Decimal{dec("1910")}}
	c := newController(backend)
	c.LoadChartData(context.Background())

	backend.priceErr = api.ErrNetwork
	q, ok := c.UpdateCurrentPrice(context.Background())
	require.True(t, ok)
	assert.Equal(t, "1905.0000", q.Text)
	assert.Equal(t, Down, q.Direction)
}

func TestNullPriceFallsBackToLastClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Path, "/api/data/") {
			_, _ = w.Write([]byte(`[{"timestamp":"2024-01-01T00:00:00","open":1899,"high":1901,"low":1898,"close":1900.5}]`))
			return
		}
		_, _ = w.Write([]byte(`{"price":null}`))
	}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL+"/api", time.Second, zap.NewNop())
	require.NoError(t, err)
	c := newController(client)

	require.Equal(t, 1, c.LoadChartData(context.Background()))
	q := c.Quote()
	require.True(t, q.Valid)
	assert.Equal(t, "1900.5000", q.Text)
}

func TestUpdateCurrentPriceRejectedKeepsDisplay(t *testing.T) {
	backend := &fakeBackend{prices: []decimal.Decimal{dec("1.0811")}}
	c := newController(backend)
	_, ok := c.UpdateCurrentPrice(context.Background())
	require.True(t, ok)

	backend.priceErr = &api.APIError{Status: 400, Message: "Invalid symbol"}
	q, ok := c.UpdateCurrentPrice(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "1.0811", q.Text)
}

func TestNetworkFailureWithoutSeriesLeavesDisplayEmpty(t *testing.T) {
	c := newController(&fakeBackend{priceErr: api.ErrNetwork})
	_, ok := c.UpdateCurrentPrice(context.Background())
	assert.False(t, ok)
	_, ok = c.CurrentPrice()
	assert.False(t, ok)
}

func TestBannerExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newController(&fakeBackend{})
	c.SetClock(func() time.Time { return now })

	c.ShowBanner(BannerWarning, "careful")
	assert.Equal(t, "careful", c.Banner().Text)

	now = now.Add(5 * time.Second)
	assert.Equal(t, "", c.Banner().Text)

	c.ShowBanner(BannerError, "broken")
	now = now.Add(time.Hour)
	assert.Equal(t, "broken", c.Banner().Text)

	c.ShowBanner(BannerInfo, "replaced")
	assert.Equal(t, BannerInfo, c.Banner().Kind)
}

func TestSetSymbolResetsPriceMemo(t *testing.T) {
	backend := &fakeBackend{prices: []decimal.Decimal{dec("1900"), dec("1.08")}}
	c := newController(backend)
	c.UpdateCurrentPrice(context.Background())

	c.SetSymbol("EURUSD")
	_, ok := c.CurrentPrice()
	assert.False(t, ok)

	q, _ := c.UpdateCurrentPrice(context.Background())
	assert.Equal(t, Neutral, q.Direction)
}

func TestReplay(t *testing.T) {
	c := newController(&fakeBackend{})
	b, err := c.Replay(context.Background(), "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", b.Timestamp)
}
