package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/config"
	"github.com/rovshanmuradov/paper-trader/internal/logger"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/session"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend is an in-memory demo trading server.
type fakeBackend struct {
	mu       sync.Mutex
	balance  float64
	open     []map[string]interface{}
	closed   []map[string]interface{}
	bars     []map[string]interface{}
	price    float64
	nextID   int
	sessions map[string]string

	failLogout    atomic.Bool
	failPortfolio atomic.Bool

	// barsGate, when set, holds chart data requests until it is closed.
	barsGate chan struct{}

	placeCalls  atomic.Int32
	logoutCalls atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		balance:  10000,
		price:    1901.25,
		sessions: map[string]string{},
		bars: []map[string]interface{}{
			{"timestamp": "2024-03-01T10:00:00", "open": 1899, "high": 1902, "low": 1898, "close": 1900, "volume": 10},
			{"timestamp": "2024-03-01T11:00:00", "open": 1900, "high": 1903, "low": 1899, "close": 1901, "volume": 12},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) authed(r *http.Request) bool {
	c, err := r.Cookie("session")
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[c.Value]
	return ok
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "error": "Invalid credentials"})
			return
		}
		f.mu.Lock()
		f.sessions["tok-"+creds.Username] = creds.Username
		balance := f.balance
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok-" + creds.Username, Path: "/"})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    map[string]interface{}{"username": creds.Username, "balance": balance},
		})
	})

	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		if f.failLogout.Load() {
			panic(http.ErrAbortHandler)
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("/api/portfolio", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
			return
		}
		if f.failPortfolio.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "portfolio unavailable"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"balance":       f.balance,
			"open_orders":   append([]map[string]interface{}{}, f.open...),
			"closed_orders": append([]map[string]interface{}{}, f.closed...),
		})
	})

	mux.HandleFunc("/api/data/", func(w http.ResponseWriter, r *http.Request) {
		if f.barsGate != nil {
			select {
			case <-f.barsGate:
			case <-r.Context().Done():
				return
			}
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.bars)
	})

	mux.HandleFunc("/api/current-price/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]float64{"price": f.price})
	})

	mux.HandleFunc("/api/place-order", func(w http.ResponseWriter, r *http.Request) {
		f.placeCalls.Add(1)
		if !f.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
			return
		}
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.nextID++
		order := map[string]interface{}{
			"id":          fmt.Sprintf("ord-%d", f.nextID),
			"symbol":      req["symbol"],
			"type":        req["type"],
			"lot_size":    req["lot_size"],
			"open_price":  req["current_price"],
			"stop_loss":   req["stop_loss"],
			"take_profit": req["take_profit"],
			"open_time":   "2024-03-01T12:00:00",
			"status":      "open",
		}
		f.open = append(f.open, order)
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "order": order})
	})

	mux.HandleFunc("/api/close-order", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrderID string `json:"order_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		for i, o := range f.open {
			if o["id"] == req.OrderID {
				f.open = append(f.open[:i], f.open[i+1:]...)
				o["status"] = "closed"
				o["close_price"] = 1905.0
				o["close_time"] = "2024-03-01T13:00:00"
				o["pnl"] = 12.5
				f.closed = append(f.closed, o)
				f.balance += 12.5
				writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "pnl": 12.5, "balance": f.balance})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": "Order not found"})
	})

	return mux
}

type testEnv struct {
	backend  *fakeBackend
	services ui.ServiceProvider
	bus      *ui.Bus
}

func newTestEnv(t *testing.T, backend *fakeBackend) *testEnv {
	t.Helper()

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	log := zap.NewNop()
	cfg := &config.Config{
		APIBaseURL:       srv.URL + "/api",
		Symbols:          []string{"XAUUSD", "EURUSD"},
		DefaultSymbol:    "XAUUSD",
		DefaultTimeframe: "1h",
		PollInterval:     5000,
		RequestTimeout:   2000,
		BannerTTL:        5000,
		HistoryLimit:     10,
		LogBufferSize:    50,
		ExportDir:        t.TempDir(),
	}

	client, err := api.NewClient(cfg.APIBaseURL, cfg.Timeout(), log, api.WithRetries(0))
	require.NoError(t, err)

	buf, err := logger.NewLogBuffer(cfg.LogBufferSize, "", log)
	require.NoError(t, err)

	sess := session.NewManager(client, log)
	ctrl := chart.NewController(client, cfg.DefaultSymbol, cfg.DefaultTimeframe, cfg.BannerLifetime(), log)
	svc := orders.NewService(client, ctrl, sess, cfg.HistoryLimit, log)
	bus := ui.NewBus(16, log)
	t.Cleanup(bus.Close)

	sp := ui.NewRealServiceProvider(context.Background(), cfg, log, ui.Services{
		Session:   sess,
		Chart:     ctrl,
		Orders:    svc,
		Client:    client,
		Bus:       bus,
		LogBuffer: buf,
	})
	return &testEnv{backend: backend, services: sp, bus: bus}
}

// cmdTimeout bounds how long a command may block before it is treated as a
// background listener (bus, clock, cursor blink) and dropped.
const cmdTimeout = 150 * time.Millisecond
