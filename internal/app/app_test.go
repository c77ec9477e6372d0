package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"github.com/rovshanmuradov/paper-trader/internal/ui/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxSteps = 500

// execAll runs cmds concurrently and returns the messages of those that
// finish within cmdTimeout. Commands that block longer are background
// listeners and are abandoned.
func execAll(cmds ...tea.Cmd) []tea.Msg {
	results := make([]tea.Msg, len(cmds))
	var wg sync.WaitGroup
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		wg.Add(1)
		go func(i int, cmd tea.Cmd) {
			defer wg.Done()
			ch := make(chan tea.Msg, 1)
			go func() { ch <- cmd() }()
			select {
			case msg := <-ch:
				results[i] = msg
			case <-time.After(cmdTimeout):
			}
		}(i, cmd)
	}
	wg.Wait()

	var out []tea.Msg
	for _, msg := range results {
		if msg != nil {
			out = append(out, msg)
		}
	}
	return out
}

// drive feeds msgs to m and keeps running the resulting commands until
// nothing but background listeners is left.
func drive(t *testing.T, m *Model, msgs ...tea.Msg) {
	t.Helper()
	queue := append([]tea.Msg{}, msgs...)
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, maxSteps, "message loop did not settle")

		msg := queue[0]
		queue = queue[1:]

		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, execAll(msg...)...)
			continue
		case tea.QuitMsg:
			continue
		}

		_, cmd := m.Update(msg)
		queue = append(queue, execAll(cmd)...)
	}
}

func start(t *testing.T, env *testEnv) *Model {
	t.Helper()
	m := New(env.services)
	drive(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	drive(t, m, execAll(m.Init())...)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func login(t *testing.T, m *Model, username, password string) {
	t.Helper()
	drive(t, m,
		runes(username),
		tea.KeyMsg{Type: tea.KeyTab},
		runes(password),
		tea.KeyMsg{Type: tea.KeyEnter},
	)
}

func TestLoginSuccessShowsTradingScreen(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	m := start(t, env)
	require.Equal(t, ui.RouteLogin, m.Route())

	login(t, m, "alice", "secret")

	assert.Equal(t, ui.RouteTrading, m.Route())
	_, ok := m.Screen().(*screen.TradingScreen)
	assert.True(t, ok)

	view := m.View()
	assert.Contains(t, view, "Welcome, alice!")
	assert.Contains(t, view, "Balance: $10000.00")
	assert.False(t, m.Alert().Open())
}

func TestLoginFailureKeepsLoginScreen(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	m := start(t, env)

	login(t, m, "alice", "wrong")

	assert.Equal(t, ui.RouteLogin, m.Route())
	auth, ok := m.Screen().(*screen.AuthScreen)
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", auth.Message())
	assert.Contains(t, m.View(), "Invalid credentials")
	assert.False(t, env.services.GetSession().LoggedIn())
}

func TestSwitchBetweenLoginAndRegister(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	m := start(t, env)

	drive(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, ui.RouteRegister, m.Route())

	drive(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, ui.RouteLogin, m.Route())
}

func TestLogoutClearsUserWhenBackendFails(t *testing.T) {
	backend := newFakeBackend()
	env := newTestEnv(t, backend)
	m := start(t, env)
	login(t, m, "alice", "secret")
	require.Equal(t, ui.RouteTrading, m.Route())
	require.NotNil(t, env.services.GetOrders().Latest())

	backend.failLogout.Store(true)
	drive(t, m, runes("o"))

	assert.Equal(t, int32(1), backend.logoutCalls.Load())
	assert.Equal(t, ui.RouteLogin, m.Route())
	assert.False(t, env.services.GetSession().LoggedIn())
	assert.Nil(t, env.services.GetOrders().Latest())
	assert.NotContains(t, m.View(), "Welcome, alice!")
}

func TestEmptyChartDataEntersDemoMode(t *testing.T) {
	backend := newFakeBackend()
	backend.bars = []map[string]interface{}{}
	env := newTestEnv(t, backend)
	m := start(t, env)

	login(t, m, "alice", "secret")
	require.Equal(t, ui.RouteTrading, m.Route())

	c := env.services.GetChart()
	assert.Empty(t, c.Closes())
	assert.Equal(t, chart.BannerInfo, c.Banner().Kind)
	assert.Equal(t, chart.DemoModeMessage, c.Banner().Text)
	assert.False(t, m.Alert().Open())
}

func TestChartLoadsSeries(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	m := start(t, env)
	login(t, m, "alice", "secret")

	c := env.services.GetChart()
	assert.Equal(t, []float64{1900, 1901}, c.Closes())
	assert.Equal(t, chart.LiveMessage(2), c.Banner().Text)
	assert.Contains(t, m.View(), "1901.2500")
}

func TestPlaceOrderWithoutUserPromptsAndSendsNothing(t *testing.T) {
	backend := newFakeBackend()
	env := newTestEnv(t, backend)
	m := start(t, env)

	drive(t, m, execAll(m.router.Reset(screen.NewTradingScreen(env.services)))...)
	drive(t, m, runes("b"))

	assert.Equal(t, int32(0), backend.placeCalls.Load())
	require.True(t, m.Alert().Open())
	assert.Equal(t, orders.LoginRequiredMessage, m.Alert().Text())
	assert.Contains(t, m.View(), orders.LoginRequiredMessage)
}

func TestAlertBlocksInputUntilDismissed(t *testing.T) {
	backend := newFakeBackend()
	env := newTestEnv(t, backend)
	m := start(t, env)
	login(t, m, "alice", "secret")

	drive(t, m, ui.AlertMsg{Text: "Order placed successfully!"})
	require.True(t, m.Alert().Open())

	drive(t, m, runes("b"), runes("o"))
	assert.Equal(t, int32(0), backend.placeCalls.Load())
	assert.Equal(t, ui.RouteTrading, m.Route())
	assert.True(t, m.Alert().Open())

	drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Alert().Open())
}

func TestPlaceAndCloseOrder(t *testing.T) {
	backend := newFakeBackend()
	env := newTestEnv(t, backend)
	m := start(t, env)
	login(t, m, "alice", "secret")

	drive(t, m, runes("b"))
	assert.Equal(t, int32(1), backend.placeCalls.Load())
	require.True(t, m.Alert().Open())
	assert.Equal(t, orders.PlacedMessage, m.Alert().Text())
	drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	snap := env.services.GetOrders().Latest()
	require.NotNil(t, snap)
	require.Len(t, snap.Open, 1)
	assert.Contains(t, m.View(), "ord-1")

	drive(t, m, runes("x"))
	require.True(t, m.Alert().Open())
	assert.Equal(t, "Order closed! P&L: $12.50", m.Alert().Text())

	snap = env.services.GetOrders().Latest()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Open)
	assert.Len(t, snap.History, 1)
}

func TestCloseOrderBalanceShownWhenReloadFails(t *testing.T) {
	backend := newFakeBackend()
	env := newTestEnv(t, backend)
	m := start(t, env)
	login(t, m, "alice", "secret")

	drive(t, m, runes("b"))
	drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, env.services.GetOrders().Latest().Open, 1)

	backend.failPortfolio.Store(true)
	drive(t, m, runes("x"))
	require.True(t, m.Alert().Open())
	assert.Equal(t, "Order closed! P&L: $12.50", m.Alert().Text())
	drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, m.View(), "Balance: $10012.50")
}

func TestLoadingBannerShownWhileChartLoads(t *testing.T) {
	backend := newFakeBackend()
	backend.barsGate = make(chan struct{})
	env := newTestEnv(t, backend)
	t.Cleanup(func() { close(backend.barsGate) })
	m := start(t, env)
	login(t, m, "alice", "secret")
	require.Equal(t, ui.RouteTrading, m.Route())

	drive(t, m, ui.ClockMsg{Time: time.Now()})
	assert.Contains(t, m.View(), chart.LoadingMessage)
}

func TestPortfolioRenderingIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	backend.open = append(backend.open, map[string]interface{}{
		"id": "ord-7", "symbol": "XAUUSD", "type": "buy", "lot_size": 0.1,
		"open_price": 1900.5, "open_time": "2024-03-01T09:00:00", "status": "open",
	})
	env := newTestEnv(t, backend)
	m := start(t, env)
	login(t, m, "alice", "secret")

	svc := env.services.GetOrders()
	first, err := svc.LoadPortfolio(context.Background())
	require.NoError(t, err)
	drive(t, m, ui.PortfolioMsg{Snapshot: first})
	before := m.View()

	second, err := svc.LoadPortfolio(context.Background())
	require.NoError(t, err)
	drive(t, m, ui.PortfolioMsg{Snapshot: second})

	assert.Equal(t, before, m.View())
	assert.Equal(t, 1, strings.Count(m.View(), "ord-7"))
}

func TestRestoreExistingSession(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	_, err := env.services.GetAPI().Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	m := start(t, env)

	assert.Equal(t, ui.RouteTrading, m.Route())
	assert.Contains(t, m.View(), "Welcome, trader!")
}

func TestNoSessionStaysOnLogin(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	m := start(t, env)

	assert.Equal(t, ui.RouteLogin, m.Route())
	assert.False(t, env.services.GetSession().LoggedIn())
}

func TestPollUpdatesIgnoredOffTradingScreen(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	m := start(t, env)

	_, cmd := m.Update(ui.PortfolioMsg{Snapshot: &orders.Snapshot{}})
	assert.Nil(t, cmd)
	assert.Equal(t, ui.RouteLogin, m.Route())
}

func TestPollTasks(t *testing.T) {
	env := newTestEnv(t, newFakeBackend())
	tasks := PollTasks(env.services)
	require.Len(t, tasks, 2)

	runAll := func() {
		for _, task := range tasks {
			require.NoError(t, task.Run(context.Background()), task.Name)
		}
	}

	runAll()
	sent, _ := env.bus.GetStats()
	assert.Zero(t, sent, "logged out tasks must not publish")

	_, err := env.services.GetSession().Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	runAll()
	sent, _ = env.bus.GetStats()
	assert.Equal(t, uint64(2), sent)
}
