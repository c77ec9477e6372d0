package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/config"
	"github.com/rovshanmuradov/paper-trader/internal/export"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/poll"
	"github.com/rovshanmuradov/paper-trader/internal/ui/component"
	"go.uber.org/zap"
)

const (
	dateLayout    = "2006-01-02"
	logoutTimeout = 3 * time.Second
	tableWidth    = 100
)

func runWatch(ctx context.Context, rt *runtime, args []string) error {
	fs := newFlagSet("watch")
	var creds credentials
	creds.bind(fs)
	symbol := fs.String("symbol", rt.cfg.DefaultSymbol, "instrument to watch")
	timeframe := fs.String("timeframe", rt.cfg.DefaultTimeframe, "chart timeframe (1h or 1d)")
	once := fs.Bool("once", false, "poll once and exit")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := selectChart(rt, *symbol, *timeframe); err != nil {
		return err
	}
	if err := rt.authenticate(ctx, creds); err != nil {
		return err
	}
	defer rt.logout()

	points := rt.chart.LoadChartData(ctx)
	rt.logger.Info(rt.chart.Banner().Text, zap.Int("points", points))

	poller := poll.NewPoller(rt.cfg.PollEvery(), rt.cfg.Timeout(), rt.logger, watchTasks(rt)...)
	if *once {
		return poller.Tick(ctx)
	}

	rt.logger.Info("Watching, press Ctrl+C to stop",
		zap.String("symbol", *symbol),
		zap.Duration("interval", rt.cfg.PollEvery()))
	poller.Run(ctx)

	for name, stats := range poller.Stats() {
		rt.logger.Debug("Poll task stats",
			zap.String("task", name),
			zap.Uint64("runs", stats.Runs),
			zap.Uint64("failures", stats.Failures),
			zap.Uint64("skipped", stats.Skipped))
	}
	return nil
}

func watchTasks(rt *runtime) []poll.Task {
	return []poll.Task{
		{
			Name: "price",
			Run: func(ctx context.Context) error {
				q, changed := rt.chart.UpdateCurrentPrice(ctx)
				if changed {
					rt.logger.Info("Price",
						zap.String("symbol", rt.chart.Symbol()),
						zap.String("price", q.Text),
						zap.String("direction", q.Direction.String()))
				}
				return nil
			},
		},
		{
			Name: "portfolio",
			Run: func(ctx context.Context) error {
				snap, err := rt.orders.LoadPortfolio(ctx)
				if errors.Is(err, orders.ErrStale) {
					return nil
				}
				if err != nil {
					return err
				}
				rt.logger.Info("Portfolio",
					zap.String("balance", "$"+snap.Balance.StringFixed(2)),
					zap.Int("open", len(snap.Open)),
					zap.Int("closed", snap.TotalClosed))
				return nil
			},
		},
	}
}

func runPortfolio(ctx context.Context, rt *runtime, args []string) error {
	fs := newFlagSet("portfolio")
	var creds credentials
	creds.bind(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := rt.authenticate(ctx, creds); err != nil {
		return err
	}
	defer rt.logout()

	snap, err := rt.orders.LoadPortfolio(ctx)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	fmt.Printf("Balance: $%s\n\nOpen positions\n%s\n\nRecent trades\n%s\n",
		snap.Balance.StringFixed(2),
		positionsTable(snap.Open),
		historyTable(snap.History))
	return nil
}

func positionsTable(positions []api.Position) string {
	t := component.NewTable().
		AddColumn("ID", 0, lipgloss.Left).
		AddColumn("Symbol", 0, lipgloss.Left).
		AddColumn("Type", 0, lipgloss.Left).
		AddColumn("Size", 0, lipgloss.Right).
		AddColumn("Open", 0, lipgloss.Right).
		AddColumn("SL", 0, lipgloss.Right).
		AddColumn("TP", 0, lipgloss.Right).
		SetEmptyText(orders.NoPositionsText).
		SetSelectable(false).
		SetWidth(tableWidth)

	var rows [][]string
	for _, r := range orders.PositionRows(positions) {
		rows = append(rows, []string{r.ID, r.Symbol, r.Type, r.Size, r.Open, r.StopLoss, r.TakeProfit})
	}
	return t.SetRows(rows).View()
}

func historyTable(history []api.Position) string {
	t := component.NewTable().
		AddColumn("Symbol", 0, lipgloss.Left).
		AddColumn("Type", 0, lipgloss.Left).
		AddColumn("Size", 0, lipgloss.Right).
		AddColumn("Open", 0, lipgloss.Right).
		AddColumn("Close", 0, lipgloss.Right).
		AddColumn("P&L", 0, lipgloss.Right).
		SetEmptyText(orders.NoHistoryText).
		SetSelectable(false).
		SetWidth(tableWidth)

	var rows [][]string
	for _, r := range orders.HistoryRows(history) {
		rows = append(rows, []string{r.Symbol, r.Type, r.Size, r.Open, r.Close, r.PnL})
	}
	return t.SetRows(rows).View()
}

func runReplay(ctx context.Context, rt *runtime, args []string) error {
	fs := newFlagSet("replay")
	symbol := fs.String("symbol", rt.cfg.DefaultSymbol, "instrument to replay")
	date := fs.String("date", "", "date to replay (YYYY-MM-DD)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := time.Parse(dateLayout, *date); err != nil {
		return fmt.Errorf("invalid -date %q: expected YYYY-MM-DD", *date)
	}
	if err := selectChart(rt, *symbol, rt.cfg.DefaultTimeframe); err != nil {
		return err
	}

	bar, err := rt.chart.Replay(ctx, *date)
	if err != nil {
		return fmt.Errorf("replay %s at %s: %w", *symbol, *date, err)
	}

	fmt.Printf("%s %s  O %s  H %s  L %s  C %s\n",
		*symbol, bar.Timestamp,
		bar.Open.StringFixed(4), bar.High.StringFixed(4),
		bar.Low.StringFixed(4), bar.Close.StringFixed(4))
	return nil
}

func runExport(ctx context.Context, rt *runtime, args []string) error {
	fs := newFlagSet("export")
	var creds credentials
	creds.bind(fs)
	format := fs.String("format", string(export.FormatCSV), "output format (csv or json)")
	outDir := fs.String("out", rt.cfg.ExportDir, "output directory")
	symbol := fs.String("symbol", "", "only trades on this symbol")
	side := fs.String("type", "", "only buy or sell trades")
	from := fs.String("from", "", "first close date to include (YYYY-MM-DD)")
	to := fs.String("to", "", "close date to stop before (YYYY-MM-DD)")
	winners := fs.Bool("winners", false, "only profitable trades")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	opts := export.ExportOptions{
		SymbolFilter: *symbol,
		TypeFilter:   api.OrderType(strings.ToLower(*side)),
		OnlyWinners:  *winners,
		OutputDir:    *outDir,
	}
	var err error
	if opts.Format, err = export.ParseFormat(*format); err != nil {
		return err
	}
	if opts.StartTime, err = parseDate("from", *from); err != nil {
		return err
	}
	if opts.EndTime, err = parseDate("to", *to); err != nil {
		return err
	}
	if opts.TypeFilter != "" && opts.TypeFilter != api.Buy && opts.TypeFilter != api.Sell {
		return fmt.Errorf("invalid -type %q: expected buy or sell", *side)
	}

	if err := rt.authenticate(ctx, creds); err != nil {
		return err
	}
	defer rt.logout()

	portfolio, err := rt.client.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	trades := export.TradesFromPositions(portfolio.ClosedOrders)
	path, err := export.NewTradeExporter(rt.logger).ExportTrades(trades, opts)
	if err != nil {
		return err
	}

	summary := export.CalculateSummary(trades)
	rt.logger.Info("Trade history exported",
		zap.String("path", path),
		zap.Int("trades", summary.TotalTrades),
		zap.String("total_pnl", "$"+summary.TotalPnL.StringFixed(2)),
		zap.Float64("win_rate", summary.WinRate))
	fmt.Fprintln(os.Stdout, path)
	return nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s %q: expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

func selectChart(rt *runtime, symbol, timeframe string) error {
	if !contains(rt.cfg.Symbols, symbol) {
		return fmt.Errorf("unknown symbol %q (configured: %s)", symbol, strings.Join(rt.cfg.Symbols, ", "))
	}
	if !contains(config.Timeframes, timeframe) {
		return fmt.Errorf("unknown timeframe %q (expected %s)", timeframe, strings.Join(config.Timeframes, " or "))
	}
	rt.chart.SetSymbol(symbol)
	rt.chart.SetTimeframe(timeframe)
	return nil
}

// logout ends the session on a fresh context so it still runs after Ctrl+C.
func (rt *runtime) logout() {
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if err := rt.session.Logout(ctx); err != nil {
		rt.logger.Debug("Logout request failed", zap.Error(err))
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
