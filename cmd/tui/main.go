package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/app"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/config"
	"github.com/rovshanmuradov/paper-trader/internal/export"
	"github.com/rovshanmuradov/paper-trader/internal/logger"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/poll"
	"github.com/rovshanmuradov/paper-trader/internal/session"
	"github.com/rovshanmuradov/paper-trader/internal/ui"
	"go.uber.org/zap"
)

const (
	busCapacity      = 100
	logFlushInterval = 2 * time.Second
	journalFile      = "journal.csv"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Logs go to a ring buffer; writing to stdout would corrupt the screen.
	logBuffer, err := logger.NewLogBuffer(cfg.LogBufferSize, cfg.LogFile, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to create log buffer: %v", err)
	}
	defer func() {
		_ = logBuffer.Close()
	}()
	flushDone := logBuffer.StartPeriodicFlush(logFlushInterval)
	defer close(flushDone)

	appLogger, err := logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, logBuffer)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	appLogger.Info("Starting paper trader TUI",
		zap.String("api", cfg.APIBaseURL),
		zap.Strings("symbols", cfg.Symbols))

	client, err := api.NewClient(cfg.APIBaseURL, cfg.Timeout(), appLogger, api.WithRetries(cfg.Retries))
	if err != nil {
		appLogger.Fatal("Failed to create API client", zap.Error(err))
	}

	sess := session.NewManager(client, appLogger)
	chartCtl := chart.NewController(client, cfg.DefaultSymbol, cfg.DefaultTimeframe, cfg.BannerLifetime(), appLogger)
	orderSvc := orders.NewService(client, chartCtl, sess, cfg.HistoryLimit, appLogger)

	journal, err := export.OpenJournal(filepath.Join(cfg.ExportDir, journalFile), logFlushInterval, appLogger)
	if err != nil {
		appLogger.Warn("Trade journal disabled", zap.Error(err))
	} else {
		orderSvc.SetJournal(journal)
		defer func() {
			_ = journal.Close()
		}()
	}

	bus := ui.NewBus(busCapacity, appLogger)
	defer bus.Close()

	services := ui.NewRealServiceProvider(rootCtx, cfg, appLogger, ui.Services{
		Session:   sess,
		Chart:     chartCtl,
		Orders:    orderSvc,
		Client:    client,
		Bus:       bus,
		LogBuffer: logBuffer,
	})

	poller := poll.NewPoller(cfg.PollEvery(), cfg.Timeout(), appLogger, app.PollTasks(services)...)
	go poller.Run(rootCtx)

	recovery := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewSafeUIWrapper(app.New(services), appLogger), []tea.ProgramOption{tea.WithAltScreen()}
	})

	if err := recovery.RunWithRecovery(rootCtx); err != nil {
		appLogger.Error("TUI application failed", zap.Error(err))
	}

	appLogger.Info("Shutting down paper trader TUI", zap.Int("restarts", recovery.GetRestartCount()))
}
