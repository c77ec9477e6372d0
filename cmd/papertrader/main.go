// Command papertrader is the headless client: it streams prices, prints the
// portfolio, replays historical bars and exports trade history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/config"
	"github.com/rovshanmuradov/paper-trader/internal/logger"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/session"
	"go.uber.org/zap"
)

const usage = `usage: papertrader [-config file] <command> [flags]

commands:
  watch      poll the current price and the portfolio
  portfolio  print open positions and recent trades
  replay     fetch the bar of a symbol at a date
  export     write closed trades to CSV or JSON
`

var errUsage = errors.New("invalid usage")

// runtime bundles the controllers a command works with.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.Client
	session *session.Manager
	chart   *chart.Controller
	orders  *orders.Service
}

type command func(ctx context.Context, rt *runtime, args []string) error

var commands = map[string]command{
	"watch":     runWatch,
	"portfolio": runPortfolio,
	"replay":    runReplay,
	"export":    runExport,
}

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	rt, err := newRuntime(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize", zap.Error(err))
	}

	if err := cmd(ctx, rt, flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		appLogger.Error("Command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func newRuntime(cfg *config.Config, appLogger *zap.Logger) (*runtime, error) {
	client, err := api.NewClient(cfg.APIBaseURL, cfg.Timeout(), appLogger, api.WithRetries(cfg.Retries))
	if err != nil {
		return nil, err
	}
	sess := session.NewManager(client, appLogger)
	chartCtl := chart.NewController(client, cfg.DefaultSymbol, cfg.DefaultTimeframe, cfg.BannerLifetime(), appLogger)
	return &runtime{
		cfg:     cfg,
		logger:  appLogger,
		client:  client,
		session: sess,
		chart:   chartCtl,
		orders:  orders.NewService(client, chartCtl, sess, cfg.HistoryLimit, appLogger),
	}, nil
}

// credentials are shared by the commands that need a session.
type credentials struct {
	username string
	password string
	register bool
}

func (c *credentials) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "user", os.Getenv("PAPER_TRADER_USERNAME"), "account username (env PAPER_TRADER_USERNAME)")
	fs.StringVar(&c.password, "password", os.Getenv("PAPER_TRADER_PASSWORD"), "account password (env PAPER_TRADER_PASSWORD)")
	fs.BoolVar(&c.register, "register", false, "create the account before logging in")
}

// authenticate logs in (or registers) with c.
func (rt *runtime) authenticate(ctx context.Context, c credentials) error {
	if c.username == "" || c.password == "" {
		return errors.New("username and password are required (-user/-password or PAPER_TRADER_USERNAME/PAPER_TRADER_PASSWORD)")
	}

	var (
		user session.User
		err  error
	)
	if c.register {
		user, err = rt.session.Register(ctx, c.username, c.password)
	} else {
		user, err = rt.session.Login(ctx, c.username, c.password)
	}
	if err != nil {
		if msg, ok := session.IsFailure(err); ok {
			return errors.New(msg)
		}
		return err
	}

	rt.logger.Info(session.WelcomeText(user), zap.String("balance", user.Balance.StringFixed(2)))
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: papertrader %s [flags]\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}
