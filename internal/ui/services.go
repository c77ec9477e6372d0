package ui

import (
	"context"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/rovshanmuradov/paper-trader/internal/chart"
	"github.com/rovshanmuradov/paper-trader/internal/config"
	"github.com/rovshanmuradov/paper-trader/internal/logger"
	"github.com/rovshanmuradov/paper-trader/internal/orders"
	"github.com/rovshanmuradov/paper-trader/internal/session"
	"go.uber.org/zap"
)

// ServiceProvider gives screens access to the controllers and ambient
// services without package-level globals.
type ServiceProvider interface {
	GetSession() *session.Manager
	GetChart() *chart.Controller
	GetOrders() *orders.Service
	GetAPI() *api.Client
	GetBus() *Bus
	GetLogBuffer() *logger.LogBuffer
	GetLogger() *zap.Logger
	GetConfig() *config.Config
	GetContext() context.Context
}

// RealServiceProvider implements ServiceProvider with real services
type RealServiceProvider struct {
	session   *session.Manager
	chart     *chart.Controller
	orders    *orders.Service
	client    *api.Client
	bus       *Bus
	logBuffer *logger.LogBuffer
	logger    *zap.Logger
	config    *config.Config
	context   context.Context
}

// Services lists what NewRealServiceProvider wires together.
type Services struct {
	Session   *session.Manager
	Chart     *chart.Controller
	Orders    *orders.Service
	Client    *api.Client
	Bus       *Bus
	LogBuffer *logger.LogBuffer
}

// NewRealServiceProvider creates a new real service provider
func NewRealServiceProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger, s Services) ServiceProvider {
	return &RealServiceProvider{
		session:   s.Session,
		chart:     s.Chart,
		orders:    s.Orders,
		client:    s.Client,
		bus:       s.Bus,
		logBuffer: s.LogBuffer,
		logger:    logger.Named("ui"),
		config:    cfg,
		context:   ctx,
	}
}

func (p *RealServiceProvider) GetSession() *session.Manager    { return p.session }
func (p *RealServiceProvider) GetChart() *chart.Controller     { return p.chart }
func (p *RealServiceProvider) GetOrders() *orders.Service      { return p.orders }
func (p *RealServiceProvider) GetAPI() *api.Client             { return p.client }
func (p *RealServiceProvider) GetBus() *Bus                    { return p.bus }
func (p *RealServiceProvider) GetLogBuffer() *logger.LogBuffer { return p.logBuffer }
func (p *RealServiceProvider) GetLogger() *zap.Logger          { return p.logger }
func (p *RealServiceProvider) GetConfig() *config.Config       { return p.config }
func (p *RealServiceProvider) GetContext() context.Context     { return p.context }
