package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/storefront/internal/config"
	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/handlers"
	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/module"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/registry"
	"github.com/nfrund/storefront/internal/simulate"
	"github.com/nfrund/storefront/internal/topicmgr"
)

// Server holds the HTTP server and the process-wide services it owns.
type Server struct {
	E        *echo.Echo
	Cfg      *config.Config
	Registry *registry.Registry

	bus       *pubsub.WatermillBridge
	scheduler *simulate.Scheduler
	products  domain.ProductRepository
	modules   []module.Module
	logger    *slog.Logger
}

// Option customises a Server.
type Option func(*options)

type options struct {
	random  simulate.Random
	logger  *slog.Logger
	modules []module.Module
}

// WithRandom replaces the random source used by every simulation.
func WithRandom(r simulate.Random) Option {
	return func(o *options) { o.random = r }
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithModules replaces the default module list.
func WithModules(mods ...module.Module) Option {
	return func(o *options) { o.modules = mods }
}

// New assembles the server: it creates the bus and scheduler, registers the
// framework services, then registers and boots every module. The server takes
// ownership of products and closes it on Shutdown.
func New(ctx context.Context, cfg *config.Config, products domain.ProductRepository, opts ...Option) (*Server, error) {
	o := options{modules: AppModules()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.random == nil {
		o.random = simulate.NewRandom(cfg.RandomSeed)
	}

	s := &Server{
		Cfg:       cfg,
		Registry:  registry.New(cfg),
		bus:       pubsub.NewWatermillBridge(pubsub.WithLogger(o.logger)),
		scheduler: simulate.NewScheduler(),
		products:  products,
		modules:   o.modules,
		logger:    o.logger,
	}

	reg := s.Registry
	registry.Set[pubsub.Bus](reg, registry.BusKey, s.bus)
	registry.Set(reg, registry.ProductsKey, products)
	registry.Set(reg, registry.SchedulerKey, s.scheduler)
	registry.Set(reg, registry.RandomKey, o.random)
	registry.Set(reg, registry.TopicsKey, topicmgr.NewManager())
	registry.Set(reg, registry.LoggerKey, o.logger)

	s.E = newEcho(o.logger)

	for _, m := range s.modules {
		if err := m.Register(reg); err != nil {
			return nil, fmt.Errorf("register module %s: %w", m.Name(), err)
		}
		s.logger.Debug("Module registered", "module", m.Name())
	}

	api := s.E.Group("/api")
	for _, m := range s.modules {
		if err := m.Boot(ctx, api, reg); err != nil {
			return nil, fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
	}
	s.E.GET("/health", handlers.Health)

	return s, nil
}

func newEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = middleware.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	return e
}

// Topics returns the topic manager populated by the modules.
func (s *Server) Topics() *topicmgr.Manager {
	return registry.MustGet(s.Registry, registry.TopicsKey)
}

// Bus returns the process-wide event bus.
func (s *Server) Bus() pubsub.Bus {
	return s.bus
}
