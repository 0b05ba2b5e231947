package app

import (
	"context"
	"fmt"
	"io"
	"net"

	"gorm.io/gorm"

	"github.com/yungbote/docqa-backend/internal/data/db"
	"github.com/yungbote/docqa-backend/internal/http"
	"github.com/yungbote/docqa-backend/internal/observability"
	"github.com/yungbote/docqa-backend/internal/platform/envutil"
	"github.com/yungbote/docqa-backend/internal/platform/filestore"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *http.Server

	clients      Clients
	files        filestore.Store
	otelShutdown func(context.Context) error
}

type Option func(*options)

type options struct {
	log     *logger.Logger
	cfg     *Config
	clients *Clients
}

// WithLogger replaces the LOG_MODE logger.
func WithLogger(log *logger.Logger) Option { return func(o *options) { o.log = log } }

// WithConfig skips LoadConfig.
func WithConfig(cfg Config) Option { return func(o *options) { o.cfg = &cfg } }

// WithClients skips provider selection and uses the given model clients.
func WithClients(c Clients) Option { return func(o *options) { o.clients = &c } }

func New(ctx context.Context, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log
	if log == nil {
		l, err := logger.New(envutil.String("LOG_MODE", "development"))
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		log = l
	}

	log.Info("Loading environment variables...")
	var cfg Config
	if o.cfg != nil {
		cfg = *o.cfg
	} else {
		cfg = LoadConfig(log)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})

	theDB, err := OpenDatabase(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = theDB

	files, err := resolveFileStore(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.files = files

	if o.clients != nil {
		a.clients = *o.clients
	} else {
		clients, err := wireClients(ctx, log, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.clients = clients
	}

	a.Repos = wireRepos(theDB, log)
	a.Services = wireServices(log, cfg, a.Repos, a.clients, files)
	handlers := wireHandlers(log, cfg, a.Services)
	a.Server = http.NewServer(routerConfig(log, cfg, handlers))
	return a, nil
}

// OpenDatabase connects and migrates the documents schema.
func OpenDatabase(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = db.Close(theDB)
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return theDB, nil
}

func (a *App) Address() string {
	return net.JoinHostPort("", a.Cfg.Port)
}

// Run blocks serving HTTP until Shutdown.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting server", "address", a.Address())
	return a.Server.Run(a.Address())
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	a.Log.Info("Shutting down server")
	return a.Server.Shutdown(ctx)
}

// Close releases everything New acquired, in reverse order. Safe on a
// partially built App.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Indexes != nil {
		if err := a.Services.Indexes.Close(); err != nil {
			a.Log.Warn("closing index registry", "error", err)
		}
	}
	a.clients.Close()
	if c, ok := a.files.(io.Closer); ok {
		_ = c.Close()
	}
	a.files = nil
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil {
			a.Log.Warn("closing database", "error", err)
		}
		a.DB = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		a.otelShutdown = nil
	}
	a.Log.Sync()
}
