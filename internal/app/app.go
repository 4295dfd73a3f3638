package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"energy-insights/internal/config"
	"energy-insights/internal/dashboard"
	"energy-insights/internal/fetcher"
	"energy-insights/internal/metrics"
	"energy-insights/internal/query"
	"energy-insights/internal/render"
	"energy-insights/internal/scheduler"
	"energy-insights/internal/server"
	"energy-insights/internal/service"
	"energy-insights/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives command output. Defaults to stdout.
	Out io.Writer

	client *fetcher.Client
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) newClient() *fetcher.Client {
	if a.client == nil {
		a.client = fetcher.NewClient(a.Config.FetcherOptions(), a.Logger)
	}
	return a.client
}

func (a *App) newSession() *dashboard.Session {
	return dashboard.NewSession(a.newClient(), a.Config.SessionOptions(), a.Logger)
}

func (a *App) newRenderer() *render.Renderer {
	return render.New(render.Options{Width: a.Config.Export.Width, Height: a.Config.Export.Height}, a.Logger)
}

// loadSession builds a session and loads it once. Fetch failures are logged
// and left on their panels.
func (a *App) loadSession(ctx context.Context) *dashboard.Session {
	session := a.newSession()
	if err := session.Load(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("some panels failed to load")
	}
	return session
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func newRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Serve runs the HTTP view API, plus the refresh loop when configured.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	session := a.loadSession(ctx)
	defer session.Close()

	srv := server.New(server.Options{
		Address:         a.Config.Server.Address,
		GracefulTimeout: a.Config.Server.GracefulTimeout,
	}, session, query.NewResolver(a.newClient(), a.Logger), a.newRenderer(), reg, a.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })

	if a.Config.Refresh.Interval > 0 {
		sched := scheduler.New(scheduler.Options{
			Interval:        a.Config.Refresh.Interval,
			AlignToInterval: a.Config.Refresh.AlignToInterval,
			StartupDelay:    a.Config.Refresh.StartupDelay,
		}, a.Logger)
		svc := service.New(session, sched, a.Logger)
		g.Go(func() error { return svc.Run(gctx) })
	} else {
		a.Logger.Info().Msg("refresh.interval not set; panels load once")
	}

	a.Logger.Info().Msg("starting dashboard server")
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("server terminated with error")
		return err
	}

	a.Logger.Info().Msg("dashboard server stopped")
	return nil
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Filter    string
	Format    OutputFormat
	Selection dashboard.Selection
}

// ExportOptions configure the export command.
type ExportOptions struct {
	Dir       string
	Filter    string
	Format    render.Format
	Selection dashboard.Selection
}

// AskOptions configure the ask command.
type AskOptions struct {
	Prompt string
	Format OutputFormat
	// ChartPath, when set, receives a rendering of a chart answer.
	ChartPath string
}

// RecordsOptions configure the records command.
type RecordsOptions struct {
	Category string
	Limit    int
}
