package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"BatchIngest/internal/config"
	"BatchIngest/internal/domain"
	"BatchIngest/internal/infrastructure/reader"
	"BatchIngest/internal/infrastructure/scheduler"
	"BatchIngest/internal/infrastructure/storage"
	"BatchIngest/internal/logging"
	"BatchIngest/internal/metrics"
	"BatchIngest/internal/ports"
	"BatchIngest/internal/schema"
	"BatchIngest/internal/usecase"
)

// Application wires config to the ingest use case and its lifecycle.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	store        ports.Store
	orchestrator *usecase.Orchestrator
	sources      []usecase.Source
	registry     *metrics.Registry
}

// New builds a runnable application instance connected to the store.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}

	registry := metrics.NewRegistry()
	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Schemas: schema.Defaults(),
		Store:   store,
		Metrics: registry,
		Logger:  baseLogger.With("component", "orchestrator"),
	})

	sources, err := buildSources(cfg.Sources, baseLogger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Application{
		cfg:          cfg,
		logger:       baseLogger,
		store:        store,
		orchestrator: orchestrator,
		sources:      sources,
		registry:     registry,
	}, nil
}

// Run executes one ingest pass, or keeps re-running on an interval when
// the scheduler is configured.
func (a *Application) Run(ctx context.Context) error {
	defer a.store.Close()

	interval := a.cfg.Scheduler.Duration()
	a.logger.Info("starting ingest",
		"env", a.cfg.Environment,
		"sources", len(a.sources),
		"interval", interval)

	if a.cfg.Metrics.Listen != "" {
		go a.serveMetrics(ctx)
	}

	if interval <= 0 {
		_, err := a.orchestrator.Run(ctx, a.sources)
		return err
	}

	driver := scheduler.NewIntervalScheduler(interval)
	recurring := usecase.NewScheduler(driver, a.orchestrator, a.sources)
	if err := recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return recurring.Stop(context.Background())
}

func (a *Application) serveMetrics(ctx context.Context) {
	server := &http.Server{Addr: a.cfg.Metrics.Listen, Handler: a.registry.Handler()}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.logger.Error("metrics listener stopped", "error", err)
	}
}

func buildSources(configs []config.SourceConfig, logger *slog.Logger) ([]usecase.Source, error) {
	sources := make([]usecase.Source, 0, len(configs))
	for _, sc := range configs {
		var src ports.RecordSource
		switch sc.Format {
		case "", "csv":
			src = reader.NewCSVReader(logger.With("component", "reader.csv"))
		case "ndjson":
			src = reader.NewNDJSONReader(logger.With("component", "reader.ndjson"))
		default:
			return nil, fmt.Errorf("source %s: unsupported format %q", sc.Name, sc.Format)
		}

		sources = append(sources, usecase.Source{
			Name:       sc.Name,
			Path:       sc.Path,
			RecordType: domain.RecordType(sc.RecordType),
			Reader:     src,
		})
	}
	return sources, nil
}
