package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FxSignals/internal/domain/repository"
	"FxSignals/internal/usecase"
	pkgch "FxSignals/pkg/clickhouse"
	"FxSignals/pkg/config"
	xhttp "FxSignals/pkg/http"
	applogger "FxSignals/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	recorder   *usecase.Recorder
	publisher  *usecase.Publisher
	history    repository.HistoryStore
	events     repository.EventPublisher
	archive    repository.RunArchive
	chClient   *pkgch.Client
}

// New creates a new App instance with all dependencies. events, archive and
// chClient are nil when their sinks are disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	recorder *usecase.Recorder,
	publisher *usecase.Publisher,
	history repository.HistoryStore,
	events repository.EventPublisher,
	archive repository.RunArchive,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		recorder:   recorder,
		publisher:  publisher,
		history:    history,
		events:     events,
		archive:    archive,
		chClient:   chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.recorder.Start(ctx)
	a.l.Info("outcome recorder started",
		applogger.String("history", a.cfg.History.Backend),
		applogger.Bool("kafka", a.events != nil),
		applogger.Bool("clickhouse", a.archive != nil),
	)

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// Closing the publisher ends websocket streams and lets the recorder drain.
	a.publisher.Close()
	a.recorder.Stop()

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.l.Warn("archive close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if err := a.history.Close(); err != nil {
		a.l.Warn("history close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
