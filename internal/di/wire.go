//go:build wireinject
// +build wireinject

package di

import (
	"FxSignals/internal/params"
	"FxSignals/internal/usecase"
	"FxSignals/pkg/config"
	"FxSignals/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Sinks
		ProvideHistoryStore,
		ProvideEventPublisher,
		ProvideRunArchive,

		// Domain
		params.New,
		ProvidePredictionService,
		usecase.NewPublisher,
		usecase.NewController,
		usecase.NewRecorder,

		// HTTP
		ProvideLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
