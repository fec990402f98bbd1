//go:build wireinject
// +build wireinject

package di

import (
	"MyPay/internal/usecase"
	"MyPay/pkg/config"
	"MyPay/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideCache,
	ProvideRateProvider,
	ProvideModelLoader,
	ProvideRecordStore,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		coreSet,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideHistoryStore,
		ProvidePublisher,

		// Use cases
		ProvideJournal,
		ProvidePipeline,
		ProvideKafkaJournalHandler,

		// Transport
		ProvideRateLimiter,
		ProvideRenderer,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializePredictor wires a journal-free pipeline for one-shot CLI runs.
func InitializePredictor(cfg *config.Config) (*usecase.PredictionPipeline, error) {
	wire.Build(
		coreSet,
		ProvideStandalonePipeline,
	)
	return &usecase.PredictionPipeline{}, nil
}
