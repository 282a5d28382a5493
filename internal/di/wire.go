//go:build wireinject
// +build wireinject

package di

import (
	"WalkSim/pkg/config"
	"WalkSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories
		ProvideBarStore,
		ProvideResultStore,
		ProvidePredictionStore,
		ProvidePublisher,
		ProvideBarProvider,

		// Model and simulation core
		ProvideTrainer,
		ProvideEngine,
		ProvideRegistry,

		// Use cases
		ProvideGateway,
		ProvidePortfolio,
		ProvideRetrainer,
		ProvideHub,
		ProvidePredictor,
		ProvideReconciler,
		ProvideQueue,
		ProvideKafkaConsumer,
		ProvideResultsConsumer,

		// Application server
		ProvideHandlers,
		ProvideApp,
	)
	return &server.App{}, nil
}
