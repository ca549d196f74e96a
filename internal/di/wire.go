//go:build wireinject
// +build wireinject

package di

import (
	"QuantFuse/internal/service/gateway"
	"QuantFuse/internal/usecase"
	"QuantFuse/pkg/config"
	"QuantFuse/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	// Infrastructure
	ProvideBackend,
	ProvidePublisher,
	ProvideLogger,
	ProvideTracing,
	ProvideMetrics,
	ProvideLimiter,
	ProvideCaches,

	// Providers and gateway
	ProvideProviders,
	ProvideProviderLimits,
	ProvideGateway,
	wire.Bind(new(usecase.MarketData), new(*gateway.Gateway)),

	// Analytics
	ProvideSentimentScorer,
	ProvideTechnicalScorer,
	ProvideFusionEngine,
	ProvideSignalGenerator,

	// Use cases
	ProvideInsightService,
	ProvideSignalService,
	ProvideNewsService,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		coreSet,
		ProvideTradeStream,
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeServices wires the use cases without the HTTP server, for
// one-shot CLI commands.
func InitializeServices(cfg *config.Config) (*Services, func(), error) {
	wire.Build(
		coreSet,
		ProvideServices,
	)
	return nil, nil, nil
}
