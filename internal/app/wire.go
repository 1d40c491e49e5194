//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"app-transcript/internal/api/server"
	"app-transcript/internal/app/transcript"
	"app-transcript/internal/config"
)

var serviceSet = wire.NewSet(
	provideTranscriber,
	provideExtractor,
	provideWorkspace,
	provideServiceConfig,
	transcript.NewMetrics,
	transcript.NewService,
)

// InitializeServer builds the HTTP server and everything behind it
func InitializeServer(ctx context.Context, settings *config.Settings, keys *config.APIKeys, logger *zap.Logger) (*server.Server, func(), error) {
	wire.Build(
		serviceSet,
		provideSessionStore,
		provideRegistry,
		provideHandler,
		provideServerConfig,
		server.NewServer,
	)
	return nil, nil, nil
}

// InitializeService builds the transcription flows for one-shot CLI use
func InitializeService(ctx context.Context, settings *config.Settings, keys *config.APIKeys, logger *zap.Logger) (*transcript.Service, error) {
	wire.Build(serviceSet)
	return nil, nil
}

// InitializeLogger builds the process logger from settings
func InitializeLogger(settings *config.Settings) (*zap.Logger, error) {
	wire.Build(provideLogger)
	return nil, nil
}
