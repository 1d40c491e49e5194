package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"app-transcript/internal/api/server"
	"app-transcript/internal/api/v1/handlers"
	"app-transcript/internal/app/api"
	"app-transcript/internal/app/api/gemini"
	"app-transcript/internal/app/api/openai"
	"app-transcript/internal/app/api/openai/whisper"
	"app-transcript/internal/app/audio"
	"app-transcript/internal/app/cache"
	"app-transcript/internal/app/common"
	"app-transcript/internal/app/transcript"
	"app-transcript/internal/app/util/files"
	"app-transcript/internal/config"
)

func provideLogger(settings *config.Settings) (*zap.Logger, error) {
	return common.NewLogger(settings.Development(), settings.Log.Level)
}

// provideTranscriber picks the remote service named by transcription.provider.
// The matching API key must already be validated.
func provideTranscriber(ctx context.Context, settings *config.Settings, keys *config.APIKeys) (api.Transcriber, error) {
	ts := settings.Transcription
	switch ts.Provider {
	case config.ProviderGemini:
		return gemini.NewTranscriber(ctx, keys.Gemini, ts.BaseURL, ts.Model)
	case config.ProviderOpenAI:
		client := openai.NewClient(keys.OpenAI, ts.BaseURL, ts.Timeout)
		return whisper.NewRemoteTranscriber(client, ts.Model), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", ts.Provider)
	}
}

func provideExtractor(settings *config.Settings, logger *zap.Logger) audio.Extractor {
	return audio.NewFFmpegExtractor(settings.Media.FFmpegPath, settings.Media.FFprobePath, logger)
}

func provideWorkspace(settings *config.Settings, logger *zap.Logger) (*files.Workspace, error) {
	return files.NewWorkspace(settings.Media.WorkDir, logger)
}

func provideServiceConfig(settings *config.Settings) transcript.Config {
	return transcript.Config{
		Language: settings.Transcription.Language,
		Timeout:  settings.Transcription.Timeout,
	}
}

// provideSessionStore opens the session cache backend; the cleanup closes it
func provideSessionStore(ctx context.Context, settings *config.Settings, logger *zap.Logger) (cache.Store, func(), error) {
	var store cache.Store
	switch settings.Session.Backend {
	case config.BackendRedis:
		rs, err := cache.NewRedisStore(ctx, settings.Redis.Addr, settings.Redis.Password, settings.Redis.DB, settings.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		store = rs
	default:
		store = cache.NewMemoryStore(settings.Session.TTL)
	}

	logger.Info("session cache ready", zap.String("backend", settings.Session.Backend))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close session cache", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func provideRegistry(metrics *transcript.Metrics) *prometheus.Registry {
	return metrics.Registry()
}

func provideHandler(service *transcript.Service, store cache.Store, settings *config.Settings, logger *zap.Logger) *handlers.TranscriptionHandler {
	return handlers.NewTranscriptionHandler(service, store, settings.Server.MaxUploadMB, logger)
}

func provideServerConfig(settings *config.Settings) server.Config {
	return server.Config{
		Addr:         settings.Addr(),
		MaxUploadMB:  settings.Server.MaxUploadMB,
		SessionTTL:   settings.Session.TTL,
		ReadTimeout:  settings.Transcription.Timeout,
		WriteTimeout: settings.Transcription.Timeout + time.Minute,
		IdleTimeout:  2 * time.Minute,
		Environment:  settings.Env,
	}
}
