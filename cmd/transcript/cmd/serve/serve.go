package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"app-transcript/internal/app"
	"app-transcript/internal/config"
)

var host string
var port int

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "listen host, overrides server.host")
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides server.port")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcription web server",
	Long: `Start the transcription web server

- GET / serves the upload page with Video and Audio tabs
- POST /api/v1/transcriptions/{audio|video} is the JSON API
- The API key of the configured provider must be set, or startup fails`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		settings, keys, err := config.InitializeConfig(configPath)
		if err != nil {
			return err
		}
		if host != "" {
			settings.Server.Host = host
		}
		if port != 0 {
			if err := config.ValidatePort(port); err != nil {
				return err
			}
			settings.Server.Port = port
		}

		logger, err := app.InitializeLogger(settings)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, cleanup, err := app.InitializeServer(ctx, settings, keys, logger)
		if err != nil {
			logger.Error("failed to initialize server", zap.Error(err))
			return err
		}
		defer cleanup()

		return srv.Start(ctx)
	},
}
