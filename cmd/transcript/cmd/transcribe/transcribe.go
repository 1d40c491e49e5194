package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"app-transcript/internal/app"
	"app-transcript/internal/app/cache"
	"app-transcript/internal/app/model"
	"app-transcript/internal/app/progress"
	"app-transcript/internal/app/transcript"
	"app-transcript/internal/config"
)

var prompt string
var outputDir string
var showProgress bool

func init() {
	Cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "short prompt to guide the transcription")
	Cmd.Flags().StringVarP(&outputDir, "output", "o", "", "write <name>.txt files into this directory instead of stdout")
	Cmd.Flags().BoolVar(&showProgress, "progress", false, "force the progress display even when stderr is not a terminal")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe FILE...",
	Short: "Transcribe local .mp3 and .mp4 files",
	Long: `Transcribe local .mp3 and .mp4 files

- The kind of each file follows its extension
- Video files have their audio track extracted with ffmpeg first
- Identical files given twice are transcribed once`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		settings, keys, err := config.InitializeConfig(configPath)
		if err != nil {
			return err
		}

		logger, err := app.InitializeLogger(settings)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		service, err := app.InitializeService(cmd.Context(), settings, keys, logger)
		if err != nil {
			return err
		}

		if outputDir != "" {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		pm := progress.NewManager(progress.Config{Enabled: progress.ShouldShowProgress(showProgress)})
		bar := pm.CreateBar(len(args), "Transcribing")
		session := cache.NewMemoryCache("cli")

		var failed int
		for _, path := range args {
			spinner := pm.Spinner(filepath.Base(path))
			text, err := run(cmd.Context(), service, session, path)
			spinner.Complete()
			bar.Increment()

			if err != nil {
				failed++
				logger.Error("transcription failed", zap.String("file", path), zap.Error(err))
				continue
			}
			if err := write(cmd.OutOrStdout(), path, text); err != nil {
				return err
			}
		}
		pm.Wait()

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(args))
		}
		return nil
	},
}

func run(ctx context.Context, service *transcript.Service, session cache.Cache, path string) (string, error) {
	kind, err := model.KindFromFilename(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	result, err := service.Transcribe(ctx, session, &model.UploadedFile{
		Kind:     kind,
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Content:  f,
	}, transcript.Options{Prompt: prompt})
	if err != nil {
		return "", err
	}
	if result.PreviouslyFailed {
		return "", fmt.Errorf("an identical file already failed in this run")
	}
	return result.Text, nil
}

func write(stdout io.Writer, path, text string) error {
	if outputDir == "" {
		_, err := fmt.Fprintf(stdout, "==> %s <==\n%s\n\n", path, text)
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".txt"
	if err := os.WriteFile(filepath.Join(outputDir, name), []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write transcription: %w", err)
	}
	return nil
}
