package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"app-transcript/cmd/transcript/cmd/serve"
	"app-transcript/cmd/transcript/cmd/transcribe"
	"app-transcript/cmd/transcript/cmd/version"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Transcribe uploaded audio and video files",
	Long: `Transcribe .mp3 audio and .mp4 video files with a remote speech-to-text service.

- serve starts the web page and JSON API
- transcribe runs the same flow on local files
- Results are cached per session by content hash`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML settings file (defaults and TRANSCRIPT_* environment apply without it)")
}
