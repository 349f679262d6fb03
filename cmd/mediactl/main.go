package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-media/pkg/simplemedia/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "mediactl",
		Short: "Simple Media CLI - media file management",
		Long: `Simple Media Command Line Interface

Manages media records and their stored files directly through the media
manager. Storage, database and CDN settings are read from the same
environment variables as the server (DATABASE_URL, STORAGE_URL, ...).

Uses in-memory storage by default for quick testing and development.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewUploadCommand())
	rootCmd.AddCommand(NewUpdateCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewDownloadCommand())
	rootCmd.AddCommand(NewDeleteCommand())
	rootCmd.AddCommand(NewURLCommand())
	rootCmd.AddCommand(NewMigrateCommand())

	return rootCmd
}

// loadConfig reads the environment configuration
func loadConfig() (*config.ServerConfig, error) {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newRuntime builds the media runtime from the environment. The caller must
// Close it so pending thumbnails finish.
func newRuntime(cmd *cobra.Command) (*config.Runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Build(cmd.Context(), nil, newLogger(cmd))
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
