package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anime-shed/sharpness-inspector-go/internal/config"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sharpness-inspector",
		Long:          `Blur and sharpness analysis for photographed documents`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment; DEBUG also lowers the log level
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		logger.SetLevel("debug")
	}
	return cfg, nil
}
