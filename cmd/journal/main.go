// Package main provides the trade journal command line: the HTTP service and
// offline analysis of exported journals.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Trading journal intelligence engine",
	Long: `Detects behavioural patterns, computes performance metrics and coaches
traders from their journal history.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "journal %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(versionCmd, serveCmd, analyzeCmd, predictCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the config file, overlays AWS secrets when enabled and
// validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ApplySecretsFromEnv(cmd.Context(), cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment), nil
}
