// Command jobscout runs the job-posting ingestion service and its
// operational one-shots.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/config"
	"github.com/interviewbot/jobscout/internal/logging"
)

var cfgPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jobscout",
		Short:         "Job posting ingestion service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.AddCommand(serveCmd(), healthcheckCmd(), fetchCmd())
	return cmd
}

// bootstrap loads configuration and builds the logger shared by every
// subcommand.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}
