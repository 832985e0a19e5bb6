package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interviewbot/jobscout/internal/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, rate limit sweeper, and scheduled health runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("wire application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
}
