package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/interviewbot/jobscout/internal/app"
	"github.com/interviewbot/jobscout/internal/ingest"
)

const timeRound = 10 * time.Millisecond

func healthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Run one sequential health sweep over every supported job board",
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
			defer application.Close()

			report, err := application.HealthChecker().Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("health run: %w", err)
			}

			for _, site := range report.Sites {
				mark := "PASS"
				detail := fmt.Sprintf("%d chars", site.TextLength)
				if site.Status != ingest.SiteStatusPass {
					mark = "FAIL"
					detail = site.Reason
				}
				cmd.Printf("%-4s %-20s %s (%s)\n", mark, site.Site, detail, site.Duration.Round(timeRound))
			}

			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d sites failed", failed, len(report.Sites))
			}
			cmd.Printf("all %d sites healthy\n", len(report.Sites))
			return nil
		},
	}
}
