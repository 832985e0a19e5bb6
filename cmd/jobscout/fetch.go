package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/interviewbot/jobscout/internal/app"
)

func fetchCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch one posting URL through the robots and rate limit gates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawURL := args[0]
			parsed, err := url.Parse(rawURL)
			if err != nil || parsed.Hostname() == "" {
				return fmt.Errorf("invalid url %q", rawURL)
			}

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

			ctx := cmd.Context()
			if decision := application.Robots().Check(ctx, rawURL); !decision.Allowed {
				return fmt.Errorf("robots.txt disallows %s (%s)", rawURL, decision.Reason)
			}

			host := parsed.Hostname()
			if decision := application.Limiter().Check(host); !decision.Allowed {
				return fmt.Errorf("hourly quota for %s exhausted, retry in %s",
					host, decision.RetryAfter.Round(time.Second))
			}
			release := application.Limiter().AcquireConcurrency(ctx, host, 30*time.Second)
			if release == nil {
				return fmt.Errorf("no free concurrency slot for %s", host)
			}
			defer release()

			result, err := application.Browser().Fetch(ctx, rawURL, timeout)
			if err != nil {
				application.Limiter().RecordRequest(host)
				return fmt.Errorf("fetch: %w", err)
			}
			application.Limiter().RecordRequest(host)

			cmd.Println(result.HTML)
			if len(result.Screenshots) > 0 {
				cmd.PrintErrf("captured %d screenshot(s)\n", len(result.Screenshots))
			}
			cmd.PrintErrf("fetched %s in %s\n", result.FinalURL, result.Duration.Round(timeRound))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "navigation timeout")
	return cmd
}
