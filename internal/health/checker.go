// Package health smoke-tests every supported job board: fetch one sample
// page per site through the shared browser and verify the extraction step
// still yields real text. A board passing reachability but failing
// extraction almost always means its markup changed under our selectors.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/interviewbot/jobscout/internal/ingest"
)

const (
	// MinTextChars is the extraction floor below which a site fails.
	MinTextChars = 500

	probeTimeout = 10 * time.Second
	fetchTimeout = 30 * time.Second

	// One site every two seconds keeps a full run well under every
	// board's hourly quota.
	paceInterval = 2 * time.Second

	// FailureTopic receives one event per failed site.
	FailureTopic = "site-health-failures"

	probeUserAgent = "InterviewBot/1.0"
)

// Fetcher renders a page; the browser manager satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*ingest.FetchResult, error)
}

// FailureEvent is the payload published for a failed site.
type FailureEvent struct {
	RunID  string `json:"run_id"`
	Site   string `json:"site"`
	Reason string `json:"reason"`
}

// Checker runs the sequential site health sweep.
type Checker struct {
	fetcher   Fetcher
	extractor ingest.ContentExtractor
	publisher ingest.Publisher
	store     ingest.HealthStore
	clock     ingest.Clock
	logger    *zap.Logger
	pace      *rate.Limiter
	sites     []Site

	// probe is swapped in tests; production issues a plain colly GET.
	probe func(ctx context.Context, rawURL string) error
}

// Option tweaks a Checker.
type Option func(*Checker)

// WithSites overrides the site table.
func WithSites(sites []Site) Option {
	return func(c *Checker) { c.sites = sites }
}

// WithProbe overrides the reachability probe.
func WithProbe(probe func(ctx context.Context, rawURL string) error) Option {
	return func(c *Checker) { c.probe = probe }
}

// WithPace overrides the between-site pacing limiter.
func WithPace(limiter *rate.Limiter) Option {
	return func(c *Checker) { c.pace = limiter }
}

// New builds a Checker. Publisher and store may be nil; failures are then
// only logged and the report is only returned, not persisted.
func New(fetcher Fetcher, extractor ingest.ContentExtractor, publisher ingest.Publisher,
	store ingest.HealthStore, clock ingest.Clock, logger *zap.Logger, opts ...Option) *Checker {
	c := &Checker{
		fetcher:   fetcher,
		extractor: extractor,
		publisher: publisher,
		store:     store,
		clock:     clock,
		logger:    logger,
		pace:      rate.NewLimiter(rate.Every(paceInterval), 1),
		sites:     Sites,
		probe:     collyProbe,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every site strictly in sequence. Parallel checks would fight
// both the browser permit pool and the per-site rate limits.
func (c *Checker) Run(ctx context.Context) (ingest.HealthReport, error) {
	report := ingest.HealthReport{
		RunID:     uuid.NewString(),
		StartedAt: c.clock.Now(),
	}
	runsTotal.Inc()

	for _, site := range c.sites {
		if err := c.pace.Wait(ctx); err != nil {
			return report, fmt.Errorf("pace health run: %w", err)
		}
		result := c.checkSite(ctx, site)
		report.Sites = append(report.Sites, result)

		if result.Status == ingest.SiteStatusFail {
			siteFailuresTotal.WithLabelValues(site.Domain).Inc()
			c.logger.Warn("site health check failed",
				zap.String("site", site.Domain), zap.String("reason", result.Reason))
			c.publishFailure(ctx, report.RunID, result)
		} else {
			c.logger.Info("site health check passed",
				zap.String("site", site.Domain), zap.Int("text_length", result.TextLength))
		}
	}

	c.saveReport(ctx, report)
	return report, nil
}

func (c *Checker) checkSite(ctx context.Context, site Site) ingest.SiteHealth {
	result := ingest.SiteHealth{Site: site.Domain, SampleURL: site.SampleURL}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if err := c.probe(ctx, site.SampleURL); err != nil {
		result.Status = ingest.SiteStatusFail
		result.Reason = fmt.Sprintf("site unreachable: %v", err)
		return result
	}

	fetched, err := c.fetcher.Fetch(ctx, site.SampleURL, fetchTimeout)
	if err != nil {
		result.Status = ingest.SiteStatusFail
		result.Reason = fmt.Sprintf("browser fetch failed: %v", err)
		return result
	}

	text := c.extractor.ExtractText(fetched.HTML)
	result.TextLength = len([]rune(text))
	if result.TextLength < MinTextChars {
		result.Status = ingest.SiteStatusFail
		result.Reason = fmt.Sprintf("extracted text too short: %d chars", result.TextLength)
		return result
	}

	result.Status = ingest.SiteStatusPass
	return result
}

func (c *Checker) publishFailure(ctx context.Context, runID string, result ingest.SiteHealth) {
	if c.publisher == nil {
		return
	}
	event := FailureEvent{RunID: runID, Site: result.Site, Reason: result.Reason}
	if _, err := c.publisher.Publish(ctx, FailureTopic, event); err != nil {
		c.logger.Warn("publish health failure event",
			zap.String("site", result.Site), zap.Error(err))
	}
}

func (c *Checker) saveReport(ctx context.Context, report ingest.HealthReport) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveReport(ctx, report); err != nil {
		c.logger.Warn("persist health report", zap.String("run_id", report.RunID), zap.Error(err))
	}
}

// collyProbe issues a plain GET before a browser slot is spent. It
// separates "the site is down" from "the markup changed".
func collyProbe(ctx context.Context, rawURL string) error {
	collector := colly.NewCollector(
		colly.UserAgent(probeUserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(probeTimeout)

	var probeErr error
	collector.OnError(func(_ *colly.Response, err error) {
		probeErr = err
	})
	if err := collector.Visit(rawURL); err != nil {
		return err
	}
	collector.Wait()
	return probeErr
}
