// Package robots decides whether fetching a URL is permitted by the
// target site's robots.txt. Parsed state is cached per domain in the
// external KV cache so repeated fetches of the same board stay cheap and
// survive restarts.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/ingest"
)

const (
	// UserAgent identifies the fetcher to job boards.
	UserAgent = "InterviewBot/1.0"

	cacheKeyPrefix = "robots:"
	cacheTTL       = 24 * time.Hour
	fetchTimeout   = 5 * time.Second
	maxRobotsBytes = 1 << 20

	// noRobotsSentinel marks a domain with no reachable robots.txt. The
	// outcome is cached like a real file so the 24h TTL bounds refetches
	// either way.
	noRobotsSentinel = "\x00none"
)

// Decision is the structured outcome of a robots check. Denials are
// values, never errors; the caller decides whether to proceed.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Checker fetches, caches, and evaluates robots.txt per domain.
type Checker struct {
	client    *http.Client
	cache     ingest.Cache
	userAgent string
	logger    *zap.Logger
}

// New builds a Checker on the shared cache.
func New(cache ingest.Cache, logger *zap.Logger) *Checker {
	return &Checker{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		cache:     cache,
		userAgent: UserAgent,
		logger:    logger,
	}
}

// Check evaluates whether the URL's path may be fetched. The query string
// participates in matching. Any problem obtaining robots.txt fails open.
func (c *Checker) Check(ctx context.Context, rawURL string) Decision {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return Decision{Allowed: false, Reason: "invalid_url"}
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	body, found := c.load(ctx, parsed)
	if !found || body == noRobotsSentinel {
		// Fail open: a site without robots.txt permits everything.
		return Decision{Allowed: true}
	}

	data, err := robotstxt.FromBytes([]byte(body))
	if err != nil {
		c.logger.Warn("robots parse failed; allowing access",
			zap.String("domain", parsed.Hostname()), zap.Error(err))
		return Decision{Allowed: true}
	}
	group := data.FindGroup(c.userAgent)
	if group == nil {
		return Decision{Allowed: true}
	}
	if !group.Test(path) {
		return Decision{Allowed: false, Reason: "robots_disallow"}
	}
	return Decision{Allowed: true}
}

// load returns the cached robots body for the domain, fetching and caching
// on miss. The bool is false only when both the cache and the fetch gave
// nothing usable; the caller then fails open.
func (c *Checker) load(ctx context.Context, parsed *url.URL) (string, bool) {
	domain := strings.ToLower(parsed.Hostname())
	key := cacheKeyPrefix + domain

	if cached, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return cached, true
	} else if err != nil {
		c.logger.Warn("robots cache read failed", zap.String("domain", domain), zap.Error(err))
	}

	body := c.fetch(ctx, domain)
	if err := c.cache.Set(ctx, key, body, cacheTTL); err != nil {
		c.logger.Warn("robots cache write failed", zap.String("domain", domain), zap.Error(err))
	}
	return body, true
}

// fetch retrieves https://{domain}/robots.txt. Non-2xx responses, network
// errors, and timeouts all collapse to the sentinel.
func (c *Checker) fetch(ctx context.Context, domain string) string {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	robotsURL := fmt.Sprintf("https://%s/robots.txt", domain)
	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return noRobotsSentinel
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("robots fetch failed; treating as absent",
			zap.String("domain", domain), zap.Error(err))
		return noRobotsSentinel
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close robots body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return noRobotsSentinel
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return noRobotsSentinel
	}
	return string(body)
}
