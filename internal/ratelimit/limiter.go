// Package ratelimit guards external job sites against being hammered by
// the fetcher. It keeps two independent per-site gates: a sliding-window
// hourly quota and a small fixed pool of concurrency slots. State is
// in-process and advisory; the fetcher runs as a single instance.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/ingest"
)

const (
	window                = time.Hour
	slotPollInterval      = 100 * time.Millisecond
	defaultAcquireTimeout = 30 * time.Second
	slotMaxHold           = 5 * time.Minute
	sweepInterval         = 5 * time.Minute
)

// Decision is the outcome of a quota check. RetryAfter is only meaningful
// when Allowed is false.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	RetryAfter time.Duration `json:"retry_after_ms,omitempty"`
}

type slot struct {
	inUse      bool
	acquiredAt time.Time
	generation uint64
}

// Limiter tracks request ledgers and concurrency slots per normalized
// hostname.
type Limiter struct {
	mu      sync.Mutex
	ledgers map[string][]time.Time
	slots   map[string][]slot
	clock   ingest.Clock
	logger  *zap.Logger
}

// New creates a Limiter on the given clock.
func New(clock ingest.Clock, logger *zap.Logger) *Limiter {
	return &Limiter{
		ledgers: make(map[string][]time.Time),
		slots:   make(map[string][]slot),
		clock:   clock,
		logger:  logger,
	}
}

// NormalizeHostname resolves a hostname to its site key: exact table
// match first, then with the www. prefix stripped. Unknown hosts keep the
// stripped form and fall under the default limits.
func NormalizeHostname(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if _, ok := siteTable[host]; ok {
		return host
	}
	stripped := strings.TrimPrefix(host, "www.")
	return stripped
}

func limitsFor(site string) siteLimits {
	if limits, ok := siteTable[site]; ok {
		return limits
	}
	return defaultLimits
}

// Check reports whether the site is under its hourly quota. The ledger is
// pruned to the trailing window before counting; when the quota is
// exhausted, RetryAfter is computed from the oldest surviving timestamp.
func (l *Limiter) Check(hostname string) Decision {
	site := NormalizeHostname(hostname)
	limits := limitsFor(site)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := pruneLedger(l.ledgers[site], now)
	l.ledgers[site] = ledger

	if len(ledger) >= limits.MaxPerHour {
		retryAfter := ledger[0].Add(window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		quotaDenials.WithLabelValues(site).Inc()
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}
	return Decision{Allowed: true}
}

// RecordRequest appends a timestamp to the site's ledger. Call it once per
// request actually issued, not per attempt, so the quota stays accurate.
func (l *Limiter) RecordRequest(hostname string) {
	site := NormalizeHostname(hostname)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.ledgers[site] = append(pruneLedger(l.ledgers[site], now), now)
}

// AcquireConcurrency claims one of the site's concurrency slots, polling
// until a slot frees or the timeout elapses. It returns a release closure
// on success and nil on timeout; callers must check for nil. The closure
// is safe to call more than once but must be called at least once.
func (l *Limiter) AcquireConcurrency(ctx context.Context, hostname string, timeout time.Duration) func() {
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	site := NormalizeHostname(hostname)
	// The poll loop runs on wall time; the injected clock only drives
	// ledger windows and stale-slot detection.
	deadline := time.Now().Add(timeout)

	for {
		if release := l.tryAcquire(site); release != nil {
			return release
		}
		if time.Now().After(deadline) {
			acquireTimeouts.WithLabelValues(site).Inc()
			return nil
		}
		select {
		case <-ctx.Done():
			acquireTimeouts.WithLabelValues(site).Inc()
			return nil
		case <-time.After(slotPollInterval):
		}
	}
}

func (l *Limiter) tryAcquire(site string) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	slots, ok := l.slots[site]
	if !ok {
		slots = make([]slot, limitsFor(site).MaxConcurrent)
		l.slots[site] = slots
	}
	for i := range slots {
		if slots[i].inUse {
			continue
		}
		slots[i].inUse = true
		slots[i].acquiredAt = l.clock.Now()
		slots[i].generation++
		gen := slots[i].generation
		var once sync.Once
		return func() {
			once.Do(func() { l.release(site, i, gen) })
		}
	}
	return nil
}

// release frees a slot only if it still belongs to the acquisition that
// created the closure; a sweep may have force-released it in between.
func (l *Limiter) release(site string, index int, generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slots := l.slots[site]
	if index >= len(slots) {
		return
	}
	if slots[index].generation != generation {
		return
	}
	slots[index].inUse = false
}

// Sweep prunes every ledger to the trailing window and force-releases any
// slot held longer than slotMaxHold. Long holds indicate a crashed or
// leaked fetch; releasing them keeps one bad fetch from starving a site.
func (l *Limiter) Sweep() {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for site, ledger := range l.ledgers {
		pruned := pruneLedger(ledger, now)
		if len(pruned) == 0 {
			delete(l.ledgers, site)
			continue
		}
		l.ledgers[site] = pruned
	}
	for site, slots := range l.slots {
		for i := range slots {
			if !slots[i].inUse {
				continue
			}
			held := now.Sub(slots[i].acquiredAt)
			if held <= slotMaxHold {
				continue
			}
			slots[i].inUse = false
			slots[i].generation++
			forcedReleases.WithLabelValues(site).Inc()
			l.logger.Warn("force-released stale concurrency slot",
				zap.String("site", site),
				zap.Int("slot", i),
				zap.Duration("held", held),
			)
		}
	}
}

// StartSweeper runs Sweep every sweepInterval until ctx finishes.
func (l *Limiter) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

func pruneLedger(ledger []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-window)
	idx := 0
	for idx < len(ledger) && !ledger[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return ledger
	}
	return append([]time.Time(nil), ledger[idx:]...)
}
