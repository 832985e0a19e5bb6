package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// quotaDenials counts fetches rejected by the hourly site quota.
	quotaDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobscout_site_quota_denials_total",
		Help: "Fetches denied because a site exhausted its hourly quota.",
	}, []string{"site"})
	// acquireTimeouts counts concurrency-slot waits that gave up.
	acquireTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobscout_site_slot_timeouts_total",
		Help: "Concurrency slot acquisitions that timed out.",
	}, []string{"site"})
	// forcedReleases counts slots reclaimed by the background sweep.
	forcedReleases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobscout_site_slot_forced_releases_total",
		Help: "Stale concurrency slots force-released by the sweeper.",
	}, []string{"site"})
)
