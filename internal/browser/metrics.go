package browser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobscout_browser_fetches_total",
		Help: "Browser fetches by outcome.",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobscout_browser_fetch_duration_seconds",
		Help:    "Wall time of successful browser fetches.",
		Buckets: prometheus.DefBuckets,
	})

	queueTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobscout_browser_queue_timeouts_total",
		Help: "Callers that gave up waiting for a browser permit.",
	})

	relaunchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobscout_browser_relaunches_total",
		Help: "Browser processes relaunched after a crash.",
	})

	screenshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobscout_browser_screenshots_total",
		Help: "Full page screenshots captured for image-heavy postings.",
	})

	blockedSubrequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobscout_browser_blocked_subrequests_total",
		Help: "Sub-requests aborted by the URL safety check.",
	})

	pdfsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobscout_browser_pdfs_total",
		Help: "PDF documents rendered.",
	})
)
