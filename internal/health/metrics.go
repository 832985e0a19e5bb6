package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobscout_health_runs_total",
		Help: "Site health sweeps started.",
	})

	siteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobscout_health_site_failures_total",
		Help: "Failed site health checks by site.",
	}, []string{"site"})
)
