package crystal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crystal",
			Subsystem: "bootstrap",
			Name:      "phase_duration_seconds",
			Help:      "Duration of bootstrap phases in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase", "outcome"},
	)

	bootstrapTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crystal",
			Subsystem: "bootstrap",
			Name:      "total",
			Help:      "Completed bootstraps by outcome",
		},
		[]string{"outcome"},
	)

	resourcesProvisioned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crystal",
			Subsystem: "resources",
			Name:      "provisioned_total",
			Help:      "Resource provisioning attempts by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	resourceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crystal",
			Subsystem: "resources",
			Name:      "connect_duration_seconds",
			Help:      "Time spent connecting a resource in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(phaseDuration, bootstrapTotal, resourcesProvisioned, resourceDuration)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func observeResource(name string, d time.Duration, err error) {
	resourcesProvisioned.WithLabelValues(name, outcome(err)).Inc()
	resourceDuration.WithLabelValues(name).Observe(d.Seconds())
}
