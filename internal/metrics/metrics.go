// Package metrics exposes timings orchestration counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records how each timings request was resolved.
type Collector struct {
	resolutions   *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	alertInstalls *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "athan_timings_resolutions_total",
			Help: "Timings requests by where the answer came from.",
		}, []string{"source"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "athan_timings_fetch_failures_total",
			Help: "Failed remote timings fetches by reason.",
		}, []string{"reason"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "athan_timings_fetch_latency_seconds",
			Help:    "Latency of successful remote timings fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		alertInstalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "athan_alert_installs_total",
			Help: "Alert installs by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.resolutions, c.fetchFailures, c.fetchLatency, c.alertInstalls)
	return c
}

func (c *Collector) RecordCacheHit() { c.resolutions.WithLabelValues("cache").Inc() }

func (c *Collector) RecordFetchSuccess(latency time.Duration) {
	c.resolutions.WithLabelValues("remote").Inc()
	c.fetchLatency.Observe(latency.Seconds())
}

func (c *Collector) RecordFetchFailure(reason string) {
	c.fetchFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordIncomplete()    { c.resolutions.WithLabelValues("remote_incomplete").Inc() }
func (c *Collector) RecordStaleFallback() { c.resolutions.WithLabelValues("stale").Inc() }
func (c *Collector) RecordEmpty()         { c.resolutions.WithLabelValues("empty").Inc() }

// RecordAlertInstalls counts one rebuild's outcome.
func (c *Collector) RecordAlertInstalls(installed, failed int) {
	c.alertInstalls.WithLabelValues("installed").Add(float64(installed))
	c.alertInstalls.WithLabelValues("failed").Add(float64(failed))
}

// Handler serves the scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
