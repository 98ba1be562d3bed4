package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rickgao/gateway-presence/internal/stats"
)

const namespace = "presence"

// Metrics implements session.Metrics on top of Prometheus collectors.
type Metrics struct {
	heartbeats prometheus.Counter
	failures   *prometheus.CounterVec
}

// New registers session metrics and a counters collector with reg.
func New(reg prometheus.Registerer, counters *stats.Counters) *Metrics {
	m := &Metrics{
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_sent_total",
			Help:      "Heartbeat frames written across all sessions",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_failures_total",
			Help:      "Sessions that ended with an error, labeled by the stage that failed",
		}, []string{"stage"}),
	}

	reg.MustRegister(m.heartbeats, m.failures, newCountersCollector(counters))
	return m
}

// HeartbeatSent counts one heartbeat.
func (m *Metrics) HeartbeatSent() {
	m.heartbeats.Inc()
}

// SessionFailed counts one failed session.
func (m *Metrics) SessionFailed(stage string) {
	m.failures.WithLabelValues(stage).Inc()
}

// countersCollector exports stats.Counters at scrape time.
type countersCollector struct {
	counters *stats.Counters
	online   *prometheus.Desc
	total    *prometheus.Desc
	ended    *prometheus.Desc
}

func newCountersCollector(counters *stats.Counters) *countersCollector {
	return &countersCollector{
		counters: counters,
		online: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sessions", "online"),
			"Sessions that completed identify", nil, nil),
		total: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sessions", "total"),
			"Credentials loaded", nil, nil),
		ended: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sessions", "ended"),
			"Sessions that have terminated", nil, nil),
	}
}

func (c *countersCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.online
	ch <- c.total
	ch <- c.ended
}

func (c *countersCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.counters.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.online, prometheus.GaugeValue, float64(s.Online))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.Total))
	ch <- prometheus.MustNewConstMetric(c.ended, prometheus.GaugeValue, float64(s.Ended))
}
