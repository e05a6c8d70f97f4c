package readability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts parse outcomes. A nil *Metrics records nothing.
type Metrics struct {
	parses        *prometheus.CounterVec
	attempts      prometheus.Counter
	imageFailures prometheus.Counter
	duration      prometheus.Histogram
}

// NewMetrics creates the parser collectors and registers them with reg,
// if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readability_parses_total",
			Help: "Total number of parsed documents, by outcome",
		}, []string{"outcome"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "readability_grab_attempts_total",
			Help: "Total number of content extraction attempts",
		}),
		imageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "readability_image_failures_total",
			Help: "Total number of images that could not be fetched",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "readability_parse_duration_seconds",
			Help:    "Time spent parsing a document",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.parses, m.attempts, m.imageFailures, m.duration)
	}
	return m
}

func (m *Metrics) observeParse(a *Article, d time.Duration) {
	if m == nil {
		return
	}
	var outcome string
	switch {
	case !a.Completed:
		outcome = "failed"
	case a.IsReadable:
		outcome = "readable"
	default:
		outcome = "unreadable"
	}
	m.parses.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.duration.Observe(d.Seconds())
	}
}

func (m *Metrics) observeAttempt() {
	if m == nil {
		return
	}
	m.attempts.Inc()
}

func (m *Metrics) observeImageFailure() {
	if m == nil {
		return
	}
	m.imageFailures.Inc()
}
