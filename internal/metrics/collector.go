package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Session outcome labels.
const (
	StatusConverged = "converged"
	StatusFallback  = "fallback"
	StatusFailed    = "failed"
)

// Collector aggregates voting metrics for Prometheus.
type Collector struct {
	sessionsTotal   *prometheus.CounterVec
	sessionRounds   prometheus.Histogram
	sessionDuration prometheus.Histogram

	samplesTotal  *prometheus.CounterVec
	redFlagsTotal *prometheus.CounterVec

	samplesInFlight prometheus.Gauge

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered on reg. A nil reg
// uses the default Prometheus registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.sessionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voting_sessions_total",
			Help:      "Total number of voting sessions by outcome",
		},
		[]string{"status"},
	)

	c.sessionRounds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "voting_session_rounds",
			Help:      "Number of sampling rounds per session",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
	)

	c.sessionDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "voting_session_duration_seconds",
			Help:      "Voting session duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	c.samplesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voting_samples_total",
			Help:      "Total number of samples by validity",
		},
		[]string{"result"}, // valid, invalid
	)

	c.redFlagsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voting_red_flags_total",
			Help:      "Total number of red flags by type",
		},
		[]string{"flag"},
	)

	c.samplesInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "voting_samples_in_flight",
			Help:      "Number of sample calls currently in flight",
		},
	)

	c.cacheHits = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voting_cache_hits_total",
			Help:      "Total number of decision cache hits",
		},
	)

	c.cacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voting_cache_misses_total",
			Help:      "Total number of decision cache misses",
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordSession records one completed session.
func (c *Collector) RecordSession(status string, rounds int, duration time.Duration) {
	c.sessionsTotal.WithLabelValues(status).Inc()
	c.sessionRounds.Observe(float64(rounds))
	c.sessionDuration.Observe(duration.Seconds())
}

// RecordSample records one sample by validity.
func (c *Collector) RecordSample(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	c.samplesTotal.WithLabelValues(result).Inc()
}

// RecordRedFlag records one raised red flag.
func (c *Collector) RecordRedFlag(flag string) {
	c.redFlagsTotal.WithLabelValues(flag).Inc()
}

// SampleStarted marks one sample call entering flight.
func (c *Collector) SampleStarted() {
	c.samplesInFlight.Inc()
}

// SampleFinished marks one sample call leaving flight.
func (c *Collector) SampleFinished() {
	c.samplesInFlight.Dec()
}

// RecordCacheHit records a decision cache hit.
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss records a decision cache miss.
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}
