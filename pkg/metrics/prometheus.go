package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	validationsTotal  *prometheus.CounterVec
	providerAttempts  *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	publishesTotal    *prometheus.CounterVec
	deliveriesDropped prometheus.Counter
	errorsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
	ringDepth         prometheus.Gauge
	activeSubscribers prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		validationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpipe_validations_total",
				Help: "Total number of candidate validations by verdict",
			},
			[]string{"symbol", "verdict"},
		),
		providerAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpipe_provider_attempts_total",
				Help: "Upstream market data fetch attempts by provider and result",
			},
			[]string{"provider", "result"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpipe_snapshot_cache_lookups_total",
				Help: "Market snapshot cache lookups",
			},
			[]string{"result"},
		),
		publishesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpipe_signals_published_total",
				Help: "Validated signals published to the distribution hub",
			},
			[]string{"symbol"},
		),
		deliveriesDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "signalpipe_deliveries_dropped_total",
				Help: "Push deliveries dropped due to full or closed subscriber buffers",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpipe_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalpipe_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ringDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalpipe_ring_buffer_depth",
				Help: "Number of signals currently retained in the ring buffer",
			},
		),
		activeSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalpipe_active_subscribers",
				Help: "Number of live subscribers",
			},
		),
	}
}

// RecordValidation records a completed validation.
func (r *Recorder) RecordValidation(symbol string, accepted bool) {
	verdict := "rejected"
	if accepted {
		verdict = "accepted"
	}
	r.validationsTotal.WithLabelValues(symbol, verdict).Inc()
}

// RecordProviderAttempt records one upstream fetch attempt.
func (r *Recorder) RecordProviderAttempt(provider string, ok bool) {
	result := "error"
	if ok {
		result = "ok"
	}
	r.providerAttempts.WithLabelValues(provider, result).Inc()
}

// RecordCacheHit records a snapshot cache lookup.
func (r *Recorder) RecordCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordPublish records a signal handed to the hub.
func (r *Recorder) RecordPublish(symbol string) {
	r.publishesTotal.WithLabelValues(symbol).Inc()
}

// RecordDeliveryDropped records a dropped push delivery.
func (r *Recorder) RecordDeliveryDropped(string) {
	r.deliveriesDropped.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// SetRingDepth updates the ring buffer depth gauge.
func (r *Recorder) SetRingDepth(n int) {
	r.ringDepth.Set(float64(n))
}

// SetActiveSubscribers updates the live subscriber gauge.
func (r *Recorder) SetActiveSubscribers(n int) {
	r.activeSubscribers.Set(float64(n))
}
