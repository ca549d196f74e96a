package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
	providerCalls *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// New creates a recorder whose collectors are registered with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		messagesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantfuse_messages_sent_total",
				Help: "Total number of messages sent to the event bus",
			},
			[]string{"backend", "topic"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantfuse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantfuse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantfuse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		providerCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantfuse_provider_calls_total",
				Help: "Upstream provider calls by outcome",
			},
			[]string{"provider", "operation", "result"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantfuse_cache_lookups_total",
				Help: "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
	}
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// NewDefault returns the recorder registered with the default Prometheus
// registry served on /metrics. Every call returns the same recorder.
func NewDefault() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// RecordMessageSent records a message sent to a backend topic.
func (r *Recorder) RecordMessageSent(backend, topic string) {
	r.messagesSent.WithLabelValues(backend, topic).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordProviderCall counts one provider attempt; result is "ok" or an error class.
func (r *Recorder) RecordProviderCall(provider, op, result string) {
	r.providerCalls.WithLabelValues(provider, op, result).Inc()
}

func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}
