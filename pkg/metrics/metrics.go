package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/policylens/survey-profiler/internal/store"
)

const (
	surveyProfiler = "survey_profiler"

	itemsTotal        = "items_total"
	modelCallDuration = "model_call_duration_seconds"
	batchDuration     = "batch_duration_seconds"
	batchSize         = "batch_items"

	// Labels
	outcomeLabel = "outcome"
)

// Item outcomes as recorded by the worker.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
	OutcomeSkipped   = "skipped"
)

/**
* Metrics definition
**/
var itemsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: surveyProfiler,
		Name:      itemsTotal,
		Help:      "number of queue items handled by the worker, partitioned by outcome",
	},
	[]string{outcomeLabel},
)

var modelCallDurationMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: surveyProfiler,
		Name:      modelCallDuration,
		Help:      "time spent waiting for the language model",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	},
)

var batchDurationMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: surveyProfiler,
		Name:      batchDuration,
		Help:      "time spent on one worker invocation",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	},
)

var batchSizeMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: surveyProfiler,
		Name:      batchSize,
		Help:      "number of items counted as processed per invocation",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 10},
	},
)

func IncreaseItemsTotalMetric(outcome string) {
	itemsTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func ObserveModelCall(d time.Duration) {
	modelCallDurationMetric.Observe(d.Seconds())
}

func ObserveBatch(d time.Duration, processed int) {
	batchDurationMetric.Observe(d.Seconds())
	batchSizeMetric.Observe(float64(processed))
}

// RegisterSubmissionCollector exposes submission counts read from the store at scrape time.
func RegisterSubmissionCollector(s store.Store) error {
	return prometheus.Register(newSubmissionStatsCollector(s))
}

// NewPrometheusMetricsHandler serves the default registry.
func NewPrometheusMetricsHandler() http.Handler {
	return promhttp.Handler()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(itemsTotalMetric)
	prometheus.MustRegister(modelCallDurationMetric)
	prometheus.MustRegister(batchDurationMetric)
	prometheus.MustRegister(batchSizeMetric)
}
