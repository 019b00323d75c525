// Package metrics provides Prometheus metrics collection for the fraud
// detection service. It defines counters, gauges, and histograms for
// training runs, scoring requests, validation outcomes, and model state,
// exposed via the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the fraud detection service.
type Metrics struct {
	// Training metrics
	TrainingsTotal   prometheus.Counter   // Total number of completed training runs
	TrainingFailures prometheus.Counter   // Total number of failed training runs
	TrainingDuration prometheus.Histogram // Duration of training runs in seconds

	// Scoring metrics
	ScoringRequests  prometheus.Counter   // Total number of scoring requests
	RecordsScored    prometheus.Counter   // Total number of transaction records scored
	FraudFlagged     prometheus.Counter   // Total number of records classified as fraud
	ScoringDuration  prometheus.Histogram // Duration of scoring requests in seconds
	FraudProbability prometheus.Histogram // Distribution of predicted fraud probabilities

	// Data quality metrics
	ValidationFailures prometheus.Counter // Total number of tables rejected by validation

	// Model state metrics
	ModelLoaded    prometheus.Gauge // 1 when a model is active, 0 otherwise
	ModelTrainedAt prometheus.Gauge // Unix timestamp of the active model's training time
	ErrorsTotal    prometheus.Counter
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// testing). This allows isolated metric collection in tests without
// affecting the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		TrainingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "trainings_total",
			Help: "Total number of completed training runs",
		}),
		TrainingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_failures_total",
			Help: "Total number of failed training runs",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		ScoringRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "scoring_requests_total",
			Help: "Total number of scoring requests",
		}),
		RecordsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "records_scored_total",
			Help: "Total number of transaction records scored",
		}),
		FraudFlagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_flagged_total",
			Help: "Total number of records classified as fraud",
		}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoring_duration_seconds",
			Help:    "Duration of scoring requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		FraudProbability: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_probability",
			Help:    "Distribution of predicted fraud probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of tables rejected by validation",
		}),
		ModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "1 when a model is active, 0 otherwise",
		}),
		ModelTrainedAt: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_trained_timestamp_seconds",
			Help: "Unix timestamp of the active model's training time",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
