package metrics

import "time"

// Sink is the consumer-side interface the detector uses, so domain
// packages don't import prometheus directly and tests can pass a mock.
type Sink interface {
	TrainingCompleted(duration time.Duration)
	TrainingFailed()
	ScoringCompleted(records, fraud int, duration time.Duration)
	ProbabilityObserve(p float64)
	ValidationFailed()
	ModelActivated(trainedAt time.Time)
}

// Wrapper adapts Metrics to the Sink interface.
type Wrapper struct {
	m *Metrics
}

// NewWrapper creates a Sink backed by the given Metrics.
func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) TrainingCompleted(duration time.Duration) {
	w.m.TrainingsTotal.Inc()
	w.m.TrainingDuration.Observe(duration.Seconds())
}

func (w *Wrapper) TrainingFailed() {
	w.m.TrainingFailures.Inc()
	w.m.ErrorsTotal.Inc()
}

func (w *Wrapper) ScoringCompleted(records, fraud int, duration time.Duration) {
	w.m.ScoringRequests.Inc()
	w.m.RecordsScored.Add(float64(records))
	w.m.FraudFlagged.Add(float64(fraud))
	w.m.ScoringDuration.Observe(duration.Seconds())
}

func (w *Wrapper) ProbabilityObserve(p float64) {
	w.m.FraudProbability.Observe(p)
}

func (w *Wrapper) ValidationFailed() {
	w.m.ValidationFailures.Inc()
	w.m.ErrorsTotal.Inc()
}

// ModelActivated records the new model's training timestamp; the age is
// derived at query time so the metric never goes stale.
func (w *Wrapper) ModelActivated(trainedAt time.Time) {
	w.m.ModelLoaded.Set(1)
	w.m.ModelTrainedAt.Set(float64(trainedAt.Unix()))
}
