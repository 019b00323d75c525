// Package detector orchestrates the fraud detection workflows: it wires
// table validation, feature engineering, and the classifier into the
// train and score operations and shapes their structured results.
package detector

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/features"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/metrics"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/ml"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/storage"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

// Options configures a Detector.
type Options struct {
	ModelType    string  // classifier variant to train
	TestFraction float64 // held-out fraction for the stratified split
	ML           ml.Config
}

// activeModel bundles everything a scoring call needs. The struct is
// swapped as one unit so concurrent scorers see either the old model
// fully or the new model fully, never a partial object.
type activeModel struct {
	clf      ml.Classifier
	encoders *features.EncoderSet
	info     ml.ModelInfo
}

// Detector owns the single active model and exposes the training and
// scoring coordinators over it.
type Detector struct {
	store   *storage.Store
	sink    metrics.Sink
	opts    Options
	active  atomic.Pointer[activeModel]
	scored  atomic.Int64 // records scored since process start
}

// New creates a Detector. The store may be nil, in which case models are
// kept in memory only; sink may be nil to disable metrics.
func New(store *storage.Store, sink metrics.Sink, opts Options) *Detector {
	if opts.ModelType == "" {
		opts.ModelType = ml.TypeRandomForest
	}
	if opts.TestFraction <= 0 {
		opts.TestFraction = 0.2
	}
	return &Detector{store: store, sink: sink, opts: opts}
}

// LoadModel restores the persisted model, if any. An absent artifact is
// not an error; it leaves the detector in the no-model-loaded state. A
// corrupt artifact does the same, reported as a PersistenceError.
func (d *Detector) LoadModel() error {
	if d.store == nil {
		return nil
	}
	artifact, err := d.store.LoadModel()
	if errors.Is(err, storage.ErrNoModel) {
		log.Info().Msg("no persisted model found")
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}

	clf, err := ml.Unmarshal(artifact.Type, artifact.Classifier)
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}

	d.activate(&activeModel{clf: clf, encoders: artifact.Encoders, info: artifact.Info})
	log.Info().
		Str("type", artifact.Info.Type).
		Time("trained_at", artifact.Info.TrainedAt).
		Msg("persisted model loaded")
	return nil
}

// Train runs the full training sequence: validate, engineer, split, fit,
// evaluate, persist. On success the fitted model replaces the active one
// atomically. A fit failure aborts without touching the active or
// persisted model; a persist failure keeps the new model active in
// memory and reports a PersistenceError alongside the result.
func (d *Detector) Train(t *table.Table) (*TrainingResult, error) {
	start := time.Now()

	if vr := table.Validate(t); !vr.Valid {
		d.validationFailed()
		return nil, &ValidationError{Violations: vr.Errors}
	}
	if !t.HasColumn(table.LabelColumn) {
		d.validationFailed()
		return nil, &ValidationError{Violations: []string{
			"Training data must contain 'is_fraud' column with labels (0 or 1)",
		}}
	}

	encoders := features.NewEncoderSet()
	frame := features.Transform(t, encoders, true)
	X, cols := frame.Matrix(features.Columns())
	if len(cols) == 0 {
		d.trainingFailed()
		return nil, &TrainingError{Err: errors.New("no feature columns available")}
	}
	y := features.Labels(t)

	clf, err := ml.New(d.opts.ModelType, d.opts.ML)
	if err != nil {
		d.trainingFailed()
		return nil, &TrainingError{Err: err}
	}

	m, trainN, testN, err := ml.FitEvaluate(clf, X, y, d.opts.TestFraction, d.opts.ML.Seed)
	if err != nil {
		d.trainingFailed()
		return nil, &TrainingError{Err: err}
	}

	info := ml.ModelInfo{
		Type:            clf.Type(),
		TrainedAt:       time.Now().UTC(),
		Accuracy:        m.Accuracy,
		Precision:       m.Precision,
		Recall:          m.Recall,
		F1Score:         m.F1Score,
		ROCAUC:          m.ROCAUC,
		TrainingSamples: trainN,
		TestSamples:     testN,
		FeatureNames:    cols,
	}

	d.activate(&activeModel{clf: clf, encoders: encoders, info: info})

	result := &TrainingResult{
		Metrics:        m,
		ModelInfo:      info,
		DataStatistics: dataStatistics(t),
	}

	if d.store != nil {
		payload, err := ml.Marshal(clf)
		if err == nil {
			err = d.store.SaveModel(storage.ModelArtifact{
				Type:       clf.Type(),
				Classifier: payload,
				Encoders:   encoders,
				Info:       info,
			})
		}
		if err != nil {
			log.Error().Err(err).Msg("model persist failed, model active in memory only")
			return result, &PersistenceError{Op: "save", Err: err}
		}
	}

	if d.sink != nil {
		d.sink.TrainingCompleted(time.Since(start))
	}
	log.Info().
		Str("type", info.Type).
		Float64("accuracy", m.Accuracy).
		Int("training_samples", trainN).
		Int("test_samples", testN).
		Dur("elapsed", time.Since(start)).
		Msg("model trained")
	return result, nil
}

// Score runs the scoring sequence against the active model: validate,
// engineer, predict, interpret. Fails with ErrNoModelLoaded when no
// classifier is active and with SchemaMismatchError when the engineered
// columns disagree with the model's training schema.
func (d *Detector) Score(t *table.Table) (*ScoringResult, error) {
	am := d.active.Load()
	if am == nil {
		return nil, ErrNoModelLoaded
	}

	start := time.Now()
	if vr := table.Validate(t); !vr.Valid {
		d.validationFailed()
		return nil, &ValidationError{Violations: vr.Errors}
	}

	frame := features.Transform(t, am.encoders, false)
	// One extraction serves both the schema check and prediction: when
	// cols matches the training schema, X is already in that order.
	X, cols := frame.Matrix(features.Columns())
	if !equalColumns(cols, am.info.FeatureNames) {
		return nil, &SchemaMismatchError{Expected: am.info.FeatureNames, Got: cols}
	}

	probs := am.clf.PredictProba(X)
	labels := am.clf.PredictLabel(X)

	result := shapeResult(t, probs, labels, am.info)

	d.scored.Add(int64(t.Len()))
	if d.sink != nil {
		for _, p := range probs {
			d.sink.ProbabilityObserve(p)
		}
		d.sink.ScoringCompleted(t.Len(), result.Summary.FraudCount, time.Since(start))
	}
	log.Info().
		Int("records", t.Len()).
		Int("fraud_count", result.Summary.FraudCount).
		Dur("elapsed", time.Since(start)).
		Msg("scoring completed")
	return result, nil
}

// Statistics computes the statistical summary of a table without
// touching the model. The table must pass structural validation.
func (d *Detector) Statistics(t *table.Table) (*DataStatistics, error) {
	if vr := table.Validate(t); !vr.Valid {
		d.validationFailed()
		return nil, &ValidationError{Violations: vr.Errors}
	}
	stats := dataStatistics(t)
	return &stats, nil
}

// IsModelLoaded reports whether a classifier is currently active.
func (d *Detector) IsModelLoaded() bool {
	return d.active.Load() != nil
}

// ModelInfo returns the active model's metadata. The second return is
// false when no model is loaded.
func (d *Detector) ModelInfo() (ml.ModelInfo, bool) {
	am := d.active.Load()
	if am == nil {
		return ml.ModelInfo{}, false
	}
	return am.info, true
}

// PredictionCount returns the number of records scored since start.
func (d *Detector) PredictionCount() int64 {
	return d.scored.Load()
}

func (d *Detector) activate(am *activeModel) {
	d.active.Store(am)
	if d.sink != nil {
		d.sink.ModelActivated(am.info.TrainedAt)
	}
}

func (d *Detector) validationFailed() {
	if d.sink != nil {
		d.sink.ValidationFailed()
	}
}

func (d *Detector) trainingFailed() {
	if d.sink != nil {
		d.sink.TrainingFailed()
	}
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
