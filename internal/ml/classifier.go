// Package ml provides the trainable binary classifiers used for fraud
// scoring, together with the stratified train/test split and the metric
// computations performed on the held-out split.
//
// The classifier set is closed: random_forest and logistic_regression.
// Adding a classifier means adding a variant here; the coordinators stay
// agnostic to which variant is active.
package ml

import (
	"encoding/json"
	"fmt"
	"time"
)

// Supported classifier types.
const (
	TypeRandomForest       = "random_forest"
	TypeLogisticRegression = "logistic_regression"
)

// Classifier is the capability set every variant implements. X rows are
// feature vectors in the fixed engineered order; y labels are 0/1 with 1
// meaning fraud. PredictProba returns the positive-class probability in
// [0,1] for each row.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	PredictLabel(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	Type() string
}

// Config carries the training hyperparameters. Zero values fall back to
// the defaults below.
type Config struct {
	Trees        int     // random forest ensemble size
	MaxDepth     int     // random forest tree depth cap
	Epochs       int     // logistic regression gradient descent passes
	LearningRate float64 // logistic regression step size
	Seed         int64   // rng seed for reproducible fits and splits
}

// Defaults mirror the conventional fraud-model settings: a 100-tree
// depth-10 forest and a 1000-epoch logistic fit, seed 42.
func (c Config) withDefaults() Config {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 10
	}
	if c.Epochs <= 0 {
		c.Epochs = 1000
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// New creates an untrained classifier of the given type.
func New(modelType string, cfg Config) (Classifier, error) {
	cfg = cfg.withDefaults()
	switch modelType {
	case TypeRandomForest:
		return NewForest(cfg), nil
	case TypeLogisticRegression:
		return NewLogistic(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
}

// Marshal serializes a trained classifier for persistence.
func Marshal(c Classifier) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal %s classifier: %w", c.Type(), err)
	}
	return data, nil
}

// Unmarshal restores a trained classifier from its persisted form.
func Unmarshal(modelType string, data []byte) (Classifier, error) {
	switch modelType {
	case TypeRandomForest:
		var f Forest
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("unmarshal random forest: %w", err)
		}
		return &f, nil
	case TypeLogisticRegression:
		var l Logistic
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("unmarshal logistic regression: %w", err)
		}
		return &l, nil
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
}

// ModelInfo is the metadata persisted alongside a trained classifier.
// FeatureNames records the training-time feature schema; scoring against
// a different schema must fail fast rather than misalign columns.
type ModelInfo struct {
	Type            string    `json:"type"`
	TrainedAt       time.Time `json:"trained_at"`
	Accuracy        float64   `json:"accuracy"`
	Precision       float64   `json:"precision"`
	Recall          float64   `json:"recall"`
	F1Score         float64   `json:"f1_score"`
	ROCAUC          float64   `json:"roc_auc"`
	TrainingSamples int       `json:"training_samples"`
	TestSamples     int       `json:"test_samples"`
	FeatureNames    []string  `json:"feature_names"`
}
