package ml

import (
	"fmt"
	"math"
)

// Logistic is an L2-free logistic regression fit by full-batch gradient
// descent on standardized features. Weights start at zero, so the fit is
// deterministic without any rng.
type Logistic struct {
	Epochs       int       `json:"epochs"`
	LearningRate float64   `json:"learning_rate"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
}

// NewLogistic creates an untrained logistic regression.
func NewLogistic(cfg Config) *Logistic {
	cfg = cfg.withDefaults()
	return &Logistic{Epochs: cfg.Epochs, LearningRate: cfg.LearningRate}
}

// Type returns the classifier type tag.
func (l *Logistic) Type() string { return TypeLogisticRegression }

// Fit standardizes the input and runs gradient descent for the
// configured number of epochs.
func (l *Logistic) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training input: %d rows, %d labels", len(X), len(y))
	}
	d := len(X[0])
	l.Means, l.Stds = columnStats(X)
	l.Weights = make([]float64, d)
	l.Bias = 0

	n := float64(len(X))
	Z := l.standardize(X)

	for epoch := 0; epoch < l.Epochs; epoch++ {
		gradW := make([]float64, d)
		gradB := 0.0
		for i, row := range Z {
			p := sigmoid(dot(l.Weights, row) + l.Bias)
			err := p - float64(y[i])
			for j, x := range row {
				gradW[j] += err * x
			}
			gradB += err
		}
		for j := range l.Weights {
			l.Weights[j] -= l.LearningRate * gradW[j] / n
		}
		l.Bias -= l.LearningRate * gradB / n
	}
	return nil
}

// PredictProba returns the positive-class probability per row.
func (l *Logistic) PredictProba(X [][]float64) []float64 {
	Z := l.standardize(X)
	out := make([]float64, len(Z))
	for i, row := range Z {
		out[i] = sigmoid(dot(l.Weights, row) + l.Bias)
	}
	return out
}

// PredictLabel thresholds the probability at 0.5.
func (l *Logistic) PredictLabel(X [][]float64) []int {
	probs := l.PredictProba(X)
	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			labels[i] = 1
		}
	}
	return labels
}

func (l *Logistic) standardize(X [][]float64) [][]float64 {
	Z := make([][]float64, len(X))
	for i, row := range X {
		z := make([]float64, len(row))
		for j, x := range row {
			if j < len(l.Stds) && l.Stds[j] > 0 {
				z[j] = (x - l.Means[j]) / l.Stds[j]
			}
		}
		Z[i] = z
	}
	return Z
}

func columnStats(X [][]float64) (means, stds []float64) {
	d := len(X[0])
	n := float64(len(X))
	means = make([]float64, d)
	stds = make([]float64, d)
	for _, row := range X {
		for j, x := range row {
			means[j] += x
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range X {
		for j, x := range row {
			diff := x - means[j]
			stds[j] += diff * diff
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
	}
	return means, stds
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
