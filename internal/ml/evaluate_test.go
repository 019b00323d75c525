package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.75, Accuracy([]int{1, 0, 1, 0}, []int{1, 0, 0, 0}))
	assert.Equal(t, 1.0, Accuracy([]int{1, 1}, []int{1, 1}))
	assert.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestPrecisionRecallF1(t *testing.T) {
	// tp=2 fp=1 fn=1
	yTrue := []int{1, 1, 1, 0, 0}
	yPred := []int{1, 1, 0, 1, 0}

	p, r, f1 := PrecisionRecallF1(yTrue, yPred)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)
	assert.InDelta(t, 2.0/3.0, r, 1e-12)
	assert.InDelta(t, 2.0/3.0, f1, 1e-12)
}

func TestPrecisionRecallF1NoPositives(t *testing.T) {
	p, r, f1 := PrecisionRecallF1([]int{0, 0, 0}, []int{0, 0, 0})
	assert.Zero(t, p)
	assert.Zero(t, r)
	assert.Zero(t, f1)
}

func TestROCAUCPerfectRanking(t *testing.T) {
	yTrue := []int{0, 0, 1, 1}
	scores := []float64{0.1, 0.2, 0.8, 0.9}
	assert.InDelta(t, 1.0, ROCAUC(yTrue, scores), 1e-12)
}

func TestROCAUCInvertedRanking(t *testing.T) {
	yTrue := []int{1, 1, 0, 0}
	scores := []float64{0.1, 0.2, 0.8, 0.9}
	assert.InDelta(t, 0.0, ROCAUC(yTrue, scores), 1e-12)
}

func TestROCAUCTiedScores(t *testing.T) {
	// All scores equal: the ranking carries no information, AUC=0.5.
	yTrue := []int{0, 1, 0, 1}
	scores := []float64{0.5, 0.5, 0.5, 0.5}
	assert.InDelta(t, 0.5, ROCAUC(yTrue, scores), 1e-12)
}

func TestROCAUCSingleClass(t *testing.T) {
	assert.Zero(t, ROCAUC([]int{1, 1, 1}, []float64{0.1, 0.5, 0.9}))
	assert.Zero(t, ROCAUC([]int{0, 0}, []float64{0.1, 0.9}))
}

func TestROCAUCKnownValue(t *testing.T) {
	// One misranked pair out of four: AUC = 3/4.
	yTrue := []int{0, 1, 0, 1}
	scores := []float64{0.2, 0.3, 0.6, 0.7}
	assert.InDelta(t, 0.75, ROCAUC(yTrue, scores), 1e-12)
}

func TestStratifiedSplitPreservesRatio(t *testing.T) {
	y := make([]int, 100)
	for i := 90; i < 100; i++ {
		y[i] = 1
	}

	train, test, err := StratifiedSplit(y, 0.2, 42)
	assert.NoError(t, err)
	assert.Len(t, train, 80)
	assert.Len(t, test, 20)

	countPos := func(idx []int) int {
		n := 0
		for _, i := range idx {
			if y[i] == 1 {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 8, countPos(train))
	assert.Equal(t, 2, countPos(test))
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	trainA, testA, err := StratifiedSplit(y, 0.2, 7)
	assert.NoError(t, err)
	trainB, testB, err := StratifiedSplit(y, 0.2, 7)
	assert.NoError(t, err)

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
}

func TestStratifiedSplitNoOverlap(t *testing.T) {
	y := []int{0, 1, 0, 1, 0, 1, 0, 0}
	train, test, err := StratifiedSplit(y, 0.25, 1)
	assert.NoError(t, err)

	seen := make(map[int]bool)
	for _, i := range train {
		seen[i] = true
	}
	for _, i := range test {
		assert.False(t, seen[i], "index %d in both partitions", i)
	}
	assert.Len(t, append(train, test...), len(y))
}

func TestStratifiedSplitTooFewSamples(t *testing.T) {
	_, _, err := StratifiedSplit([]int{0, 0, 0, 1}, 0.2, 42)
	assert.ErrorContains(t, err, "class 1 has 1 sample(s)")
}

func TestStratifiedSplitBadFraction(t *testing.T) {
	_, _, err := StratifiedSplit([]int{0, 1}, 0, 42)
	assert.Error(t, err)
	_, _, err = StratifiedSplit([]int{0, 1}, 1, 42)
	assert.Error(t, err)
}

func TestMetricsWithinBounds(t *testing.T) {
	X, y := syntheticFraudSet(400, 42)

	for _, modelType := range []string{TypeRandomForest, TypeLogisticRegression} {
		clf, err := New(modelType, Config{Trees: 20, MaxDepth: 6, Epochs: 200, Seed: 42})
		assert.NoError(t, err)

		m, trainN, testN, err := FitEvaluate(clf, X, y, 0.2, 42)
		assert.NoError(t, err, modelType)
		assert.Equal(t, len(y), trainN+testN)

		for name, v := range map[string]float64{
			"accuracy": m.Accuracy, "precision": m.Precision,
			"recall": m.Recall, "f1": m.F1Score, "roc_auc": m.ROCAUC,
		} {
			assert.GreaterOrEqual(t, v, 0.0, "%s %s", modelType, name)
			assert.LessOrEqual(t, v, 1.0, "%s %s", modelType, name)
			assert.False(t, math.IsNaN(v), "%s %s", modelType, name)
		}
		// The classes are clearly separable; any reasonable fit beats chance.
		assert.Greater(t, m.Accuracy, 0.6, modelType)
	}
}
