package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions row indices into train and test sets while
// preserving the class-label ratio in both partitions. The shuffle is
// seeded so identical input yields an identical partition. Each class
// must contribute at least one row to both partitions, which requires at
// least two samples per class.
func StratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		idx := byClass[c]
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf("class %d has %d sample(s); stratified split needs at least 2", c, len(idx))
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(testFraction * float64(len(idx))))
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// FitEvaluate is the train/score contract of the classifier adapter: it
// splits the input with a stratified partition, fits the classifier on
// the training rows, and computes the five standard metrics on the
// held-out rows. Returns the metrics plus the train/test sample counts.
func FitEvaluate(c Classifier, X [][]float64, y []int, testFraction float64, seed int64) (Metrics, int, int, error) {
	if testFraction <= 0 {
		testFraction = 0.2
	}
	trainIdx, testIdx, err := StratifiedSplit(y, testFraction, seed)
	if err != nil {
		return Metrics{}, 0, 0, err
	}

	Xtrain, ytrain := gather(X, y, trainIdx)
	Xtest, ytest := gather(X, y, testIdx)

	if err := c.Fit(Xtrain, ytrain); err != nil {
		return Metrics{}, 0, 0, err
	}

	pred := c.PredictLabel(Xtest)
	probs := c.PredictProba(Xtest)

	m := Metrics{
		Accuracy: Accuracy(ytest, pred),
		ROCAUC:   ROCAUC(ytest, probs),
	}
	m.Precision, m.Recall, m.F1Score = PrecisionRecallF1(ytest, pred)

	return m, len(trainIdx), len(testIdx), nil
}

func gather(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	Xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for k, i := range idx {
		Xs[k] = X[i]
		ys[k] = y[i]
	}
	return Xs, ys
}
