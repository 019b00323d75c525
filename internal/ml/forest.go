package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Forest is a random forest of CART trees grown on bootstrap samples
// with sqrt(d) feature subsampling and Gini impurity splits. The fit is
// fully deterministic for a given seed.
type Forest struct {
	NumTrees int         `json:"num_trees"`
	MaxDepth int         `json:"max_depth"`
	Seed     int64       `json:"seed"`
	Features int         `json:"features"`
	Trees    []*treeNode `json:"trees"`
}

type treeNode struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *treeNode `json:"l,omitempty"`
	Right     *treeNode `json:"r,omitempty"`
	Leaf      bool      `json:"leaf,omitempty"`
	Prob      float64   `json:"p"`
}

// NewForest creates an untrained forest with the given hyperparameters.
func NewForest(cfg Config) *Forest {
	cfg = cfg.withDefaults()
	return &Forest{NumTrees: cfg.Trees, MaxDepth: cfg.MaxDepth, Seed: cfg.Seed}
}

// Type returns the classifier type tag.
func (f *Forest) Type() string { return TypeRandomForest }

// Fit grows the ensemble on the full input. The caller is responsible
// for holding out a test split beforehand (see FitEvaluate).
func (f *Forest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training input: %d rows, %d labels", len(X), len(y))
	}
	f.Features = len(X[0])
	f.Trees = make([]*treeNode, f.NumTrees)

	rng := rand.New(rand.NewSource(f.Seed))
	mtry := int(math.Sqrt(float64(f.Features)))
	if mtry < 1 {
		mtry = 1
	}

	for t := 0; t < f.NumTrees; t++ {
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = rng.Intn(len(X))
		}
		f.Trees[t] = growTree(X, y, sample, mtry, f.MaxDepth, rng)
	}
	return nil
}

// PredictProba returns the mean positive-class leaf probability across
// the ensemble for each row.
func (f *Forest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.Trees) == 0 {
		return out
	}
	for i, row := range X {
		var sum float64
		for _, tree := range f.Trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out
}

// PredictLabel thresholds the ensemble probability at 0.5.
func (f *Forest) PredictLabel(X [][]float64) []int {
	probs := f.PredictProba(X)
	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			labels[i] = 1
		}
	}
	return labels
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Prob
}

func growTree(X [][]float64, y []int, idx []int, mtry, depthLeft int, rng *rand.Rand) *treeNode {
	pos := 0
	for _, i := range idx {
		pos += y[i]
	}
	prob := float64(pos) / float64(len(idx))

	if depthLeft == 0 || len(idx) < 2 || pos == 0 || pos == len(idx) {
		return &treeNode{Leaf: true, Prob: prob}
	}

	feature, threshold, ok := bestSplit(X, y, idx, mtry, rng)
	if !ok {
		return &treeNode{Leaf: true, Prob: prob}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Prob: prob}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(X, y, left, mtry, depthLeft-1, rng),
		Right:     growTree(X, y, right, mtry, depthLeft-1, rng),
		Prob:      prob,
	}
}

// bestSplit scans a random subset of mtry features for the threshold
// with the lowest weighted Gini impurity.
func bestSplit(X [][]float64, y []int, idx []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	d := len(X[idx[0]])
	candidates := rng.Perm(d)[:mtry]

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	order := make([]int, len(idx))

	for _, feat := range candidates {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][feat] < X[order[b]][feat]
		})

		total := len(idx)
		totalPos := 0
		for _, i := range idx {
			totalPos += y[i]
		}

		leftN, leftPos := 0, 0
		for j := 0; j < total-1; j++ {
			leftN++
			leftPos += y[order[j]]

			v, next := X[order[j]][feat], X[order[j+1]][feat]
			if v == next {
				continue // cannot split between equal values
			}

			rightN := total - leftN
			rightPos := totalPos - leftPos
			g := weightedGini(leftN, leftPos, rightN, rightPos)
			if g < bestGini {
				bestGini = g
				bestFeature = feat
				bestThreshold = (v + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(leftN, leftPos, rightN, rightPos int) float64 {
	gini := func(n, pos int) float64 {
		if n == 0 {
			return 0
		}
		p := float64(pos) / float64(n)
		return 2 * p * (1 - p)
	}
	total := float64(leftN + rightN)
	return float64(leftN)/total*gini(leftN, leftPos) +
		float64(rightN)/total*gini(rightN, rightPos)
}
