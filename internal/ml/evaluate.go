package ml

import "sort"

// Metrics are the five standard evaluation scores computed on the
// held-out split after training.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	ROCAUC    float64 `json:"roc_auc"`
}

// Accuracy is the fraction of correct predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// PrecisionRecallF1 computes the positive-class precision, recall and
// F1. Undefined ratios (no predicted or no actual positives) resolve to
// 0 rather than an error.
func PrecisionRecallF1(yTrue, yPred []int) (precision, recall, f1 float64) {
	var tp, fp, fn int
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1 && yTrue[i] == 0:
			fp++
		case yPred[i] == 0 && yTrue[i] == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// ROCAUC computes the area under the ROC curve via the rank statistic,
// with average ranks for tied scores. Returns 0 when the input contains
// only one class, which leaves the score undefined.
func ROCAUC(yTrue []int, scores []float64) float64 {
	n := len(yTrue)
	var nPos, nNeg int
	for _, label := range yTrue {
		if label == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		// 1-based average rank across the tie group
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var sumPosRanks float64
	for i, label := range yTrue {
		if label == 1 {
			sumPosRanks += ranks[i]
		}
	}

	u := sumPosRanks - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg))
}
