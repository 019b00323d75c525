package detector

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

// AmountStats summarizes the amount column of a training table.
type AmountStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

// FraudDistribution summarizes the label balance of a training table.
type FraudDistribution struct {
	FraudCount      int     `json:"fraud_count"`
	LegitimateCount int     `json:"legitimate_count"`
	FraudRate       float64 `json:"fraud_rate"`
}

// DataStatistics is the statistical summary attached to a training
// result.
type DataStatistics struct {
	TotalRows         int                `json:"total_rows"`
	TotalColumns      int                `json:"total_columns"`
	Columns           []string           `json:"columns"`
	AmountStats       *AmountStats       `json:"amount_stats,omitempty"`
	FraudDistribution *FraudDistribution `json:"fraud_distribution,omitempty"`
}

func dataStatistics(t *table.Table) DataStatistics {
	stats := DataStatistics{
		TotalRows:    t.Len(),
		TotalColumns: len(t.Columns()),
		Columns:      t.Columns(),
	}

	if t.HasColumn("amount") {
		var amounts []float64
		for _, v := range t.Column("amount") {
			if x, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				amounts = append(amounts, x)
			}
		}
		if len(amounts) > 0 {
			stats.AmountStats = summarizeAmounts(amounts)
		}
	}

	if t.HasColumn(table.LabelColumn) {
		fraud := 0
		for _, v := range t.Column(table.LabelColumn) {
			if x, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && x >= 0.5 {
				fraud++
			}
		}
		stats.FraudDistribution = &FraudDistribution{
			FraudCount:      fraud,
			LegitimateCount: t.Len() - fraud,
			FraudRate:       float64(fraud) / float64(t.Len()) * 100,
		}
	}

	return stats
}

func summarizeAmounts(amounts []float64) *AmountStats {
	n := len(amounts)
	sorted := make([]float64, n)
	copy(sorted, amounts)
	sort.Float64s(sorted)

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(n)

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	// Sample standard deviation, matching pandas' default ddof=1.
	var std float64
	if n > 1 {
		var ss float64
		for _, a := range amounts {
			diff := a - mean
			ss += diff * diff
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return &AmountStats{
		Mean:   mean,
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Std:    std,
	}
}
