package detector

import (
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/features"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/ml"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

// Display thresholds for risk bucketing. These are business thresholds,
// deliberately distinct from the classifier's own 0.5-implied label: a
// record can carry is_fraud=1 from the model while its display status is
// "warning". Both signals are reported.
const (
	fraudThreshold   = 0.70
	warningThreshold = 0.50
)

// Status values for a scored transaction.
const (
	StatusFraud      = "fraud"
	StatusWarning    = "warning"
	StatusLegitimate = "legitimate"
)

// Risk levels for a scored transaction.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

const maxIndicators = 5

// TransactionResult is the per-record scoring output.
type TransactionResult struct {
	TransactionID    string   `json:"transaction_id"`
	Amount           float64  `json:"amount"`
	Merchant         string   `json:"merchant"`
	Location         string   `json:"location"`
	Timestamp        string   `json:"timestamp"`
	CardNumber       string   `json:"card_number"`
	IsFraud          int      `json:"is_fraud"`
	FraudProbability float64  `json:"fraud_probability"`
	RiskScore        float64  `json:"risk_score"`
	RiskLevel        string   `json:"risk_level"`
	Status           string   `json:"status"`
	Indicators       []string `json:"indicators"`
}

// Summary is the table-level aggregate of a scoring run. Warnings count
// as legitimate; only status "fraud" contributes to FraudCount.
type Summary struct {
	TotalTransactions       int     `json:"total_transactions"`
	FraudCount              int     `json:"fraud_count"`
	LegitimateCount         int     `json:"legitimate_count"`
	FraudRate               float64 `json:"fraud_rate"`
	AverageFraudProbability float64 `json:"average_fraud_probability"`
	MaxFraudProbability     float64 `json:"max_fraud_probability"`
	MinFraudProbability     float64 `json:"min_fraud_probability"`
}

// ScoringResult is the full scoring output.
type ScoringResult struct {
	Summary      Summary             `json:"summary"`
	Transactions []TransactionResult `json:"transactions"`
	ModelInfo    ml.ModelInfo        `json:"model_info"`
}

// TrainingResult is the full training output.
type TrainingResult struct {
	Metrics        ml.Metrics     `json:"metrics"`
	ModelInfo      ml.ModelInfo   `json:"model_info"`
	DataStatistics DataStatistics `json:"data_statistics"`
}

func shapeResult(t *table.Table, probs []float64, labels []int, info ml.ModelInfo) *ScoringResult {
	n := t.Len()
	transactions := make([]TransactionResult, n)

	var fraudCount, legitimateCount int
	var sum float64
	maxP, minP := math.Inf(-1), math.Inf(1)

	for i := 0; i < n; i++ {
		p := probs[i]
		sum += p
		if p > maxP {
			maxP = p
		}
		if p < minP {
			minP = p
		}

		status, risk := classify(p)
		if status == StatusFraud {
			fraudCount++
		} else {
			legitimateCount++
		}

		indicators := []string{}
		if p >= fraudThreshold {
			indicators = fraudIndicators(t, i, p)
		}

		transactions[i] = TransactionResult{
			TransactionID:    stringField(t, i, "transaction_id", "TXN_"+strconv.Itoa(i)),
			Amount:           amountField(t, i),
			Merchant:         stringField(t, i, "merchant", "Unknown"),
			Location:         stringField(t, i, "location", "Unknown"),
			Timestamp:        stringField(t, i, "timestamp", ""),
			CardNumber:       stringField(t, i, "card_number", "N/A"),
			IsFraud:          labels[i],
			FraudProbability: round2(p * 100),
			RiskScore:        round2(p * 100),
			RiskLevel:        risk,
			Status:           status,
			Indicators:       indicators,
		}
	}

	summary := Summary{
		TotalTransactions: n,
		FraudCount:        fraudCount,
		LegitimateCount:   legitimateCount,
	}
	if n > 0 {
		summary.FraudRate = round2(float64(fraudCount) / float64(n) * 100)
		summary.AverageFraudProbability = round2(sum / float64(n) * 100)
		summary.MaxFraudProbability = round2(maxP * 100)
		summary.MinFraudProbability = round2(minP * 100)
	}

	return &ScoringResult{Summary: summary, Transactions: transactions, ModelInfo: info}
}

// classify maps a fraud probability to its display status and risk
// bucket. Thresholds are boundary-inclusive: exactly 0.70 is fraud,
// exactly 0.50 is a warning.
func classify(p float64) (status, risk string) {
	switch {
	case p >= fraudThreshold:
		return StatusFraud, RiskHigh
	case p >= warningThreshold:
		return StatusWarning, RiskMedium
	default:
		return StatusLegitimate, RiskLow
	}
}

// fraudIndicators evaluates the indicator conditions in fixed priority
// order and caps the result at maxIndicators. The amount conditions are
// mutually exclusive.
func fraudIndicators(t *table.Table, row int, p float64) []string {
	indicators := []string{}

	amount := amountField(t, row)
	if amount > 5000 {
		indicators = append(indicators, "Unusually high transaction amount")
	} else if amount < 10 {
		indicators = append(indicators, "Suspiciously low transaction amount")
	}

	if location, ok := t.Value(row, "location"); ok && features.IsHighRiskLocation(location) {
		indicators = append(indicators, "Transaction from high-risk location")
	}

	if raw, ok := t.Value(row, "timestamp"); ok {
		if ts, parsed := table.ParseTimestamp(raw); parsed {
			if h := ts.Hour(); h >= 1 && h <= 5 {
				indicators = append(indicators, "Transaction during unusual hours (1 AM - 5 AM)")
			}
		}
	}

	if p > 0.90 {
		indicators = append(indicators, "Very high fraud probability score")
	}
	if p >= 0.80 {
		indicators = append(indicators,
			"Multiple fraud patterns detected",
			"Transaction flagged by ML model with high confidence")
	}

	if len(indicators) > maxIndicators {
		indicators = indicators[:maxIndicators]
	}
	return indicators
}

func stringField(t *table.Table, row int, column, fallback string) string {
	if v, ok := t.Value(row, column); ok {
		return v
	}
	return fallback
}

func amountField(t *table.Table, row int) float64 {
	v, ok := t.Value(row, "amount")
	if !ok {
		return 0
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
