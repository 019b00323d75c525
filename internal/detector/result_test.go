package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/ml"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		p      float64
		status string
		risk   string
	}{
		{0.95, StatusFraud, RiskHigh},
		{0.70, StatusFraud, RiskHigh}, // boundary-inclusive
		{0.6999, StatusWarning, RiskMedium},
		{0.50, StatusWarning, RiskMedium}, // boundary-inclusive
		{0.4999, StatusLegitimate, RiskLow},
		{0.0, StatusLegitimate, RiskLow},
	}
	for _, tc := range cases {
		status, risk := classify(tc.p)
		assert.Equal(t, tc.status, status, "p=%v", tc.p)
		assert.Equal(t, tc.risk, risk, "p=%v", tc.p)
	}
}

func scoringTable(t *testing.T, rows string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(
		"transaction_id,amount,merchant,location,timestamp,card_number\n" + rows))
	require.NoError(t, err)
	return tbl
}

func TestFraudIndicatorsCapAndOrder(t *testing.T) {
	// Every condition fires at once: high amount, high-risk location,
	// late-night hour, p>0.90 and p>=0.80. Six candidate strings, capped
	// at five in priority order.
	tbl := scoringTable(t, `TXN1,9000.00,Casino,"Lagos, Nigeria",2024-01-15 03:00:00,****1234`+"\n")

	got := fraudIndicators(tbl, 0, 0.95)
	assert.Equal(t, []string{
		"Unusually high transaction amount",
		"Transaction from high-risk location",
		"Transaction during unusual hours (1 AM - 5 AM)",
		"Very high fraud probability score",
		"Multiple fraud patterns detected",
	}, got)
}

func TestFraudIndicatorsAmountConditionsExclusive(t *testing.T) {
	tbl := scoringTable(t, "TXN1,5.00,Amazon,NY,2024-01-15 14:00:00,****1234\n")

	got := fraudIndicators(tbl, 0, 0.72)
	assert.Equal(t, []string{"Suspiciously low transaction amount"}, got)
}

func TestFraudIndicatorsHighConfidenceOnly(t *testing.T) {
	tbl := scoringTable(t, "TXN1,100.00,Amazon,NY,2024-01-15 14:00:00,****1234\n")

	got := fraudIndicators(tbl, 0, 0.85)
	assert.Equal(t, []string{
		"Multiple fraud patterns detected",
		"Transaction flagged by ML model with high confidence",
	}, got)
}

func TestShapeResultAllLegitimate(t *testing.T) {
	tbl := scoringTable(t,
		"TXN1,10.00,Amazon,NY,2024-01-15 14:00:00,****1111\n"+
			"TXN2,20.00,Target,TX,2024-01-15 15:00:00,****2222\n"+
			"TXN3,30.00,Costco,CA,2024-01-15 16:00:00,****3333\n")

	result := shapeResult(tbl, []float64{0.10, 0.20, 0.30}, []int{0, 0, 0}, ml.ModelInfo{Type: ml.TypeRandomForest})

	assert.Equal(t, 3, result.Summary.TotalTransactions)
	assert.Equal(t, 0, result.Summary.FraudCount)
	assert.Equal(t, 3, result.Summary.LegitimateCount)
	assert.Equal(t, 0.0, result.Summary.FraudRate)
	assert.Equal(t, 20.0, result.Summary.AverageFraudProbability)
	assert.Equal(t, 30.0, result.Summary.MaxFraudProbability)
	assert.Equal(t, 10.0, result.Summary.MinFraudProbability)

	for _, tx := range result.Transactions {
		assert.Equal(t, StatusLegitimate, tx.Status)
		assert.Equal(t, RiskLow, tx.RiskLevel)
		assert.NotNil(t, tx.Indicators, "indicators must serialize as [], not null")
		assert.Empty(t, tx.Indicators)
	}
}

func TestShapeResultWarningCountsAsLegitimate(t *testing.T) {
	tbl := scoringTable(t,
		"TXN1,10.00,Amazon,NY,2024-01-15 14:00:00,****1111\n"+
			"TXN2,20.00,Target,TX,2024-01-15 15:00:00,****2222\n")

	result := shapeResult(tbl, []float64{0.60, 0.80}, []int{1, 1}, ml.ModelInfo{})

	require.Equal(t, StatusWarning, result.Transactions[0].Status)
	require.Equal(t, StatusFraud, result.Transactions[1].Status)
	assert.Equal(t, 1, result.Summary.FraudCount)
	assert.Equal(t, 1, result.Summary.LegitimateCount)
	assert.Equal(t, 50.0, result.Summary.FraudRate)
}

func TestShapeResultMissingFieldsDefaults(t *testing.T) {
	tbl, err := table.ReadCSV(strings.NewReader("amount\n\"\"\n"))
	require.NoError(t, err)

	result := shapeResult(tbl, []float64{0.10}, []int{0}, ml.ModelInfo{})
	tx := result.Transactions[0]

	assert.Equal(t, "TXN_0", tx.TransactionID)
	assert.Equal(t, 0.0, tx.Amount)
	assert.Equal(t, "Unknown", tx.Merchant)
	assert.Equal(t, "Unknown", tx.Location)
	assert.Equal(t, "", tx.Timestamp)
	assert.Equal(t, "N/A", tx.CardNumber)
}

func TestShapeResultRounding(t *testing.T) {
	tbl := scoringTable(t, "TXN1,10.00,Amazon,NY,2024-01-15 14:00:00,****1111\n")

	result := shapeResult(tbl, []float64{0.12345}, []int{0}, ml.ModelInfo{})
	assert.Equal(t, 12.35, result.Transactions[0].FraudProbability)
	assert.Equal(t, 12.35, result.Transactions[0].RiskScore)
}
