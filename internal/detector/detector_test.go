package detector

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/ml"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/storage"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

// trainingTable builds a separable labeled table: fraud rows are large
// late-night payments from high-risk locations, legitimate rows are
// small daytime purchases.
func trainingTable(t *testing.T, n int) *table.Table {
	t.Helper()
	var b strings.Builder
	b.WriteString("transaction_id,amount,merchant,location,timestamp,card_number,is_fraud\n")
	for i := 0; i < n; i++ {
		if i%5 == 0 {
			fmt.Fprintf(&b, "TXN%05d,%d.00,Online Casino,\"Lagos, Nigeria\",2024-01-%02d 03:00:00,****%04d,1\n",
				i+1, 6000+i*13, i%27+1, 1000+i)
		} else {
			fmt.Fprintf(&b, "TXN%05d,%d.50,Amazon,\"New York, NY\",2024-01-%02d 14:00:00,****%04d,0\n",
				i+1, 20+i, i%27+1, 1000+i)
		}
	}
	tbl, err := table.ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	return tbl
}

func testOptions() Options {
	return Options{
		ModelType:    ml.TypeRandomForest,
		TestFraction: 0.2,
		ML:           ml.Config{Trees: 10, MaxDepth: 5, Seed: 42},
	}
}

func TestTrainScoreRoundTrip(t *testing.T) {
	d := New(nil, nil, testOptions())

	tbl := trainingTable(t, 50)
	result, err := d.Train(tbl)
	require.NoError(t, err)

	assert.Equal(t, ml.TypeRandomForest, result.ModelInfo.Type)
	assert.Equal(t, 50, result.ModelInfo.TrainingSamples+result.ModelInfo.TestSamples)
	assert.Equal(t, 14, len(result.ModelInfo.FeatureNames))
	assert.True(t, d.IsModelLoaded())

	scored, err := d.Score(tbl)
	require.NoError(t, err)
	assert.Len(t, scored.Transactions, 50)
	assert.Equal(t, 50, scored.Summary.TotalTransactions)
	assert.Equal(t, scored.Summary.TotalTransactions,
		scored.Summary.FraudCount+scored.Summary.LegitimateCount)
	assert.Equal(t, int64(50), d.PredictionCount())

	// The classes are cleanly separable, so the flagged rows should be
	// the labeled fraud rows.
	assert.Greater(t, scored.Summary.FraudCount, 0)
	for _, tx := range scored.Transactions {
		if tx.Status == StatusFraud {
			assert.Equal(t, RiskHigh, tx.RiskLevel)
			assert.NotEmpty(t, tx.Indicators)
		}
	}
}

func TestTrainRejectsInvalidTable(t *testing.T) {
	d := New(nil, nil, testOptions())

	tbl, err := table.ReadCSV(strings.NewReader(""))
	require.NoError(t, err)

	_, err = d.Train(tbl)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"CSV file is empty"}, vErr.Violations)
	assert.False(t, d.IsModelLoaded())
}

func TestTrainRequiresLabelColumn(t *testing.T) {
	d := New(nil, nil, testOptions())

	csv := `transaction_id,amount,merchant,location,timestamp,card_number
TXN1,10.00,Amazon,NY,2024-01-15 14:00:00,****1234
`
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	_, err = d.Train(tbl)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Violations[0], "is_fraud")
}

func TestTrainSingletonClassFails(t *testing.T) {
	d := New(nil, nil, testOptions())

	// Nine legitimate rows and a single fraud row: the stratified split
	// cannot put the fraud class on both sides.
	var b strings.Builder
	b.WriteString("transaction_id,amount,merchant,location,timestamp,card_number,is_fraud\n")
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, "TXN%d,10.00,Amazon,NY,2024-01-15 14:00:00,****1234,0\n", i)
	}
	b.WriteString("TXN9,9000.00,Casino,Offshore,2024-01-15 03:00:00,****9999,1\n")
	tbl, err := table.ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)

	_, err = d.Train(tbl)
	var tErr *TrainingError
	assert.ErrorAs(t, err, &tErr)
	assert.ErrorContains(t, err, "stratified split needs at least 2")
	assert.False(t, d.IsModelLoaded(), "failed fit must not activate a model")
}

func TestScoreWithoutModel(t *testing.T) {
	d := New(nil, nil, testOptions())
	_, err := d.Score(trainingTable(t, 10))
	assert.ErrorIs(t, err, ErrNoModelLoaded)
}

func TestScoreSchemaMismatch(t *testing.T) {
	d := New(nil, nil, testOptions())
	_, err := d.Train(trainingTable(t, 50))
	require.NoError(t, err)

	// Without a timestamp column the engineered schema loses the time
	// features, which must fail fast instead of misaligning columns.
	csv := `transaction_id,amount,merchant,location,card_number
TXN1,10.00,Amazon,NY,****1234
`
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	_, err = d.Score(tbl)
	var sErr *SchemaMismatchError
	assert.ErrorAs(t, err, &sErr)
}

func TestTrainPersistsAndReloads(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	d := New(store, nil, testOptions())
	tbl := trainingTable(t, 50)
	trained, err := d.Train(tbl)
	require.NoError(t, err)

	// A fresh detector restores the persisted model and scores with the
	// same vocabulary and schema.
	d2 := New(store, nil, testOptions())
	require.NoError(t, d2.LoadModel())
	require.True(t, d2.IsModelLoaded())

	info, ok := d2.ModelInfo()
	require.True(t, ok)
	assert.Equal(t, trained.ModelInfo.FeatureNames, info.FeatureNames)

	a, err := d.Score(tbl)
	require.NoError(t, err)
	b, err := d2.Score(tbl)
	require.NoError(t, err)
	assert.Equal(t, a.Summary, b.Summary)
}

func TestLoadModelAbsentIsNotError(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	d := New(store, nil, testOptions())
	assert.NoError(t, d.LoadModel())
	assert.False(t, d.IsModelLoaded())
}

func TestStatistics(t *testing.T) {
	d := New(nil, nil, testOptions())

	csv := `transaction_id,amount,merchant,location,timestamp,card_number,is_fraud
TXN1,10.00,Amazon,NY,2024-01-15 14:00:00,****1234,0
TXN2,20.00,Target,TX,2024-01-15 15:00:00,****5678,0
TXN3,30.00,Casino,Offshore,2024-01-15 03:00:00,****9999,1
TXN4,40.00,Amazon,NY,2024-01-15 16:00:00,****1234,1
`
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	stats, err := d.Statistics(tbl)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 7, stats.TotalColumns)
	require.NotNil(t, stats.AmountStats)
	assert.Equal(t, 25.0, stats.AmountStats.Mean)
	assert.Equal(t, 25.0, stats.AmountStats.Median)
	assert.Equal(t, 10.0, stats.AmountStats.Min)
	assert.Equal(t, 40.0, stats.AmountStats.Max)
	assert.InDelta(t, 12.909944, stats.AmountStats.Std, 1e-6)

	require.NotNil(t, stats.FraudDistribution)
	assert.Equal(t, 2, stats.FraudDistribution.FraudCount)
	assert.Equal(t, 2, stats.FraudDistribution.LegitimateCount)
	assert.Equal(t, 50.0, stats.FraudDistribution.FraudRate)
}

func TestModelInfoWithoutModel(t *testing.T) {
	d := New(nil, nil, testOptions())
	_, ok := d.ModelInfo()
	assert.False(t, ok)
}
