// Command gensample writes synthetic transaction CSVs for training and
// testing the detection pipeline.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

var legitimateMerchants = []string{
	"Amazon", "Walmart", "Target", "Best Buy", "Costco",
	"Starbucks", "McDonald's", "Shell Gas", "Chevron",
	"Apple Store", "Home Depot", "CVS Pharmacy",
}

var suspiciousMerchants = []string{
	"Unknown Merchant", "Cash Advance", "Foreign Exchange",
	"Online Casino", "Crypto Exchange",
}

var legitimateLocations = []string{
	"New York, NY", "Los Angeles, CA", "Chicago, IL",
	"Houston, TX", "Phoenix, AZ", "Philadelphia, PA",
	"San Antonio, TX", "San Diego, CA", "Dallas, TX",
	"San Jose, CA", "Austin, TX", "Jacksonville, FL",
}

var highRiskLocations = []string{
	"Lagos, Nigeria", "Moscow, Russia", "Kiev, Ukraine",
	"Unknown Location", "Offshore",
}

// Business-hours weighting for legitimate transaction times.
var hourWeights = []int{1, 1, 1, 1, 1, 1, 3, 5, 8, 10, 10, 10, 10, 10, 8, 8, 8, 8, 5, 3, 3, 2, 2, 1}

func main() {
	var (
		samples   = flag.Int("n", 1000, "number of transactions")
		fraudRate = flag.Float64("fraud-rate", 0.05, "fraction of fraudulent transactions")
		seed      = flag.Int64("seed", 42, "random seed")
		labeled   = flag.Bool("labeled", true, "include the is_fraud label column")
		output    = flag.String("o", "training_data.csv", "output CSV path")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	rows := generate(rng, *samples, *fraudRate)

	if err := writeCSV(*output, rows, *labeled); err != nil {
		log.Fatal().Err(err).Msg("sample generation failed")
	}

	fraud := int(float64(*samples) * *fraudRate)
	fmt.Printf("generated %d transactions (%d fraudulent) -> %s\n", *samples, fraud, *output)
}

type row struct {
	transactionID string
	amount        float64
	merchant      string
	location      string
	timestamp     time.Time
	cardNumber    string
	isFraud       int
}

func generate(rng *rand.Rand, samples int, fraudRate float64) []row {
	numFraud := int(float64(samples) * fraudRate)
	numLegit := samples - numFraud
	now := time.Now()

	rows := make([]row, 0, samples)
	for i := 0; i < numLegit; i++ {
		rows = append(rows, legitimateRow(rng, i+1, now))
	}
	for i := 0; i < numFraud; i++ {
		rows = append(rows, fraudulentRow(rng, numLegit+i+1, now))
	}

	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

func legitimateRow(rng *rand.Rand, id int, now time.Time) row {
	// Log-normal spending clamped to a plausible card range.
	amount := math.Exp(4 + 1.5*rng.NormFloat64())
	amount = math.Round(math.Max(5, math.Min(amount, 2000))*100) / 100

	return row{
		transactionID: fmt.Sprintf("TXN%05d", id),
		amount:        amount,
		merchant:      pick(rng, legitimateMerchants),
		location:      pick(rng, legitimateLocations),
		timestamp:     randomTime(rng, now, weightedHour(rng)),
		cardNumber:    fmt.Sprintf("****%d", 1000+rng.Intn(9000)),
		isFraud:       0,
	}
}

func fraudulentRow(rng *rand.Rand, id int, now time.Time) row {
	r := row{
		transactionID: fmt.Sprintf("TXN%05d", id),
		cardNumber:    fmt.Sprintf("****%d", 1000+rng.Intn(9000)),
		isFraud:       1,
	}

	switch rng.Intn(4) {
	case 0: // unusually high amount
		r.amount = uniform(rng, 3000, 10000)
		r.merchant = pick(rng, append(append([]string{}, legitimateMerchants...), suspiciousMerchants...))
		r.location = pick(rng, legitimateLocations)
		r.timestamp = randomTime(rng, now, rng.Intn(24))
	case 1: // suspicious merchant
		r.amount = uniform(rng, 500, 5000)
		r.merchant = pick(rng, suspiciousMerchants)
		r.location = pick(rng, append(append([]string{}, legitimateLocations...), highRiskLocations...))
		r.timestamp = randomTime(rng, now, rng.Intn(24))
	case 2: // late night
		r.amount = uniform(rng, 200, 3000)
		r.merchant = pick(rng, legitimateMerchants)
		r.location = pick(rng, legitimateLocations)
		r.timestamp = randomTime(rng, now, 1+rng.Intn(5))
	default: // high-risk location
		r.amount = uniform(rng, 100, 5000)
		r.merchant = pick(rng, append(append([]string{}, legitimateMerchants...), suspiciousMerchants...))
		r.location = pick(rng, highRiskLocations)
		r.timestamp = randomTime(rng, now, rng.Intn(24))
	}
	return r
}

func randomTime(rng *rand.Rand, now time.Time, hour int) time.Time {
	daysAgo := rng.Intn(31)
	base := now.AddDate(0, 0, -daysAgo)
	return time.Date(base.Year(), base.Month(), base.Day(), hour, rng.Intn(60), 0, 0, base.Location())
}

func weightedHour(rng *rand.Rand) int {
	total := 0
	for _, w := range hourWeights {
		total += w
	}
	n := rng.Intn(total)
	for h, w := range hourWeights {
		if n < w {
			return h
		}
		n -= w
	}
	return 12
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+rng.Float64()*(hi-lo))*100) / 100
}

func writeCSV(path string, rows []row, labeled bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"transaction_id", "amount", "merchant", "location", "timestamp", "card_number"}
	if labeled {
		header = append(header, "is_fraud")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.transactionID,
			strconv.FormatFloat(r.amount, 'f', 2, 64),
			r.merchant,
			r.location,
			r.timestamp.Format("2006-01-02T15:04:05"),
			r.cardNumber,
		}
		if labeled {
			record = append(record, strconv.Itoa(r.isFraud))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
