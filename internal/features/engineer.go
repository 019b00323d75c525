package features

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/table"
)

// HighRiskLocations are the case-sensitive substrings that mark a
// location as high risk.
var HighRiskLocations = []string{"Nigeria", "Russia", "Ukraine", "Unknown"}

// Columns returns the fixed, ordered feature schema used as model input.
func Columns() []string {
	return []string{
		"amount", "amount_log", "amount_rounded",
		"hour", "day_of_week", "day_of_month", "month",
		"merchant_encoded", "location_encoded",
		"is_large_amount", "is_small_amount",
		"is_high_risk_location", "transaction_count",
		"is_late_night",
	}
}

// Transform derives the engineered feature frame from a raw table. Each
// derivation tolerates its source column being absent: the derived
// feature is simply skipped rather than failing the whole transform.
// When grow is true the categorical encoders extend their vocabularies
// (training); when false, unknown values map to UnseenCode (scoring).
// The final pass replaces every remaining missing value with 0.
func Transform(t *table.Table, enc *EncoderSet, grow bool) *Frame {
	n := t.Len()
	f := newFrame(n)

	amounts := parseAmounts(t)
	if amounts != nil {
		f.set("amount", amounts)
	}

	if t.HasColumn("timestamp") {
		hour := make([]float64, n)
		dow := make([]float64, n)
		dom := make([]float64, n)
		month := make([]float64, n)
		for i := 0; i < n; i++ {
			raw, _ := t.Value(i, "timestamp")
			ts, ok := table.ParseTimestamp(raw)
			if !ok {
				hour[i], dow[i], dom[i], month[i] = nan, nan, nan, nan
				continue
			}
			hour[i] = float64(ts.Hour())
			// Monday=0 .. Sunday=6
			dow[i] = float64((int(ts.Weekday()) + 6) % 7)
			dom[i] = float64(ts.Day())
			month[i] = float64(int(ts.Month()))
		}
		f.set("hour", hour)
		f.set("day_of_week", dow)
		f.set("day_of_month", dom)
		f.set("month", month)
	}

	if amounts != nil {
		amountLog := make([]float64, n)
		amountRounded := make([]float64, n)
		isLarge := make([]float64, n)
		isSmall := make([]float64, n)
		for i, a := range amounts {
			if math.IsNaN(a) {
				amountLog[i], amountRounded[i] = nan, nan
				continue // comparison flags stay 0 for missing amounts
			}
			amountLog[i] = math.Log1p(a)
			amountRounded[i] = math.Round(a/10) * 10
			if a > 5000 {
				isLarge[i] = 1
			}
			if a < 10 {
				isSmall[i] = 1
			}
		}
		f.set("amount_log", amountLog)
		f.set("amount_rounded", amountRounded)
		f.set("is_large_amount", isLarge)
		f.set("is_small_amount", isSmall)
	}

	if t.HasColumn("merchant") {
		codes := make([]float64, n)
		for i, v := range t.Column("merchant") {
			codes[i] = float64(enc.Merchant.Encode(v, grow))
		}
		f.set("merchant_encoded", codes)
	}

	if t.HasColumn("location") {
		codes := make([]float64, n)
		highRisk := make([]float64, n)
		for i, v := range t.Column("location") {
			codes[i] = float64(enc.Location.Encode(v, grow))
			if IsHighRiskLocation(v) {
				highRisk[i] = 1
			}
		}
		f.set("location_encoded", codes)
		f.set("is_high_risk_location", highRisk)
	}

	if t.HasColumn("card_number") && t.HasColumn("timestamp") {
		counts := make([]float64, n)
		seen := make(map[string]int)
		for i, card := range t.Column("card_number") {
			seen[card]++
			counts[i] = float64(seen[card])
		}
		f.set("transaction_count", counts)
	}

	if hour, ok := f.Column("hour"); ok {
		lateNight := make([]float64, n)
		for i, h := range hour {
			if h >= 1 && h <= 5 {
				lateNight[i] = 1
			}
		}
		f.set("is_late_night", lateNight)
	}

	f.fillMissing(0)

	log.Debug().
		Int("rows", n).
		Int("columns", len(f.Columns())).
		Msg("feature engineering completed")
	return f
}

// Labels extracts the is_fraud column as integer labels. Non-numeric or
// missing cells count as 0.
func Labels(t *table.Table) []int {
	col := t.Column(table.LabelColumn)
	y := make([]int, len(col))
	for i, v := range col {
		if x, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && x >= 0.5 {
			y[i] = 1
		}
	}
	return y
}

// IsHighRiskLocation reports whether the location contains any of the
// high-risk substrings.
func IsHighRiskLocation(location string) bool {
	for _, hr := range HighRiskLocations {
		if strings.Contains(location, hr) {
			return true
		}
	}
	return false
}

var nan = math.NaN()

func parseAmounts(t *table.Table) []float64 {
	if !t.HasColumn("amount") {
		return nil
	}
	col := t.Column("amount")
	out := make([]float64, len(col))
	for i, v := range col {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			out[i] = nan
			continue
		}
		out[i] = x
	}
	return out
}
