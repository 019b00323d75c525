package table

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ValidationResult enumerates every structural violation found in a
// table. Valid is true only when Errors is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a table against the structural requirements that must
// hold before any feature engineering proceeds. It never panics and
// always returns the full list of violations, not just the first.
func Validate(t *Table) ValidationResult {
	var errs []string

	if t == nil || t.Len() == 0 {
		errs = append(errs, "CSV file is empty")
		return ValidationResult{Valid: false, Errors: errs}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, "Missing required columns: "+strings.Join(missing, ", "))
	}

	for _, col := range []string{"transaction_id", "amount", "timestamp"} {
		if !t.HasColumn(col) {
			continue
		}
		for _, v := range t.Column(col) {
			if strings.TrimSpace(v) == "" {
				errs = append(errs, "Column '"+col+"' contains null values")
				break
			}
		}
	}

	if t.HasColumn("amount") {
		for _, v := range t.Column("amount") {
			if strings.TrimSpace(v) == "" {
				continue // reported by the null check above
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				errs = append(errs, "Column 'amount' must contain numeric values")
				break
			}
		}
	}

	if len(errs) > 0 {
		log.Warn().Strs("errors", errs).Msg("data validation failed")
		return ValidationResult{Valid: false, Errors: errs}
	}
	log.Debug().Int("rows", t.Len()).Msg("data validation passed")
	return ValidationResult{Valid: true, Errors: nil}
}
