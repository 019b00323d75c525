// Package table provides the in-memory representation of tabular
// transaction data loaded from CSV, plus structural validation.
//
// A Table preserves both column order and row insertion order; row order
// is significant downstream (per-card sequence counting and result
// ordering both depend on it).
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Required columns for any inbound transaction table. The optional
// seventh column, is_fraud, is required for training input only.
var RequiredColumns = []string{
	"transaction_id", "amount", "merchant",
	"location", "timestamp", "card_number",
}

// LabelColumn is the training label column name.
const LabelColumn = "is_fraud"

// Table is an ordered sequence of records sharing a column schema.
// Cells are kept as raw strings; an empty string is a missing value.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given column schema.
func New(columns []string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: columns, index: idx}
}

// ReadCSV reads a CSV stream into a Table. The first row is the header.
// Ragged rows are tolerated: short rows are padded with missing values
// and long rows truncated to the schema. An empty stream yields an
// empty table (which validation then rejects).
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := New(header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", len(t.rows)+2, err)
		}
		t.Append(record)
	}
	return t, nil
}

// Append adds one row. Rows shorter than the schema are padded with
// missing values; longer rows are truncated.
func (t *Table) Append(row []string) {
	r := make([]string, len(t.columns))
	copy(r, row)
	t.rows = append(t.rows, r)
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the column names in schema order.
func (t *Table) Columns() []string { return t.columns }

// HasColumn reports whether the schema contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at (row, column). The second return is false
// when the column is absent or the cell is missing.
func (t *Table) Value(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	v := t.rows[row][i]
	if v == "" {
		return "", false
	}
	return v, true
}

// Column returns all cells of the named column in row order, or nil if
// the column is absent. Missing cells appear as empty strings.
func (t *Table) Column(name string) []string {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out
}

// Timestamp layouts accepted for the timestamp column, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601-like timestamp string. The second
// return is false when no accepted layout matches.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
