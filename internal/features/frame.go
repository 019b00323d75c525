// Package features derives the fixed set of numeric model features from
// validated transaction tables. Transform is deterministic: the same
// input table and encoder state always produce identical output.
package features

import "math"

// Frame is an engineered table: named float64 columns of equal length,
// in insertion order. NaN marks a missing value until the final
// zero-fill pass.
type Frame struct {
	order []string
	data  map[string][]float64
	n     int
}

func newFrame(n int) *Frame {
	return &Frame{data: make(map[string][]float64), n: n}
}

func (f *Frame) set(name string, values []float64) {
	if _, exists := f.data[name]; !exists {
		f.order = append(f.order, name)
	}
	f.data[name] = values
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.n }

// Columns returns the engineered column names in insertion order.
func (f *Frame) Columns() []string { return f.order }

// Column returns the named column, or false if it was not derived.
func (f *Frame) Column(name string) ([]float64, bool) {
	c, ok := f.data[name]
	return c, ok
}

// Matrix extracts the model input matrix using the requested column
// order. Columns absent from the frame are omitted; the names actually
// used are returned alongside so the caller can verify them against the
// trained model's schema.
func (f *Frame) Matrix(columns []string) ([][]float64, []string) {
	available := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, ok := f.data[c]; ok {
			available = append(available, c)
		}
	}

	m := make([][]float64, f.n)
	for i := range m {
		row := make([]float64, len(available))
		for j, c := range available {
			row[j] = f.data[c][i]
		}
		m[i] = row
	}
	return m, available
}

// fillMissing replaces every NaN in the frame with the given value.
func (f *Frame) fillMissing(v float64) {
	for _, col := range f.data {
		for i, x := range col {
			if math.IsNaN(x) {
				col[i] = v
			}
		}
	}
}
