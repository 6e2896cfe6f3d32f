// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

// Package observation holds the in-memory model for a labeled air-temperature
// time series: an ordered table of rows, each with an observation timestamp
// and a mean temperature for the period.
package observation

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotNormalized is returned when a table is filtered before its timestamps
// have been normalized.
var ErrNotNormalized = errors.New("observation: table has not been normalized")

// timeLayouts are tried in order when normalizing a raw timestamp.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Row is a single observation as materialized from a source table.
type Row struct {
	// RawTime is the time value exactly as received from the source.
	RawTime string
	// Time is set by Normalize and is zero until then.
	Time time.Time
	// Mean is the mean temperature for the observation period, in °C.
	Mean float64
}

// Table is an ordered sequence of observations plus provenance. Source order
// is preserved but carries no meaning; timestamps are not required to be
// unique.
type Table struct {
	// Label tags which dataset the rows belong to, e.g. "2020" or "2023".
	Label string
	// Source describes where the rows came from (URL or file path).
	Source string
	Rows   []Row

	normalized bool
}

// ParseError reports a raw time value that could not be normalized.
type ParseError struct {
	Index int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("observation: row %d: cannot parse time %q: %v", e.Index, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// New returns an empty table with the given provenance.
func New(label, source string) *Table {
	return &Table{Label: label, Source: source}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Normalized reports whether Normalize has completed on this table.
func (t *Table) Normalized() bool {
	return t.normalized
}

// Normalize parses every RawTime into Row.Time, in place. It fails with a
// *ParseError naming the first offending row; the table stays unnormalized in
// that case. After a successful Normalize every Row.Time is a valid calendar
// timestamp.
func (t *Table) Normalize() error {
	for i := range t.Rows {
		if !t.Rows[i].Time.IsZero() {
			continue
		}
		ts, err := parseTime(t.Rows[i].RawTime)
		if err != nil {
			return &ParseError{Index: i, Value: t.Rows[i].RawTime, Err: err}
		}
		t.Rows[i].Time = ts
	}
	t.normalized = true
	return nil
}

// FilterMonth returns a new table holding exactly the rows whose timestamp
// falls in the given calendar month, in their original relative order. Rows
// are copied, not aliased. No matching rows yields an empty table, not an
// error. Filtering an already filtered table by the same month returns an
// equal table.
func (t *Table) FilterMonth(m time.Month) (*Table, error) {
	if !t.normalized {
		return nil, ErrNotNormalized
	}
	out := &Table{Label: t.Label, Source: t.Source, normalized: true}
	for _, row := range t.Rows {
		if row.Time.Month() == m {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// Values returns the mean-temperature column, in row order.
func (t *Table) Values() []float64 {
	vals := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row.Mean
	}
	return vals
}

// Append adds a row to the table. Appending after Normalize clears the
// normalized state unless the row already carries a parsed timestamp.
func (t *Table) Append(row Row) {
	if row.Time.IsZero() {
		t.normalized = false
	}
	t.Rows = append(t.Rows, row)
}

func parseTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
