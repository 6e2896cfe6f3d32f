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

package observation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/tempdist/tempdist/pkg/csvschema"
)

// TableSink materializes Arrow records into a Table. It locates the time and
// prom columns by canonical header name and accepts string, timestamp,
// date32, float64, and int64 physical types for them. Rows where either
// required value is null are dropped. Extra columns are ignored.
type TableSink struct {
	table *Table
}

// NewTableSink returns a sink whose table carries the given provenance.
func NewTableSink(label, source string) *TableSink {
	return &TableSink{table: New(label, source)}
}

// Write appends one record's rows to the table.
func (s *TableSink) Write(record arrow.Record) error {
	schema := record.Schema()
	timeIdx, meanIdx := -1, -1
	for i, field := range schema.Fields() {
		switch csvschema.Canonical(field.Name) {
		case csvschema.TimeColumn:
			timeIdx = i
		case csvschema.MeanColumn:
			meanIdx = i
		}
	}
	if timeIdx < 0 || meanIdx < 0 {
		return fmt.Errorf("observation: record schema lacks %s/%s columns", csvschema.TimeColumn, csvschema.MeanColumn)
	}

	timeCol := record.Column(timeIdx)
	meanCol := record.Column(meanIdx)
	for row := 0; row < int(record.NumRows()); row++ {
		if timeCol.IsNull(row) || meanCol.IsNull(row) {
			continue
		}
		raw, ts, err := timeValue(timeCol, row)
		if err != nil {
			return err
		}
		mean, err := meanValue(meanCol, row)
		if err != nil {
			return err
		}
		s.table.Rows = append(s.table.Rows, Row{RawTime: raw, Time: ts, Mean: mean})
	}
	return nil
}

// Close is a no-op; the sink holds no resources.
func (s *TableSink) Close() error {
	return nil
}

// Table returns the materialized table.
func (s *TableSink) Table() *Table {
	return s.table
}

func timeValue(col arrow.Array, row int) (string, time.Time, error) {
	switch c := col.(type) {
	case *array.String:
		return c.Value(row), time.Time{}, nil
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		ts := c.Value(row).ToTime(unit).UTC()
		return ts.Format(time.RFC3339), ts, nil
	case *array.Date32:
		ts := c.Value(row).ToTime().UTC()
		return ts.Format("2006-01-02"), ts, nil
	default:
		return "", time.Time{}, fmt.Errorf("observation: unsupported time column type %s", col.DataType())
	}
}

func meanValue(col arrow.Array, row int) (float64, error) {
	switch c := col.(type) {
	case *array.Float64:
		return c.Value(row), nil
	case *array.Int64:
		return float64(c.Value(row)), nil
	case *array.String:
		v, err := strconv.ParseFloat(c.Value(row), 64)
		if err != nil {
			return 0, fmt.Errorf("observation: non-numeric %s value %q: %w", csvschema.MeanColumn, c.Value(row), err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("observation: unsupported %s column type %s", csvschema.MeanColumn, col.DataType())
	}
}
