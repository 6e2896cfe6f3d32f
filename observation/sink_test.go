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

package observation_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempdist/tempdist/observation"
)

func TestTableSinkMaterializesRows(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "prom", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "nombreestacion", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"2020-03-01", "2020-03-02", "2020-03-03"}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{14.2, 0, 16.5}, []bool{true, false, true})
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"La Serena", "La Serena", "La Serena"}, nil)

	record := b.NewRecord()
	defer record.Release()

	sink := observation.NewTableSink("2020", "fixture")
	require.NoError(t, sink.Write(record), "Write should accept a record with the expected columns")
	require.NoError(t, sink.Close())

	table := sink.Table()
	require.Equal(t, 2, table.Len(), "The row with a null prom should be dropped")
	assert.Equal(t, "2020-03-01", table.Rows[0].RawTime)
	assert.Equal(t, 14.2, table.Rows[0].Mean)
	assert.Equal(t, "2020-03-03", table.Rows[1].RawTime)
	assert.Equal(t, "2020", table.Label)
}

func TestTableSinkRejectsMissingColumns(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "temperature", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).Append(14.2)

	record := b.NewRecord()
	defer record.Release()

	sink := observation.NewTableSink("2020", "fixture")
	assert.Error(t, sink.Write(record), "A record without time/prom columns should be rejected")
}

func TestTableSinkIntegerMeans(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.BinaryTypes.String},
		{Name: "prom", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).Append("2020-03-01")
	b.Field(1).(*array.Int64Builder).Append(14)

	record := b.NewRecord()
	defer record.Release()

	sink := observation.NewTableSink("2020", "fixture")
	require.NoError(t, sink.Write(record), "Integer prom columns should be widened to float64")
	assert.Equal(t, 14.0, sink.Table().Rows[0].Mean)
}
