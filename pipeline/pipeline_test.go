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

package pipeline_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/internal/logging"
	"github.com/tempdist/tempdist/observation"
	"github.com/tempdist/tempdist/pipeline"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observations.csv")
	data := "time,prom\n2020-03-01,14.2\n2020-03-02,15.1\n2020-04-01,18.0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestPipelinePumpsCSVIntoSink(t *testing.T) {
	reader, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err, "Error should be nil when opening the CSV file")

	sink := observation.NewTableSink("2020", "fixture")
	p := pipeline.NewDataPipeline(reader, sink, logging.Nop())

	metrics, err := p.Start(context.Background())
	require.NoError(t, err, "Error should be nil when the pipeline completes")
	require.NotNil(t, metrics)

	table := sink.Table()
	assert.Len(t, table.Rows, 3, "Every fixture row should reach the sink")
	assert.Equal(t, 3, metrics.RecordsProcessed, "Metrics should count the pumped rows")
	assert.Positive(t, metrics.TotalBytes, "Metrics should track bytes moved")
	assert.GreaterOrEqual(t, metrics.Duration(), time.Duration(0), "Duration should be non-negative")
	assert.NotEmpty(t, metrics.Report(), "The JSON report should render")
}

func TestPipelineFanoutDuplicatesRecords(t *testing.T) {
	dir := t.TempDir()

	reader, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err)

	sink := observation.NewTableSink("2020", "fixture")
	pqPath := filepath.Join(dir, "snapshot.parquet")
	pqWriter, err := ingest.NewParquetWriter(pqPath, reader.Schema())
	require.NoError(t, err)

	p := pipeline.NewDataPipeline(reader, pipeline.NewFanout(sink, pqWriter), logging.Nop())
	_, err = p.Start(context.Background())
	require.NoError(t, err, "Error should be nil when the fanout pipeline completes")

	assert.Len(t, sink.Table().Rows, 3, "The sink branch should see every row")

	table, err := ingest.OpenSnapshot(context.Background(), pqPath, "2020")
	require.NoError(t, err, "Error should be nil when reading the Parquet branch back")
	assert.Len(t, table.Rows, 3, "The Parquet branch should see every row")
}

type failingWriter struct{ err error }

func (w *failingWriter) Write(record arrow.Record) error { return w.err }
func (w *failingWriter) Close() error                    { return nil }

func TestPipelinePropagatesWriterError(t *testing.T) {
	reader, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err)

	sinkErr := errors.New("disk full")
	p := pipeline.NewDataPipeline(reader, &failingWriter{err: sinkErr}, logging.Nop())

	_, err = p.Start(context.Background())
	require.Error(t, err, "A writer failure should surface from Start")
	assert.ErrorIs(t, err, sinkErr, "The writer error should be wrapped, not replaced")
}

type failingReader struct{ err error }

func (r *failingReader) Read() (arrow.Record, error) { return nil, r.err }
func (r *failingReader) Schema() *arrow.Schema       { return nil }
func (r *failingReader) Close() error                { return nil }

func TestPipelinePropagatesReaderError(t *testing.T) {
	readErr := errors.New("stream reset")
	sink := observation.NewTableSink("2020", "fixture")

	p := pipeline.NewDataPipeline(&failingReader{err: readErr}, sink, logging.Nop())
	_, err := p.Start(context.Background())
	require.Error(t, err, "A reader failure should surface from Start")
	assert.ErrorIs(t, err, readErr)
}

func TestPipelineEmptyInput(t *testing.T) {
	p := pipeline.NewDataPipeline(&failingReader{err: io.EOF}, observation.NewTableSink("x", "y"), logging.Nop())
	metrics, err := p.Start(context.Background())
	require.NoError(t, err, "EOF on the first read is a clean empty run")
	assert.Equal(t, 0, metrics.RecordsProcessed)
}
