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

package ingest_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/observation"
)

func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observations.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o644))
	return path
}

func TestCSVFileReaderReadsFixture(t *testing.T) {
	t.Parallel()

	reader, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err, "Error should be nil when opening the CSV file")
	defer reader.Close()

	sink := observation.NewTableSink("2020", "fixture")
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, sink.Write(record))
		record.Release()
	}

	table := sink.Table()
	require.Len(t, table.Rows, 3, "All fixture rows should be materialized")
	assert.Equal(t, "2020-03-01", table.Rows[0].RawTime)
	assert.InDelta(t, 14.2, table.Rows[0].Mean, 1e-9)
}

func TestCSVFileRoundTrip(t *testing.T) {
	t.Parallel()

	src, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err)
	defer src.Close()

	outPath := filepath.Join(t.TempDir(), "copy.csv")
	writer, err := ingest.NewCSVFileWriter(context.Background(), outPath, src.Schema(), ',')
	require.NoError(t, err, "Error should be nil when creating the CSV writer")

	for {
		record, err := src.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, writer.Write(record))
		record.Release()
	}
	require.NoError(t, writer.Close())

	copied, err := ingest.NewCSVFileReader(context.Background(), outPath, nil)
	require.NoError(t, err, "Error should be nil when reopening the written CSV")
	defer copied.Close()

	sink := observation.NewTableSink("copy", outPath)
	for {
		record, err := copied.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, sink.Write(record))
		record.Release()
	}
	assert.Len(t, sink.Table().Rows, 3, "The round-tripped CSV should keep every row")
}

func TestCSVFileWriterSurfacesFlushFailure(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("requires /dev/full")
	}

	src, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err)
	defer src.Close()

	record, err := src.Read()
	require.NoError(t, err)
	defer record.Release()

	writer, err := ingest.NewCSVFileWriter(context.Background(), "/dev/full", src.Schema(), ',')
	require.NoError(t, err)

	// The write may buffer; either way the ENOSPC must surface, not be
	// swallowed on close.
	writeErr := writer.Write(record)
	closeErr := writer.Close()
	require.Error(t, errors.Join(writeErr, closeErr), "A failed flush should be reported")
}

func TestParquetSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	src, err := ingest.NewCSVFileReader(context.Background(), writeFixtureCSV(t), nil)
	require.NoError(t, err)
	defer src.Close()

	snapPath := filepath.Join(t.TempDir(), "snapshot.parquet")
	writer, err := ingest.NewParquetWriter(snapPath, src.Schema())
	require.NoError(t, err, "Error should be nil when creating the Parquet writer")

	for {
		record, err := src.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, writer.Write(record))
		record.Release()
	}
	require.NoError(t, writer.Close())

	table, err := ingest.OpenSnapshot(context.Background(), snapPath, "2020")
	require.NoError(t, err, "Error should be nil when reading the snapshot back")
	require.Len(t, table.Rows, 3, "The snapshot should keep every row")
	assert.Equal(t, "2020", table.Label)

	require.NoError(t, table.Normalize())
	march, err := table.FilterMonth(3)
	require.NoError(t, err)
	assert.Len(t, march.Rows, 2, "Two fixture rows fall in March")
}
