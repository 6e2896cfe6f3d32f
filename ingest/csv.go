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

package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
	pool "github.com/tempdist/tempdist/internal/memory"
	"github.com/tempdist/tempdist/pkg/csvschema"
)

// CSVReadOptions controls CSV decoding for both the HTTP and file readers.
type CSVReadOptions struct {
	ChunkSize        int
	Delimiter        rune
	NullValues       []string
	StringsCanBeNull bool
	// RawMirror, when set on the HTTP reader, receives a copy of the raw
	// response body as it is consumed. Used by the snapshot archive.
	RawMirror io.Writer
}

func (o *CSVReadOptions) withDefaults() *CSVReadOptions {
	out := CSVReadOptions{ChunkSize: 1024, Delimiter: ',', StringsCanBeNull: true}
	if o != nil {
		if o.ChunkSize > 0 {
			out.ChunkSize = o.ChunkSize
		}
		if o.Delimiter != 0 {
			out.Delimiter = o.Delimiter
		}
		out.NullValues = o.NullValues
		out.StringsCanBeNull = o.StringsCanBeNull
		out.RawMirror = o.RawMirror
	}
	return &out
}

// CSVFileReader streams a local CSV file of observations into Arrow records,
// fixtures and generated datasets mostly. Same header handling as the HTTP
// reader.
type CSVFileReader struct {
	path   string
	reader *csv.Reader
	file   *os.File
	schema *arrow.Schema
	alloc  memory.Allocator
}

// NewCSVFileReader opens filePath and prepares to stream its rows as
// observation records. Failures are *DataAccessError with the path as URL.
func NewCSVFileReader(ctx context.Context, filePath string, opts *CSVReadOptions) (*CSVFileReader, error) {
	opts = opts.withDefaults()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, accessErr(filePath, 0, err)
	}

	buffered := bufio.NewReader(file)
	header, err := readHeaderLine(buffered, opts.Delimiter)
	if err != nil {
		file.Close()
		return nil, accessErr(filePath, 0, fmt.Errorf("failed to read CSV header: %w", err))
	}

	schema, err := csvschema.ForHeader(header)
	if err != nil {
		file.Close()
		return nil, accessErr(filePath, 0, err)
	}

	alloc := pool.GetAllocator()
	reader := csv.NewReader(buffered, schema,
		csv.WithAllocator(alloc),
		csv.WithChunk(opts.ChunkSize),
		csv.WithComma(opts.Delimiter),
		csv.WithHeader(false),
		csv.WithNullReader(opts.StringsCanBeNull, opts.NullValues...),
	)

	return &CSVFileReader{
		path:   filePath,
		reader: reader,
		file:   file,
		schema: schema,
		alloc:  alloc,
	}, nil
}

// Read returns the next record batch from the file.
func (r *CSVFileReader) Read() (arrow.Record, error) {
	if !r.reader.Next() {
		if err := r.reader.Err(); err != nil && err != io.EOF {
			return nil, accessErr(r.path, 0, err)
		}
		return nil, io.EOF
	}
	record := r.reader.Record()
	if record == nil {
		return nil, io.EOF
	}
	record.Retain()
	return record, nil
}

func (r *CSVFileReader) Schema() *arrow.Schema {
	return r.schema
}

// Close releases the Arrow reader and the underlying file.
func (r *CSVFileReader) Close() error {
	defer pool.PutAllocator(r.alloc)
	if r.reader != nil {
		r.reader.Release()
	}
	return r.file.Close()
}

// CSVFileWriter writes Arrow records to a local CSV file, used for dataset
// exports and test fixtures.
type CSVFileWriter struct {
	writer *csv.Writer
	file   *os.File
}

// NewCSVFileWriter creates filePath and prepares to write records with the
// given schema, header row included.
func NewCSVFileWriter(ctx context.Context, filePath string, schema *arrow.Schema, delimiter rune) (*CSVFileWriter, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	if delimiter == 0 {
		delimiter = ','
	}
	writer := csv.NewWriter(file, schema,
		csv.WithComma(delimiter),
		csv.WithHeader(true),
		csv.WithNullWriter(""),
		csv.WithStringsReplacer(strings.NewReplacer()),
	)

	return &CSVFileWriter{writer: writer, file: file}, nil
}

// Write writes one record to the file.
func (w *CSVFileWriter) Write(record arrow.Record) error {
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record to CSV: %w", err)
	}
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer encountered an error: %w", err)
	}
	return nil
}

// Close flushes the writer and closes the file.
func (w *CSVFileWriter) Close() error {
	if w.writer != nil {
		w.writer.Flush()
		if err := w.writer.Error(); err != nil {
			w.file.Close()
			return fmt.Errorf("failed to flush CSV writer: %w", err)
		}
	}
	return w.file.Close()
}
