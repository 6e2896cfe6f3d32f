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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	pool "github.com/tempdist/tempdist/internal/memory"
	"github.com/tempdist/tempdist/observation"
)

// ParquetReader reads a snapshot Parquet file back into Arrow records.
type ParquetReader struct {
	recordReader pqarrow.RecordReader
	fileReader   *file.Reader
	schema       *arrow.Schema
	alloc        memory.Allocator
}

// NewParquetWriterProperties returns the writer properties used for snapshot
// files: Snappy compression, latest format version.
func NewParquetWriterProperties() *parquet.WriterProperties {
	return parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithAllocator(pool.GetAllocator()),
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCreatedBy("tempdist"),
	)
}

// NewParquetReader opens a snapshot Parquet file for streaming reads.
func NewParquetReader(ctx context.Context, filePath string) (*ParquetReader, error) {
	alloc := pool.GetAllocator()

	rdr, err := file.OpenParquetFile(filePath, false)
	if err != nil {
		pool.PutAllocator(alloc)
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	fileReader, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{Parallel: true, BatchSize: 64 * 1024}, alloc)
	if err != nil {
		pool.PutAllocator(alloc)
		rdr.Close()
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}

	schema, err := fileReader.Schema()
	if err != nil {
		pool.PutAllocator(alloc)
		rdr.Close()
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	recordReader, err := fileReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		pool.PutAllocator(alloc)
		rdr.Close()
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}

	return &ParquetReader{
		recordReader: recordReader,
		fileReader:   rdr,
		schema:       schema,
		alloc:        alloc,
	}, nil
}

func (p *ParquetReader) Read() (arrow.Record, error) {
	if p.recordReader.Next() {
		record := p.recordReader.Record()
		record.Retain()
		return record, nil
	}
	if err := p.recordReader.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return nil, io.EOF
}

func (p *ParquetReader) Schema() *arrow.Schema {
	return p.schema
}

func (p *ParquetReader) Close() error {
	defer pool.PutAllocator(p.alloc)
	p.recordReader.Release()
	return p.fileReader.Close()
}

// ParquetWriter writes records to a snapshot Parquet file.
type ParquetWriter struct {
	writer *pqarrow.FileWriter
	file   *os.File
	alloc  memory.Allocator
}

// NewParquetWriter creates filePath and prepares to write records with the
// given schema.
func NewParquetWriter(filePath string, schema *arrow.Schema) (*ParquetWriter, error) {
	alloc := pool.GetAllocator()

	f, err := os.Create(filePath)
	if err != nil {
		pool.PutAllocator(alloc)
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer, err := pqarrow.NewFileWriter(schema, f, NewParquetWriterProperties(), pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		f.Close()
		pool.PutAllocator(alloc)
		return nil, fmt.Errorf("failed to create Parquet writer: %w", err)
	}

	return &ParquetWriter{writer: writer, file: f, alloc: alloc}, nil
}

func (w *ParquetWriter) Write(record arrow.Record) error {
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record to Parquet: %w", err)
	}
	return nil
}

// Close finalizes the Parquet footer and releases the allocator. The
// pqarrow writer closes the underlying file.
func (w *ParquetWriter) Close() error {
	defer pool.PutAllocator(w.alloc)
	if err := w.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Parquet writer: %w", err)
	}
	return nil
}

// OpenSnapshot reloads a cataloged snapshot into an observation table
// without network access, for offline re-rendering.
func OpenSnapshot(ctx context.Context, filePath, label string) (*observation.Table, error) {
	reader, err := NewParquetReader(ctx, filePath)
	if err != nil {
		return nil, accessErr(filePath, 0, err)
	}
	defer reader.Close()

	sink := observation.NewTableSink(label, filePath)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, accessErr(filePath, 0, err)
		}
		werr := sink.Write(record)
		record.Release()
		if werr != nil {
			return nil, werr
		}
	}
	return sink.Table(), nil
}
