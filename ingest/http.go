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
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
	pool "github.com/tempdist/tempdist/internal/memory"
	"github.com/tempdist/tempdist/pkg/csvschema"
)

// HTTPCSVReader streams a remote CSV resource into Arrow records. The header
// row is sniffed to build the observation schema; the rest of the body is
// decoded by the Arrow CSV reader. Implements the module Reader interface.
type HTTPCSVReader struct {
	url          string
	reader       *csv.Reader
	body         io.ReadCloser
	schema       *arrow.Schema
	alloc        memory.Allocator
	etag         string
	lastModified string
}

// NewHTTPCSVReader issues a context-aware GET for url and prepares to stream
// its body as observation records. A nil client means http.DefaultClient.
// Any failure, including a non-2xx status or a header without the required
// columns, is a *DataAccessError.
func NewHTTPCSVReader(ctx context.Context, url string, client *http.Client, opts *CSVReadOptions) (*HTTPCSVReader, error) {
	if client == nil {
		client = http.DefaultClient
	}
	opts = opts.withDefaults()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, accessErr(url, 0, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, accessErr(url, 0, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, accessErr(url, resp.StatusCode, errors.New(resp.Status))
	}

	var src io.Reader = resp.Body
	if opts.RawMirror != nil {
		src = io.TeeReader(resp.Body, opts.RawMirror)
	}

	buffered := bufio.NewReader(src)
	header, err := readHeaderLine(buffered, opts.Delimiter)
	if err != nil {
		resp.Body.Close()
		return nil, accessErr(url, 0, fmt.Errorf("failed to read CSV header: %w", err))
	}

	schema, err := csvschema.ForHeader(header)
	if err != nil {
		resp.Body.Close()
		return nil, accessErr(url, 0, err)
	}

	alloc := pool.GetAllocator()
	reader := csv.NewReader(buffered, schema,
		csv.WithAllocator(alloc),
		csv.WithChunk(opts.ChunkSize),
		csv.WithComma(opts.Delimiter),
		csv.WithHeader(false), // header already consumed by the sniff
		csv.WithNullReader(opts.StringsCanBeNull, opts.NullValues...),
	)

	return &HTTPCSVReader{
		url:          url,
		reader:       reader,
		body:         resp.Body,
		schema:       schema,
		alloc:        alloc,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// Read returns the next record batch, or io.EOF when the body is exhausted.
// Malformed rows surface as *DataAccessError.
func (r *HTTPCSVReader) Read() (arrow.Record, error) {
	if !r.reader.Next() {
		if err := r.reader.Err(); err != nil && err != io.EOF {
			return nil, accessErr(r.url, 0, err)
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

// Schema returns the observation schema built from the sniffed header.
func (r *HTTPCSVReader) Schema() *arrow.Schema {
	return r.schema
}

// ETag returns the resource's ETag header, if any, for snapshot metadata.
func (r *HTTPCSVReader) ETag() string {
	return r.etag
}

// LastModified returns the resource's Last-Modified header, if any.
func (r *HTTPCSVReader) LastModified() string {
	return r.lastModified
}

// Close releases the Arrow reader and the response body.
func (r *HTTPCSVReader) Close() error {
	defer pool.PutAllocator(r.alloc)
	if r.reader != nil {
		r.reader.Release()
	}
	return r.body.Close()
}

// readHeaderLine consumes the first line of r and splits it into raw column
// names. Quoted fields containing the delimiter are honored; quoted newlines
// are not, which the observation sources never use.
func readHeaderLine(r *bufio.Reader, delimiter rune) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(line) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return splitHeader(line, delimiter), nil
}

func splitHeader(line string, delimiter rune) []string {
	var fields []string
	var field []rune
	inQuotes := false
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == delimiter && !inQuotes:
			fields = append(fields, string(field))
			field = field[:0]
		case ch == '\n' || ch == '\r':
			// line terminator, dropped
		default:
			field = append(field, ch)
		}
	}
	return append(fields, string(field))
}
