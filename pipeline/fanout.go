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

package pipeline

import (
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/tempdist/tempdist/internal/interfaces"
)

// Fanout duplicates every record to several writers, so a single fetch can
// simultaneously materialize a table and write a Parquet snapshot. The first
// writer to fail aborts the Write.
type Fanout struct {
	writers []interfaces.Writer
}

// NewFanout returns a writer that forwards each record to all of ws.
func NewFanout(ws ...interfaces.Writer) *Fanout {
	return &Fanout{writers: ws}
}

// Write forwards the record to every underlying writer. The record is not
// released here; the pipeline owns its lifecycle.
func (f *Fanout) Write(record arrow.Record) error {
	for i, w := range f.writers {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("fanout writer %d: %w", i, err)
		}
	}
	return nil
}

// Close closes every underlying writer, returning the joined errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, w := range f.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
