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

// Package pipeline pumps Arrow records from a Reader into a Writer with a
// bounded channel, one goroutine per side, and cancellation on first error.
package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/tempdist/tempdist/internal/interfaces"
	"github.com/tempdist/tempdist/internal/json"
	"github.com/tempdist/tempdist/internal/logging"
)

// Metrics stores pipeline processing metrics.
type Metrics struct {
	sync.Mutex
	RecordsProcessed int           `json:"records_processed"`
	TotalBytes       int64         `json:"total_bytes"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	TotalDuration    time.Duration `json:"total_duration"`
	Throughput       float64       `json:"throughput_records_per_second"`
	ThroughputBytes  float64       `json:"throughput_bytes_per_second"`
}

// update calculates the total duration and throughput figures.
func (m *Metrics) update() {
	m.Lock()
	defer m.Unlock()

	m.TotalDuration = m.EndTime.Sub(m.StartTime)
	if m.TotalDuration > 0 {
		m.Throughput = float64(m.RecordsProcessed) / m.TotalDuration.Seconds()
		m.ThroughputBytes = float64(m.TotalBytes) / m.TotalDuration.Seconds()
	} else {
		m.Throughput = 0
		m.ThroughputBytes = 0
	}
}

// Report generates an indented JSON summary of the collected metrics.
func (m *Metrics) Report() string {
	m.Lock()
	defer m.Unlock()

	out, err := json.PrettyPrint(struct {
		RecordsProcessed int     `json:"records_processed"`
		TotalBytes       int64   `json:"total_bytes"`
		TotalDuration    string  `json:"total_duration"`
		Throughput       float64 `json:"throughput_records_per_second"`
		ThroughputBytes  float64 `json:"throughput_bytes_per_second"`
	}{
		RecordsProcessed: m.RecordsProcessed,
		TotalBytes:       m.TotalBytes,
		TotalDuration:    m.TotalDuration.String(),
		Throughput:       m.Throughput,
		ThroughputBytes:  m.ThroughputBytes,
	})
	if err != nil {
		return err.Error()
	}
	return out
}

// Duration returns the total duration of the pipeline run.
func (m *Metrics) Duration() time.Duration {
	m.Lock()
	defer m.Unlock()
	return m.EndTime.Sub(m.StartTime)
}

// DataPipeline pumps records from one reader into one writer.
type DataPipeline struct {
	reader  interfaces.Reader
	writer  interfaces.Writer
	errCh   chan error
	metrics *Metrics
	logger  log.Logger
}

// NewDataPipeline creates a pipeline over the given reader and writer. A nil
// logger discards log output.
func NewDataPipeline(reader interfaces.Reader, writer interfaces.Writer, logger log.Logger) *DataPipeline {
	return &DataPipeline{
		reader: reader,
		writer: writer,
		errCh:  make(chan error, 2), // one slot per side
		metrics: &Metrics{
			StartTime: time.Now(),
		},
		logger: logging.OrNop(logger),
	}
}

// Start runs the pump until the reader is exhausted or either side fails.
// The first error cancels the other side and is returned; the metrics are
// valid either way.
func (dp *DataPipeline) Start(ctx context.Context) (*Metrics, error) {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recordChan := make(chan arrow.Record, 100)

	wg.Add(1)
	go dp.startReader(ctx, recordChan, &wg)

	wg.Add(1)
	go dp.startWriter(ctx, recordChan, &wg)

	go func() {
		wg.Wait()
		dp.metrics.Lock()
		dp.metrics.EndTime = time.Now()
		dp.metrics.Unlock()
		dp.metrics.update()
		close(dp.errCh)
	}()

	for err := range dp.errCh {
		if err != nil {
			cancel()
			// Drain so the other side can exit before we return.
			for range dp.errCh {
			}
			return dp.metrics, err
		}
	}

	return dp.metrics, nil
}

// startReader reads records from the reader and sends them to the channel.
func (dp *DataPipeline) startReader(ctx context.Context, ch chan arrow.Record, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(ch) // signals the writer when done
	defer dp.reader.Close()

	for {
		select {
		case <-ctx.Done():
			level.Debug(dp.logger).Log("msg", "context canceled, stopping reader")
			return
		default:
			record, err := dp.reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				level.Error(dp.logger).Log("msg", "error reading record", "err", err)
				dp.errCh <- err
				return
			}

			if record == nil || record.NumCols() == 0 || record.NumRows() == 0 {
				if record != nil {
					record.Release()
				}
				continue
			}

			dp.metrics.Lock()
			dp.metrics.RecordsProcessed += int(record.NumRows())
			dp.metrics.TotalBytes += recordSize(record)
			dp.metrics.Unlock()

			select {
			case ch <- record:
			case <-ctx.Done():
				record.Release()
				return
			}
		}
	}
}

// startWriter receives records from the channel and writes them out.
func (dp *DataPipeline) startWriter(ctx context.Context, ch chan arrow.Record, wg *sync.WaitGroup) {
	defer wg.Done()
	defer dp.writer.Close()

	for {
		select {
		case <-ctx.Done():
			level.Debug(dp.logger).Log("msg", "context canceled, stopping writer")
			return
		case record, ok := <-ch:
			if !ok {
				return
			}
			if err := dp.writer.Write(record); err != nil {
				level.Error(dp.logger).Log("msg", "error writing record", "err", err)
				record.Release()
				dp.errCh <- err
				return
			}
			record.Release()
		}
	}
}

// recordSize approximates the size of a record from its column buffers.
func recordSize(record arrow.Record) int64 {
	size := int64(0)
	for _, col := range record.Columns() {
		for _, buf := range col.Data().Buffers() {
			if buf != nil {
				size += int64(buf.Len())
			}
		}
	}
	return size
}
