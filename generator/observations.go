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

// Package generator synthesizes observation datasets shaped like the CEAZA
// air-temperature series, for demos and test fixtures.
package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/go-faker/faker/v4"
	"github.com/tempdist/tempdist/ingest"
	pool "github.com/tempdist/tempdist/internal/memory"
)

// Options controls the synthesized dataset.
type Options struct {
	// Year the timestamps span. Zero means 2020.
	Year int
	// Rows caps the number of observations. Zero means one per day.
	Rows int
	// Hourly emits one row per hour instead of per day.
	Hourly bool
	// Station names the site; empty draws one via faker.
	Station string
	// Seed makes the noise reproducible. Zero seeds from the clock.
	Seed int64
}

// batchRows is how many rows each Arrow record carries.
const batchRows = 1000

// WriteObservationsCSV writes a synthetic observation CSV to path: daily or
// hourly timestamps across the year, a seasonal sinusoid plus noise for a
// southern-hemisphere site, and the standard time / prom / nombreEstacion
// columns.
func WriteObservationsCSV(ctx context.Context, path string, opts *Options) (int, error) {
	if opts == nil {
		opts = &Options{}
	}
	year := opts.Year
	if year == 0 {
		year = 2020
	}
	station := opts.Station
	if station == "" {
		station = fmt.Sprintf("Estación %s", faker.LastName())
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	step := 24 * time.Hour
	layout := "2006-01-02"
	if opts.Hourly {
		step = time.Hour
		layout = "2006-01-02T15:04:05"
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	total := int(end.Sub(start) / step)
	if opts.Rows > 0 && opts.Rows < total {
		total = opts.Rows
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.BinaryTypes.String},
		{Name: "prom", Type: arrow.PrimitiveTypes.Float64},
		{Name: "nombreEstacion", Type: arrow.BinaryTypes.String},
	}, nil)

	writer, err := ingest.NewCSVFileWriter(ctx, path, schema, ',')
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	alloc := pool.GetAllocator()
	defer pool.PutAllocator(alloc)

	written := 0
	ts := start
	for written < total {
		n := batchRows
		if remaining := total - written; remaining < n {
			n = remaining
		}

		b := array.NewRecordBuilder(alloc, schema)
		timeBldr := b.Field(0).(*array.StringBuilder)
		promBldr := b.Field(1).(*array.Float64Builder)
		stationBldr := b.Field(2).(*array.StringBuilder)

		for i := 0; i < n; i++ {
			timeBldr.Append(ts.Format(layout))
			promBldr.Append(meanTemperature(ts, rng))
			stationBldr.Append(station)
			ts = ts.Add(step)
		}

		record := b.NewRecord()
		werr := writer.Write(record)
		record.Release()
		b.Release()
		if werr != nil {
			return written, werr
		}
		written += n
	}

	return written, nil
}

// meanTemperature models a southern-hemisphere annual cycle: warmest around
// mid January, coldest around mid July, with gaussian noise on top.
func meanTemperature(ts time.Time, rng *rand.Rand) float64 {
	day := float64(ts.YearDay())
	hour := float64(ts.Hour())
	seasonal := 15.0 + 8.0*math.Cos(2*math.Pi*(day-15)/365.25)
	diurnal := 3.0 * math.Sin(2*math.Pi*(hour-9)/24)
	return seasonal + diurnal + rng.NormFloat64()*1.5
}
