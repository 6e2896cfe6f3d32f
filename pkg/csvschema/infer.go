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

package csvschema

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
)

// InferOptions controls CSV scanning during schema inference.
type InferOptions struct {
	Delimiter        rune
	HasHeader        bool
	StringsCanBeNull bool
	NullValues       []string
}

// maxInferRows bounds how much of a file inference reads.
const maxInferRows = 1000

// Infer scans up to 1000 rows of a CSV file and infers an Arrow schema from
// the observed values (int64, uint64, float64, date32, timestamp_ms, bool,
// falling back to string). Header names are canonicalized. The comparison
// pipeline itself uses ForHeader; Infer serves generated and ad-hoc files.
func Infer(ctx context.Context, filePath string, opts *InferOptions) (*arrow.Schema, error) {
	if opts == nil {
		opts = &InferOptions{Delimiter: ',', HasHeader: true}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	var headers []string
	if opts.HasHeader {
		raw, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV header: %w", err)
		}
		for _, name := range raw {
			headers = append(headers, Canonical(name))
		}
	} else {
		firstRow, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read first row: %w", err)
		}
		for i := range firstRow {
			headers = append(headers, fmt.Sprintf("field%d", i+1))
		}
	}

	columnTypes := make([]arrow.DataType, len(headers))
	columnNullability := make([]bool, len(headers))

	rowChannel := make(chan []string)
	var wg sync.WaitGroup
	mu := sync.Mutex{}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowChannel {
				for colIndex, value := range row {
					if colIndex >= len(headers) {
						continue
					}
					mu.Lock()
					columnTypes[colIndex] = inferColumnType(columnTypes[colIndex], value, opts)
					if isNullValue(value, opts.NullValues) {
						columnNullability[colIndex] = true
					}
					mu.Unlock()
				}
			}
		}()
	}

	rows := 0
	for rows < maxInferRows {
		if err := ctx.Err(); err != nil {
			break
		}
		row, err := reader.Read()
		if err != nil {
			break // EOF or malformed trailing row
		}
		rowChannel <- row
		rows++
	}

	close(rowChannel)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(headers))
	for i, name := range headers {
		if columnTypes[i] == nil {
			columnTypes[i] = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: name, Type: columnTypes[i], Nullable: columnNullability[i]}
	}

	return arrow.NewSchema(fields, nil), nil
}

// inferColumnType widens the current type guess based on one observed value.
func inferColumnType(currentType arrow.DataType, value string, opts *InferOptions) arrow.DataType {
	if isNullValue(value, opts.NullValues) {
		return currentType
	}

	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		if currentType == nil || currentType.ID() == arrow.INT64 {
			return arrow.PrimitiveTypes.Int64
		}
	}

	if _, err := strconv.ParseUint(value, 10, 64); err == nil {
		if currentType == nil || currentType.ID() == arrow.UINT64 {
			return arrow.PrimitiveTypes.Uint64
		}
	}

	if _, err := strconv.ParseFloat(value, 64); err == nil {
		if currentType == nil || currentType.ID() == arrow.INT64 || currentType.ID() == arrow.UINT64 || currentType.ID() == arrow.FLOAT64 {
			return arrow.PrimitiveTypes.Float64
		}
	}

	if isDate(value) {
		if currentType == nil || currentType.ID() == arrow.DATE32 {
			return arrow.FixedWidthTypes.Date32
		}
	}

	if isTimestamp(value) {
		if currentType == nil || currentType.ID() == arrow.TIMESTAMP {
			return arrow.FixedWidthTypes.Timestamp_ms
		}
	}

	if value == "true" || value == "false" {
		if currentType == nil || currentType.ID() == arrow.BOOL {
			return arrow.FixedWidthTypes.Boolean
		}
	}

	if currentType == nil || currentType.ID() == arrow.STRING {
		return arrow.BinaryTypes.String
	}
	// A value that contradicts the current guess demotes the column to string.
	return arrow.BinaryTypes.String
}

func isDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func isTimestamp(value string) bool {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339, "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func isNullValue(value string, nullValues []string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	for _, nv := range nullValues {
		if value == nv {
			return true
		}
	}
	return false
}
