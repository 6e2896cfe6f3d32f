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

// Package csvschema maps CSV headers onto Arrow schemas for the observation
// datasets tempdist consumes.
package csvschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
)

// Canonical column names required in every observation dataset.
const (
	TimeColumn = "time"
	MeanColumn = "prom"
)

// ErrMissingColumns is wrapped by ForHeader when a required column is absent;
// the wrapping error names the missing columns.
var ErrMissingColumns = errors.New("csvschema: required columns missing")

// Canonical normalizes a raw CSV header name: strips a UTF-8 BOM and
// surrounding whitespace, lowercases, and snake-cases interior spaces, so
// "Time", " TIME" and "NombreEstacion " resolve predictably.
func Canonical(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "_")
}

// ForHeader builds the observation Arrow schema from a CSV header row. The
// mean-temperature column is typed float64; the time column stays a string so
// the raw value survives until timestamp normalization; every other column is
// carried as a nullable string and ignored downstream. Fails when time or
// prom is absent.
func ForHeader(header []string) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(header))
	seen := map[string]bool{}
	for i, name := range header {
		canonical := Canonical(name)
		seen[canonical] = true
		typ := arrow.DataType(arrow.BinaryTypes.String)
		if canonical == MeanColumn {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: canonical, Type: typ, Nullable: true}
	}

	var missing []string
	for _, required := range []string{TimeColumn, MeanColumn} {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return arrow.NewSchema(fields, nil), nil
}
