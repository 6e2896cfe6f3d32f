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

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/docopt/docopt-go"
	"github.com/tempdist/tempdist/generator"
	"github.com/tempdist/tempdist/pkg/csvschema"
)

func main() {
	usage := `Synthetic Observation Generator.

Writes a CEAZA-shaped observation CSV: time, prom and nombreEstacion
columns, seasonal temperatures for a southern-hemisphere site.

Usage:
  generate_observations --out=<csv_file> [--year=<year>] [--rows=<count>] [--hourly] [--station=<name>]
  generate_observations -h | --help

Options:
  -h --help             Show this screen.
  --out=<csv_file>      Path for the generated CSV file.
  --year=<year>         Year the timestamps span [default: 2020].
  --rows=<count>        Cap on the number of rows; 0 means one per step [default: 0].
  --hourly              One row per hour instead of per day.
  --station=<name>      Station name; omitted means a generated one.
`

	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		log.Fatalf("Error parsing arguments: %v", err)
	}

	out, _ := arguments.String("--out")
	year, _ := arguments.Int("--year")
	rows, _ := arguments.Int("--rows")
	hourly, _ := arguments.Bool("--hourly")
	station, _ := arguments.String("--station")

	written, err := generator.WriteObservationsCSV(context.Background(), out, &generator.Options{
		Year:    year,
		Rows:    rows,
		Hourly:  hourly,
		Station: station,
	})
	if err != nil {
		log.Fatalf("Error generating observations: %v", err)
	}

	schema, err := csvschema.Infer(context.Background(), out, nil)
	if err != nil {
		log.Fatalf("Error verifying generated file: %v", err)
	}

	fmt.Printf("Wrote %d observations to %s\n", written, out)
	for _, field := range schema.Fields() {
		fmt.Printf("  %s: %s\n", field.Name, field.Type)
	}
}
