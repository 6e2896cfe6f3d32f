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
	"strings"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/observation"
	"github.com/tempdist/tempdist/pipeline"
	"github.com/tempdist/tempdist/pkg/chart"
	"github.com/tempdist/tempdist/pkg/common/config"
	"github.com/tempdist/tempdist/snapshot"
)

func main() {
	usage := `Offline Chart Renderer.

Renders the monthly density comparison from local CSV files or from the
latest cached snapshots, without touching the network.

Usage:
  render_chart --input=<label=path>... [--month=<1-12>] [--output=<chart_file>] [--config=<config_file>]
  render_chart --latest [--month=<1-12>] [--output=<chart_file>] [--config=<config_file>]
  render_chart -h | --help

Options:
  -h --help                 Show this screen.
  --input=<label=path>      A labeled local CSV file, repeatable, e.g. --input=2020=fixtures/2020.csv.
  --latest                  Use the latest cached snapshot of every configured dataset.
  --month=<1-12>            Calendar month to filter to [default: 3].
  --output=<chart_file>     Chart path [default: tempdist.png].
  --config=<config_file>    Path to a tempdist configuration file.
`

	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		log.Fatalf("Error parsing arguments: %v", err)
	}

	_ = godotenv.Load()

	configPath, _ := arguments.String("--config")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	month, _ := arguments.Int("--month")
	if month < 1 || month > 12 {
		log.Fatalf("Month must be 1..12, got %d", month)
	}
	output, _ := arguments.String("--output")

	ctx := context.Background()

	var tables []*observation.Table
	if latest, _ := arguments.Bool("--latest"); latest {
		tables, err = latestTables(ctx, cfg)
	} else {
		inputs, _ := arguments["--input"].([]string)
		tables, err = localTables(ctx, inputs)
	}
	if err != nil {
		log.Fatalf("Error loading tables: %v", err)
	}

	var series []chart.Series
	for _, table := range tables {
		if err := table.Normalize(); err != nil {
			log.Fatalf("Error normalizing %s: %v", table.Label, err)
		}
		filtered, err := table.FilterMonth(time.Month(month))
		if err != nil {
			log.Fatalf("Error filtering %s: %v", table.Label, err)
		}
		series = append(series, chart.Series{Label: filtered.Label, Values: filtered.Values()})
	}

	figure, err := chart.Densities(series, &chart.Options{
		Title:  cfg.Comparison.Chart.Title,
		XLabel: cfg.Comparison.Chart.XLabel,
		YLabel: cfg.Comparison.Chart.YLabel,
	})
	if err != nil {
		log.Fatalf("Error rendering chart: %v", err)
	}
	if err := figure.Save(output); err != nil {
		log.Fatalf("Error saving chart: %v", err)
	}

	fmt.Printf("Chart written to %s (%d curves)\n", output, len(figure.Curves))
}

func localTables(ctx context.Context, inputs []string) ([]*observation.Table, error) {
	var tables []*observation.Table
	for _, in := range inputs {
		label, path, found := strings.Cut(in, "=")
		if !found || label == "" || path == "" {
			return nil, fmt.Errorf("input must be label=path, got %q", in)
		}

		reader, err := ingest.NewCSVFileReader(ctx, path, nil)
		if err != nil {
			return nil, err
		}
		sink := observation.NewTableSink(label, path)
		if _, err := pipeline.NewDataPipeline(reader, sink, nil).Start(ctx); err != nil {
			return nil, err
		}
		tables = append(tables, sink.Table())
	}
	return tables, nil
}

func latestTables(ctx context.Context, cfg *config.Config) ([]*observation.Table, error) {
	store, err := snapshot.Open(cfg.Settings.CacheDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var tables []*observation.Table
	for _, ds := range cfg.Comparison.Datasets {
		table, _, err := snapshot.OpenLatest(ctx, store, ds.Source)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", ds.Label, err)
		}
		table.Label = ds.Label
		tables = append(tables, table)
	}
	return tables, nil
}
