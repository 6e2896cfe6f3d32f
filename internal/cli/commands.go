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

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tempdist/tempdist/compare"
	"github.com/tempdist/tempdist/generator"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/internal/logging"
	"github.com/tempdist/tempdist/observation"
	"github.com/tempdist/tempdist/pipeline"
	"github.com/tempdist/tempdist/pkg/chart"
	"github.com/tempdist/tempdist/pkg/common/config"
	"github.com/tempdist/tempdist/snapshot"
)

// ExecuteCommand dispatches a menu choice to its operation.
func ExecuteCommand(choice string) error {
	switch choice {
	case "Compare Months":
		return compareMonths()
	case "Fetch Dataset":
		return fetchDataset()
	case "Render Chart":
		return renderChart()
	case "Generate Observations":
		return generateObservations()
	case "Validate Config":
		return validateConfig()
	default:
		return fmt.Errorf("unknown command: %s", choice)
	}
}

func compareMonths() error {
	fmt.Print("Enter the path for the chart (blank for tempdist.png): ")
	var output string
	fmt.Scanln(&output)

	cfg := config.Default()
	if output != "" {
		cfg.Comparison.Chart.Output = output
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Settings.HTTPTimeout*time.Duration(len(cfg.Comparison.Datasets)))
	defer cancel()

	report, err := compare.Run(ctx, cfg, &compare.Options{
		Logger:      logging.New(os.Stderr, cfg.Settings.LogLevel),
		GitHubToken: cfg.Settings.GitHubToken,
	})
	if err != nil {
		return err
	}

	out, err := report.JSON()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func fetchDataset() error {
	fmt.Print("Enter the dataset URL: ")
	var source string
	fmt.Scanln(&source)
	fmt.Print("Enter the dataset label: ")
	var label string
	fmt.Scanln(&label)

	cfg := config.Default()
	store, err := snapshot.Open(cfg.Settings.CacheDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Settings.HTTPTimeout)
	defer cancel()

	table, entry, err := snapshot.Fetch(ctx, store, snapshot.Source{URL: source, Label: label}, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Fetched %d rows; snapshot %s at %s\n", table.Len(), entry.ID, entry.SnapshotPath)
	return nil
}

func renderChart() error {
	fmt.Print("Enter the first CSV path: ")
	var path1 string
	fmt.Scanln(&path1)
	fmt.Print("Enter the first label: ")
	var label1 string
	fmt.Scanln(&label1)
	fmt.Print("Enter the second CSV path: ")
	var path2 string
	fmt.Scanln(&path2)
	fmt.Print("Enter the second label: ")
	var label2 string
	fmt.Scanln(&label2)
	fmt.Print("Enter the month (1-12): ")
	var monthStr string
	fmt.Scanln(&monthStr)
	fmt.Print("Enter the output path: ")
	var output string
	fmt.Scanln(&output)

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return fmt.Errorf("invalid month: %s", monthStr)
	}

	ctx := context.Background()
	var series []chart.Series
	for _, in := range []struct{ path, label string }{{path1, label1}, {path2, label2}} {
		table, err := loadLocalTable(ctx, in.path, in.label)
		if err != nil {
			return err
		}
		if err := table.Normalize(); err != nil {
			return err
		}
		filtered, err := table.FilterMonth(time.Month(month))
		if err != nil {
			return err
		}
		series = append(series, chart.Series{Label: filtered.Label, Values: filtered.Values()})
	}

	cfg := config.Default()
	figure, err := chart.Densities(series, &chart.Options{
		Title:  cfg.Comparison.Chart.Title,
		XLabel: cfg.Comparison.Chart.XLabel,
		YLabel: cfg.Comparison.Chart.YLabel,
	})
	if err != nil {
		return err
	}
	if err := figure.Save(output); err != nil {
		return err
	}
	fmt.Printf("Chart written to %s\n", output)
	return nil
}

func generateObservations() error {
	fmt.Print("Enter the path for the new CSV file: ")
	var path string
	fmt.Scanln(&path)

	rows, err := generator.WriteObservationsCSV(context.Background(), path, &generator.Options{Year: 2020})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d observations to %s\n", rows, path)
	return nil
}

func validateConfig() error {
	fmt.Print("Enter the config file path: ")
	var path string
	fmt.Scanln(&path)

	if _, err := config.Load(path); err != nil {
		return err
	}
	fmt.Println("Configuration is valid.")
	return nil
}

// loadLocalTable pumps a local CSV file into an observation table.
func loadLocalTable(ctx context.Context, path, label string) (*observation.Table, error) {
	reader, err := ingest.NewCSVFileReader(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	sink := observation.NewTableSink(label, path)
	if _, err := pipeline.NewDataPipeline(reader, sink, nil).Start(ctx); err != nil {
		return nil, err
	}
	return sink.Table(), nil
}
