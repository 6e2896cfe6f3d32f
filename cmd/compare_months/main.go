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
	"os"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
	"github.com/tempdist/tempdist/compare"
	"github.com/tempdist/tempdist/internal/logging"
	"github.com/tempdist/tempdist/pkg/common/config"
	"github.com/tempdist/tempdist/snapshot"
)

func main() {
	usage := `Monthly Temperature Distribution Comparison.

Fetches the configured observation datasets, filters each to the target
month, and renders overlaid density curves into one chart.

Usage:
  compare_months [--config=<config_file>] [--month=<1-12>] [--output=<chart_file>] [--snapshot] [--report=<report_file>]
  compare_months -h | --help

Options:
  -h --help                  Show this screen.
  --config=<config_file>     Path to a tempdist configuration file.
  --month=<1-12>             Calendar month to compare, overriding the config.
  --output=<chart_file>      Chart path (.png, .svg or .pdf), overriding the config.
  --snapshot                 Snapshot every fetched dataset into the local cache.
  --report=<report_file>     Also write the JSON run report to this path.
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

	if month, err := arguments.Int("--month"); err == nil && month != 0 {
		cfg.Comparison.Month = month
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid month override: %v", err)
		}
	}
	if output, _ := arguments.String("--output"); output != "" {
		cfg.Comparison.Chart.Output = output
	}

	opts := &compare.Options{
		Logger:      logging.New(os.Stderr, cfg.Settings.LogLevel),
		GitHubToken: cfg.Settings.GitHubToken,
	}

	if useSnapshot, _ := arguments.Bool("--snapshot"); useSnapshot {
		store, err := snapshot.Open(cfg.Settings.CacheDir)
		if err != nil {
			log.Fatalf("Error opening snapshot store: %v", err)
		}
		defer store.Close()
		opts.Store = store
	}

	timeout := cfg.Settings.HTTPTimeout * time.Duration(len(cfg.Comparison.Datasets))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := compare.Run(ctx, cfg, opts)
	if err != nil {
		log.Fatalf("Error comparing months: %v", err)
	}

	if reportPath, _ := arguments.String("--report"); reportPath != "" {
		if err := report.WriteFile(reportPath); err != nil {
			log.Fatalf("Error writing report: %v", err)
		}
	}

	out, err := report.JSON()
	if err != nil {
		log.Fatalf("Error marshaling report: %v", err)
	}
	fmt.Printf("Comparison completed. Chart: %s\nReport: %s\n", report.ChartPath, out)
}
