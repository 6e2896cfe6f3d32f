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

// Package compare runs the month-comparison pipeline: fetch each labeled
// dataset, normalize timestamps, filter to the target month, and render the
// overlaid density chart. One run per invocation; any stage error aborts the
// run and propagates.
package compare

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	ghsource "github.com/tempdist/tempdist/integrations/github"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/internal/logging"
	"github.com/tempdist/tempdist/observation"
	"github.com/tempdist/tempdist/pipeline"
	"github.com/tempdist/tempdist/pkg/chart"
	"github.com/tempdist/tempdist/pkg/common/config"
	"github.com/tempdist/tempdist/snapshot"
	"golang.org/x/sync/errgroup"
)

// Options carries the run's ambient dependencies. The zero value works: no
// logging, default HTTP client, no snapshotting.
type Options struct {
	Logger log.Logger
	Client *http.Client
	// Store enables snapshotting of every fetched dataset when non-nil. The
	// comparison itself never reads the store; the default path stays a pure
	// fetch, filter, render pipeline.
	Store *snapshot.Store
	// GitHubToken authenticates github: source resolution; empty is fine for
	// public datasets.
	GitHubToken string
}

// Run executes the comparison described by cfg. The dataset fetches are
// independent and run concurrently; the first error cancels the rest. The
// returned report describes what was fetched, filtered, and rendered.
func Run(ctx context.Context, cfg *config.Config, opts *Options) (*Report, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := logging.OrNop(opts.Logger)

	report := NewReport(cfg.Comparison.Month, cfg.Comparison.Chart.Output)
	month := time.Month(cfg.Comparison.Month)

	filtered := make([]*observation.Table, len(cfg.Comparison.Datasets))
	results := make([]DatasetResult, len(cfg.Comparison.Datasets))

	g, gctx := errgroup.WithContext(ctx)
	for i, ds := range cfg.Comparison.Datasets {
		g.Go(func() error {
			result := DatasetResult{Label: ds.Label, Source: ds.Source}

			url := ds.Source
			if ghsource.IsSpec(ds.Source) {
				pinned, err := ghsource.Resolve(gctx, ds.Source, opts.GitHubToken)
				if err != nil {
					return err
				}
				url = pinned.RawURL()
				result.Revision = pinned.Revision()
				level.Debug(logger).Log("msg", "source pinned", "label", ds.Label, "revision", result.Revision)
			}

			table, metrics, err := fetch(gctx, ds.Source, url, ds.Label, result.Revision, opts)
			if err != nil {
				return err
			}
			result.RowsFetched = table.Len()
			result.Metrics = metrics

			if err := table.Normalize(); err != nil {
				return err
			}

			monthTable, err := table.FilterMonth(month)
			if err != nil {
				return err
			}
			result.RowsAfterFilter = monthTable.Len()

			level.Info(logger).Log(
				"msg", "dataset ready",
				"label", ds.Label,
				"rows", result.RowsFetched,
				"rows_in_month", result.RowsAfterFilter,
			)

			filtered[i] = monthTable
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := make([]chart.Series, len(filtered))
	for i, table := range filtered {
		series[i] = chart.Series{Label: table.Label, Values: table.Values()}
	}

	figure, err := chart.Densities(series, &chart.Options{
		Title:  cfg.Comparison.Chart.Title,
		XLabel: cfg.Comparison.Chart.XLabel,
		YLabel: cfg.Comparison.Chart.YLabel,
	})
	if err != nil {
		return nil, err
	}
	if err := figure.Save(cfg.Comparison.Chart.Output); err != nil {
		return nil, err
	}

	report.Datasets = results
	report.Finish()
	level.Info(logger).Log("msg", "chart rendered", "path", report.ChartPath, "run_id", report.RunID)
	return report, nil
}

// fetch materializes one dataset table, snapshotting it on the way when a
// store is configured. The snapshot is cataloged under the configured source
// spec, not the resolved URL, so offline lookups find it.
func fetch(ctx context.Context, source, url, label, revision string, opts *Options) (*observation.Table, *pipeline.Metrics, error) {
	if opts.Store != nil {
		table, _, err := snapshot.Fetch(ctx, opts.Store, snapshot.Source{
			URL:         source,
			ResolvedURL: url,
			Label:       label,
			Revision:    revision,
			Client:      opts.Client,
		}, opts.Logger)
		return table, nil, err
	}

	reader, err := ingest.NewHTTPCSVReader(ctx, url, opts.Client, nil)
	if err != nil {
		return nil, nil, err
	}

	sink := observation.NewTableSink(label, url)
	metrics, err := pipeline.NewDataPipeline(reader, sink, opts.Logger).Start(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sink.Table(), metrics, nil
}
