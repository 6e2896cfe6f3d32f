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

package compare_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempdist/tempdist/compare"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/pkg/common/config"
	"github.com/tempdist/tempdist/snapshot"
)

// fixtureCSV builds a CEAZA-shaped body with enough March rows for a density.
func fixtureCSV(year int, base float64) string {
	var b strings.Builder
	b.WriteString("time,prom,nombreEstacion\n")
	for day := 1; day <= 10; day++ {
		fmt.Fprintf(&b, "%d-03-%02d,%.1f,La Serena\n", year, day, base+float64(day)*0.3)
	}
	// Rows outside March that the filter must drop.
	fmt.Fprintf(&b, "%d-04-01,25.0,La Serena\n", year)
	fmt.Fprintf(&b, "%d-02-28,5.0,La Serena\n", year)
	return b.String()
}

func testConfig(t *testing.T, server *httptest.Server) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Comparison.Month = 3
	cfg.Comparison.Datasets = []config.Dataset{
		{Label: "2023", Source: server.URL + "/2023.csv"},
		{Label: "2020", Source: server.URL + "/2020.csv"},
	}
	cfg.Comparison.Chart.Output = filepath.Join(t.TempDir(), "tempdist.png")
	require.NoError(t, cfg.Validate(), "The test config should be valid")
	return cfg
}

func newFixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/2023.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixtureCSV(2023, 14.0)))
	})
	mux.HandleFunc("/2020.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixtureCSV(2020, 12.0)))
	})
	return httptest.NewServer(mux)
}

func TestRunRendersComparison(t *testing.T) {
	t.Parallel()

	server := newFixtureServer()
	defer server.Close()

	cfg := testConfig(t, server)
	report, err := compare.Run(context.Background(), cfg, &compare.Options{Client: server.Client()})
	require.NoError(t, err, "Error should be nil for a clean run")
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID, "Each run should get an ID")
	assert.Equal(t, 3, report.Month)
	require.Len(t, report.Datasets, 2, "Both datasets should be reported")

	for _, ds := range report.Datasets {
		assert.Equal(t, 12, ds.RowsFetched, "dataset %s should fetch every fixture row", ds.Label)
		assert.Equal(t, 10, ds.RowsAfterFilter, "dataset %s should keep only March rows", ds.Label)
	}

	info, err := os.Stat(report.ChartPath)
	require.NoError(t, err, "The chart file should be written")
	assert.Positive(t, info.Size())

	out, err := report.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"rows_after_filter"`, "The report should serialize its counts")
}

func TestRunFailsOnMissingDataset(t *testing.T) {
	t.Parallel()

	server := newFixtureServer()
	defer server.Close()

	cfg := testConfig(t, server)
	cfg.Comparison.Datasets[1].Source = server.URL + "/missing.csv"

	_, err := compare.Run(context.Background(), cfg, &compare.Options{Client: server.Client()})
	require.Error(t, err, "A missing dataset should abort the run")

	var accessErr *ingest.DataAccessError
	require.True(t, errors.As(err, &accessErr), "Error should be a *DataAccessError")
	assert.Equal(t, http.StatusNotFound, accessErr.Status)

	_, statErr := os.Stat(cfg.Comparison.Chart.Output)
	assert.True(t, os.IsNotExist(statErr), "No chart should be written on failure")
}

func TestRunSnapshotsWhenStoreConfigured(t *testing.T) {
	t.Parallel()

	server := newFixtureServer()
	defer server.Close()

	store, err := snapshot.Open(t.TempDir())
	require.NoError(t, err, "Error should be nil when opening the store")
	defer store.Close()

	cfg := testConfig(t, server)
	_, err = compare.Run(context.Background(), cfg, &compare.Options{
		Client: server.Client(),
		Store:  store,
	})
	require.NoError(t, err, "Error should be nil for a snapshotting run")

	for _, ds := range cfg.Comparison.Datasets {
		entries, err := store.Catalog().List(context.Background(), ds.Source)
		require.NoError(t, err)
		require.Len(t, entries, 1, "One snapshot should be cataloged for %s", ds.Label)
		assert.Equal(t, int64(12), entries[0].RowCount, "entry %s should record the fetched row count", ds.Label)
		assert.FileExists(t, entries[0].SnapshotPath, "The Parquet snapshot should exist on disk")
	}
}

func TestRunTooFewRowsForDensity(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/2023.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixtureCSV(2023, 14.0)))
	})
	mux.HandleFunc("/2020.csv", func(w http.ResponseWriter, r *http.Request) {
		// A single March row cannot support a density estimate.
		_, _ = w.Write([]byte("time,prom\n2020-03-01,12.3\n2020-04-01,18.0\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, server)
	_, err := compare.Run(context.Background(), cfg, &compare.Options{Client: server.Client()})
	require.Error(t, err, "A dataset with one usable row should fail the render")
}
