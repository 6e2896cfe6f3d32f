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

package compare

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tempdist/tempdist/internal/json"
	"github.com/tempdist/tempdist/pipeline"
)

// DatasetResult summarizes one dataset's path through the run.
type DatasetResult struct {
	Label           string            `json:"label"`
	Source          string            `json:"source"`
	Revision        string            `json:"revision,omitempty"`
	RowsFetched     int               `json:"rows_fetched"`
	RowsAfterFilter int               `json:"rows_after_filter"`
	Metrics         *pipeline.Metrics `json:"metrics,omitempty"`
}

// Report is the JSON run summary printed by the commands and optionally
// written next to the chart.
type Report struct {
	RunID      string          `json:"run_id"`
	Month      int             `json:"month"`
	Datasets   []DatasetResult `json:"datasets"`
	ChartPath  string          `json:"chart_path"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// NewReport starts a report for a run over the given month.
func NewReport(month int, chartPath string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Month:     month,
		ChartPath: chartPath,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the report's end time.
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() (string, error) {
	return json.PrettyPrint(r)
}

// WriteFile writes the JSON report to path.
func (r *Report) WriteFile(path string) error {
	out, err := r.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("compare: failed to write report: %w", err)
	}
	return nil
}
