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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempdist/tempdist/pkg/common/config"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate(), "The default configuration must validate")

	assert.Equal(t, 3, cfg.Comparison.Month, "The default comparison targets March")
	require.Len(t, cfg.Comparison.Datasets, 2)
	assert.Equal(t, "2023", cfg.Comparison.Datasets[0].Label)
	assert.Equal(t, "2020", cfg.Comparison.Datasets[1].Label)
	assert.Contains(t, cfg.Comparison.Datasets[0].Source, "temperatura_aire_ceaza/2023")
	assert.Equal(t, "tempdist.png", cfg.Comparison.Chart.Output)
	assert.Equal(t, "Temperatura (°C)", cfg.Comparison.Chart.XLabel)
	assert.Equal(t, 60*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempdist.yaml")
	doc := `
comparison:
  month: 7
  datasets:
    - label: winter
      source: https://example.com/winter.csv
    - label: summer
      source: github:MinCiencia/Datos-CambioClimatico/output/summer.csv@main
  chart:
    output: winter-vs-summer.svg
    title: Winter vs summer
settings:
  log_level: debug
  http_timeout: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err, "Error should be nil for a well-formed document")

	assert.Equal(t, 7, cfg.Comparison.Month)
	require.Len(t, cfg.Comparison.Datasets, 2)
	assert.Equal(t, "winter", cfg.Comparison.Datasets[0].Label)
	assert.Equal(t, "winter-vs-summer.svg", cfg.Comparison.Chart.Output)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.Settings.HTTPTimeout)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err, "An empty path should fall back to the defaults")
	assert.Equal(t, 3, cfg.Comparison.Month)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err, "A missing file should fail the load")
}

func TestEnvironmentOverridesSettings(t *testing.T) {
	t.Setenv("TEMPDIST_LOG_LEVEL", "debug")
	t.Setenv("TEMPDIST_HTTP_TIMEOUT", "90s")
	t.Setenv("TEMPDIST_GITHUB_TOKEN", "ghp_test")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Settings.LogLevel, "TEMPDIST_LOG_LEVEL should win")
	assert.Equal(t, 90*time.Second, cfg.Settings.HTTPTimeout, "TEMPDIST_HTTP_TIMEOUT should win")
	assert.Equal(t, "ghp_test", cfg.Settings.GitHubToken)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		description string
		mutate      func(*config.Config)
	}{
		{
			description: "month below range",
			mutate:      func(c *config.Config) { c.Comparison.Month = 0 },
		},
		{
			description: "month above range",
			mutate:      func(c *config.Config) { c.Comparison.Month = 13 },
		},
		{
			description: "single dataset",
			mutate:      func(c *config.Config) { c.Comparison.Datasets = c.Comparison.Datasets[:1] },
		},
		{
			description: "empty label",
			mutate:      func(c *config.Config) { c.Comparison.Datasets[0].Label = " " },
		},
		{
			description: "empty source",
			mutate:      func(c *config.Config) { c.Comparison.Datasets[1].Source = "" },
		},
		{
			description: "bad source scheme",
			mutate:      func(c *config.Config) { c.Comparison.Datasets[1].Source = "ftp://example.com/a.csv" },
		},
		{
			description: "empty chart output",
			mutate:      func(c *config.Config) { c.Comparison.Chart.Output = "" },
		},
		{
			description: "negative timeout",
			mutate:      func(c *config.Config) { c.Settings.HTTPTimeout = -time.Second },
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			test.mutate(cfg)
			assert.Error(t, cfg.Validate(), "Validation should reject: %s", test.description)
		})
	}
}

func TestGitHubSourcePassesValidation(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Comparison.Datasets[0].Source = "github:MinCiencia/Datos-CambioClimatico/output/2023.csv"
	assert.NoError(t, cfg.Validate(), "A github: source spec should be accepted")
}
