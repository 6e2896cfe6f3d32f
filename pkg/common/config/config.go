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

// Package config loads tempdist configuration: YAML file, then TEMPDIST_*
// environment overrides on the settings block, then validation. With no
// config file the defaults reproduce the original analysis (March, CEAZA
// 2020 vs 2023).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	ghsource "github.com/tempdist/tempdist/integrations/github"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Comparison Comparison `yaml:"comparison"`
	Settings   Settings   `yaml:"settings"`
}

// Comparison configures the month comparison run.
type Comparison struct {
	// Month is the calendar month both datasets are filtered to, 1..12.
	Month    int       `yaml:"month"`
	Datasets []Dataset `yaml:"datasets"`
	Chart    Chart     `yaml:"chart"`
}

// Dataset is one labeled source table.
type Dataset struct {
	Label string `yaml:"label"`
	// Source is an https:// URL or a github:owner/repo/path[@ref] reference.
	Source string `yaml:"source"`
}

// Chart carries the figure's output path and localized text.
type Chart struct {
	Output string `yaml:"output"`
	Title  string `yaml:"title"`
	XLabel string `yaml:"xlabel"`
	YLabel string `yaml:"ylabel"`
}

// Settings is the ambient block; each field can be overridden by a
// TEMPDIST_* environment variable.
type Settings struct {
	CacheDir    string        `yaml:"cache_dir" envconfig:"CACHE_DIR"`
	HTTPTimeout time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT"`
	LogLevel    string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	GitHubToken string        `yaml:"github_token" envconfig:"GITHUB_TOKEN"`
}

// envPrefix namespaces the environment overrides: TEMPDIST_LOG_LEVEL etc.
const envPrefix = "TEMPDIST"

// Default returns the configuration matching the original analysis: March,
// CEAZA air-temperature series for 2020 and 2023, Spanish chart text.
func Default() *Config {
	return &Config{
		Comparison: Comparison{
			Month: 3,
			Datasets: []Dataset{
				{
					Label:  "2023",
					Source: "https://raw.githubusercontent.com/MinCiencia/Datos-CambioClimatico/main/output/temperatura_aire_ceaza/2023/2023_temperatura_aire_ceaza.csv",
				},
				{
					Label:  "2020",
					Source: "https://raw.githubusercontent.com/MinCiencia/Datos-CambioClimatico/main/output/temperatura_aire_ceaza/2020/2020_temperatura_aire_ceaza.csv",
				},
			},
			Chart: Chart{
				Output: "tempdist.png",
				Title:  "Promedio de la temperatura en la Región Metropolitana en marzo",
				XLabel: "Temperatura (°C)",
				YLabel: "Densidad de probabilidad",
			},
		},
		Settings: Settings{
			CacheDir:    defaultCacheDir(),
			HTTPTimeout: 60 * time.Second,
			LogLevel:    "info",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides to the settings block, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to open %s: %w", path, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg.Settings); err != nil {
		return nil, fmt.Errorf("config: failed to process environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the bounds a comparison run depends on.
func (c *Config) Validate() error {
	if c.Comparison.Month < 1 || c.Comparison.Month > 12 {
		return fmt.Errorf("config: month must be 1..12, got %d", c.Comparison.Month)
	}
	if len(c.Comparison.Datasets) < 2 {
		return fmt.Errorf("config: a comparison needs at least 2 datasets, got %d", len(c.Comparison.Datasets))
	}
	for i, ds := range c.Comparison.Datasets {
		if strings.TrimSpace(ds.Label) == "" {
			return fmt.Errorf("config: dataset %d has an empty label", i)
		}
		if err := validateSource(ds.Source); err != nil {
			return fmt.Errorf("config: dataset %q: %w", ds.Label, err)
		}
	}
	if c.Comparison.Chart.Output == "" {
		return fmt.Errorf("config: chart output path cannot be empty")
	}
	if c.Settings.HTTPTimeout < 0 {
		return fmt.Errorf("config: http_timeout cannot be negative")
	}
	return nil
}

func validateSource(source string) error {
	if source == "" {
		return fmt.Errorf("empty source")
	}
	if ghsource.IsSpec(source) {
		return nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("unparseable source %q: %w", source, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source %q must be http(s) or github:", source)
	}
	return nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tempdist"
	}
	return home + string(os.PathSeparator) + ".tempdist"
}
