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

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
	ghsource "github.com/tempdist/tempdist/integrations/github"
	"github.com/tempdist/tempdist/internal/logging"
	"github.com/tempdist/tempdist/pkg/common/config"
	"github.com/tempdist/tempdist/snapshot"
)

func main() {
	usage := `Dataset Fetcher.

Fetches one observation dataset and snapshots it into the local cache:
Parquet copy, raw CSV archive, and a catalog entry.

Usage:
  fetch_dataset --source=<url> --label=<label> [--config=<config_file>]
  fetch_dataset -h | --help

Options:
  -h --help                 Show this screen.
  --source=<url>            Dataset URL, https:// or github:owner/repo/path[@ref].
  --label=<label>           Label recorded with the snapshot, e.g. 2020.
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

	source, _ := arguments.String("--source")
	label, _ := arguments.String("--label")

	logger := logging.New(os.Stderr, cfg.Settings.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Settings.HTTPTimeout)
	defer cancel()

	url, revision := source, ""
	if ghsource.IsSpec(source) {
		pinned, err := ghsource.Resolve(ctx, source, cfg.Settings.GitHubToken)
		if err != nil {
			log.Fatalf("Error resolving source: %v", err)
		}
		url = pinned.RawURL()
		revision = pinned.Revision()
	}

	store, err := snapshot.Open(cfg.Settings.CacheDir)
	if err != nil {
		log.Fatalf("Error opening snapshot store: %v", err)
	}
	defer store.Close()

	table, entry, err := snapshot.Fetch(ctx, store, snapshot.Source{
		URL:         source,
		ResolvedURL: url,
		Label:       label,
		Revision:    revision,
	}, logger)
	if err != nil {
		log.Fatalf("Error fetching dataset: %v", err)
	}

	fmt.Printf("Fetched %d rows from %s\nSnapshot %s: %s\n", table.Len(), source, entry.ID, entry.SnapshotPath)
}
