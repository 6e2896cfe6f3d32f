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

package snapshot

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/ulid/v2"
	"github.com/tempdist/tempdist/ingest"
	"github.com/tempdist/tempdist/internal/logging"
	"github.com/tempdist/tempdist/observation"
	"github.com/tempdist/tempdist/pipeline"
)

// Source describes one dataset to fetch and snapshot.
type Source struct {
	// URL identifies the dataset as configured: an HTTP(S) location or an
	// indirect spec such as a pinned github: reference. The catalog and the
	// store layout are keyed by this value, so every fetch of one configured
	// source groups under one key regardless of where the bytes came from.
	URL string
	// ResolvedURL is the concrete HTTP(S) location to fetch when URL is an
	// indirect spec. Empty means URL is fetched directly.
	ResolvedURL string
	// Label tags the resulting table, e.g. "2020".
	Label string
	// Revision is optional provenance for pinned sources, recorded verbatim.
	Revision string
	// Client is the HTTP client to fetch with; nil means http.DefaultClient.
	Client *http.Client
}

// Fetch retrieves a source dataset once and keeps everything: the
// materialized observation table for the caller, a Parquet snapshot, the raw
// CSV payload in the archive bucket, and a catalog entry tying them
// together. A single pass over the body feeds all three through the fanout
// writer.
func Fetch(ctx context.Context, store *Store, src Source, logger log.Logger) (*observation.Table, *Entry, error) {
	logger = logging.OrNop(logger)
	id := ulid.Make().String()

	fetchURL := src.ResolvedURL
	if fetchURL == "" {
		fetchURL = src.URL
	}

	var raw bytes.Buffer
	reader, err := ingest.NewHTTPCSVReader(ctx, fetchURL, src.Client, &ingest.CSVReadOptions{RawMirror: &raw})
	if err != nil {
		return nil, nil, err
	}

	pqPath, err := store.SnapshotPath(src.URL, id)
	if err != nil {
		reader.Close()
		return nil, nil, err
	}

	pqWriter, err := ingest.NewParquetWriter(pqPath, reader.Schema())
	if err != nil {
		reader.Close()
		return nil, nil, err
	}

	sink := observation.NewTableSink(src.Label, src.URL)
	etag, lastModified := reader.ETag(), reader.LastModified()

	metrics, err := pipeline.NewDataPipeline(reader, pipeline.NewFanout(sink, pqWriter), logger).Start(ctx)
	if err != nil {
		return nil, nil, err
	}

	rawName := rawObjectName(src.URL, id)
	if err := store.bucket.Upload(ctx, rawName, bytes.NewReader(raw.Bytes())); err != nil {
		return nil, nil, err
	}

	entry := &Entry{
		ID:           id,
		SourceURL:    src.URL,
		FetchURL:     fetchURL,
		Label:        src.Label,
		Revision:     src.Revision,
		ETag:         etag,
		LastModified: lastModified,
		RowCount:     int64(sink.Table().Len()),
		ByteSize:     int64(raw.Len()),
		SnapshotPath: pqPath,
		RawPath:      rawName,
		FetchedAt:    time.Now().UTC(),
	}
	if err := store.catalog.Record(ctx, entry); err != nil {
		return nil, nil, err
	}

	level.Info(logger).Log(
		"msg", "snapshot recorded",
		"id", id,
		"source", src.URL,
		"rows", entry.RowCount,
		"bytes", entry.ByteSize,
		"duration", metrics.Duration(),
	)

	return sink.Table(), entry, nil
}

// OpenLatest reloads the newest snapshot of a source from disk, without
// network access.
func OpenLatest(ctx context.Context, store *Store, sourceURL string) (*observation.Table, *Entry, error) {
	entry, err := store.catalog.Latest(ctx, sourceURL)
	if err != nil {
		return nil, nil, err
	}
	table, err := ingest.OpenSnapshot(ctx, entry.SnapshotPath, entry.Label)
	if err != nil {
		return nil, nil, err
	}
	return table, entry, nil
}
