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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one cataloged snapshot of a source dataset.
type Entry struct {
	ID        string
	SourceURL string
	// FetchURL is the concrete location the bytes came from; differs from
	// SourceURL for indirect sources such as pinned github: references.
	FetchURL     string
	Label        string
	Revision     string
	ETag         string
	LastModified string
	RowCount     int64
	ByteSize     int64
	SnapshotPath string
	RawPath      string
	FetchedAt    time.Time
}

// ErrNotFound is returned by Latest when a source has no snapshots.
var ErrNotFound = errors.New("snapshot: no cataloged snapshot for source")

const catalogSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	source_url    TEXT NOT NULL,
	fetch_url     TEXT NOT NULL DEFAULT '',
	label         TEXT NOT NULL,
	revision      TEXT NOT NULL DEFAULT '',
	etag          TEXT NOT NULL DEFAULT '',
	last_modified TEXT NOT NULL DEFAULT '',
	row_count     INTEGER NOT NULL,
	byte_size     INTEGER NOT NULL,
	snapshot_path TEXT NOT NULL,
	raw_path      TEXT NOT NULL DEFAULT '',
	fetched_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_source ON snapshots (source_url, fetched_at);
`

// Catalog records snapshot provenance in a SQLite database next to the
// snapshot files.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (and if needed creates) the catalog database at path,
// with WAL journaling and a busy timeout suited to concurrent commands.
func OpenCatalog(path string) (*Catalog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to open catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: failed to create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts one snapshot entry.
func (c *Catalog) Record(ctx context.Context, e *Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(id, source_url, fetch_url, label, revision, etag, last_modified, row_count, byte_size, snapshot_path, raw_path, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SourceURL, e.FetchURL, e.Label, e.Revision, e.ETag, e.LastModified,
		e.RowCount, e.ByteSize, e.SnapshotPath, e.RawPath, e.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("snapshot: failed to record entry %s: %w", e.ID, err)
	}
	return nil
}

// List returns all snapshots of a source, newest first.
func (c *Catalog) List(ctx context.Context, sourceURL string) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source_url, fetch_url, label, revision, etag, last_modified, row_count, byte_size, snapshot_path, raw_path, fetched_at
		FROM snapshots WHERE source_url = ? ORDER BY fetched_at DESC, id DESC`, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SourceURL, &e.FetchURL, &e.Label, &e.Revision, &e.ETag, &e.LastModified,
			&e.RowCount, &e.ByteSize, &e.SnapshotPath, &e.RawPath, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("snapshot: failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Latest returns the most recent snapshot of a source.
func (c *Catalog) Latest(ctx context.Context, sourceURL string) (*Entry, error) {
	var e Entry
	err := c.db.QueryRowContext(ctx, `
		SELECT id, source_url, fetch_url, label, revision, etag, last_modified, row_count, byte_size, snapshot_path, raw_path, fetched_at
		FROM snapshots WHERE source_url = ? ORDER BY fetched_at DESC, id DESC LIMIT 1`, sourceURL).
		Scan(&e.ID, &e.SourceURL, &e.FetchURL, &e.Label, &e.Revision, &e.ETag, &e.LastModified,
			&e.RowCount, &e.ByteSize, &e.SnapshotPath, &e.RawPath, &e.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to query latest entry: %w", err)
	}
	return &e, nil
}

// Delete removes one entry from the catalog. The snapshot files are left in
// place.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("snapshot: failed to delete entry %s: %w", id, err)
	}
	return nil
}
