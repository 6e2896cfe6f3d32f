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

// Package snapshot keeps what tempdist fetched: a Parquet copy of every
// dataset, the raw CSV payload, and a SQLite catalog of provenance. The
// comparison pipeline works without it; snapshotting is opt-in.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/providers/filesystem"
)

// Layout under the store root:
//
//	<urlhash>/<ulid>.parquet   columnar snapshot per fetch
//	raw/<urlhash>/<ulid>.csv   raw payload, through the bucket abstraction
//	catalog.db                 SQLite catalog
//
// urlhash is the xxhash64 of the source URL as 16 hex digits; the ULID
// orders snapshots by fetch time.
type Store struct {
	root    string
	bucket  objstore.Bucket
	catalog *Catalog
}

// Open prepares a store rooted at dir, creating the directory, the raw
// bucket, and the catalog as needed. The raw archive goes through an
// objstore bucket so a remote provider can be swapped in for the local
// filesystem one.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: failed to create store root: %w", err)
	}

	bucket, err := filesystem.NewBucket(dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to open raw bucket: %w", err)
	}

	catalog, err := OpenCatalog(filepath.Join(dir, "catalog.db"))
	if err != nil {
		bucket.Close()
		return nil, err
	}

	return &Store{root: dir, bucket: bucket, catalog: catalog}, nil
}

// Catalog exposes the provenance catalog.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Close releases the catalog and the raw bucket.
func (s *Store) Close() error {
	cerr := s.catalog.Close()
	berr := s.bucket.Close()
	if cerr != nil {
		return cerr
	}
	return berr
}

// SnapshotPath returns the Parquet path for a fetch of sourceURL with the
// given snapshot ID, creating the parent directory.
func (s *Store) SnapshotPath(sourceURL, id string) (string, error) {
	dir := filepath.Join(s.root, URLHash(sourceURL))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: failed to create snapshot dir: %w", err)
	}
	return filepath.Join(dir, id+".parquet"), nil
}

// rawObjectName returns the bucket object name for the raw payload of a
// fetch.
func rawObjectName(sourceURL, id string) string {
	return filepath.ToSlash(filepath.Join("raw", URLHash(sourceURL), id+".csv"))
}

// URLHash returns the 16-hex-digit xxhash64 of a source URL, the directory
// key a source's snapshots are grouped under.
func URLHash(sourceURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(sourceURL))
}
