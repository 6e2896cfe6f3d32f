// Package ingest streams observation datasets into Arrow records, over HTTP
// for the live comparison path and over local CSV and Parquet files for
// fixtures and snapshots.
package ingest

import (
	"fmt"
)

// DataAccessError reports a failure to fetch or decode a source dataset:
// unreachable resource, non-2xx status, or malformed CSV. It is propagated
// out of the pipeline, never recovered.
type DataAccessError struct {
	URL    string
	Status int
	Err    error
}

func (e *DataAccessError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ingest: %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("ingest: %s: %v", e.URL, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func accessErr(url string, status int, err error) *DataAccessError {
	return &DataAccessError{URL: url, Status: status, Err: err}
}
