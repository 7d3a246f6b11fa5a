// Package transfer implements the export/import file format: one JSON
// document per file, carrying the live rows of a single partition.
//
// Layout:
//
//	{
//	  "format": "rowcache", "version": 1,
//	  "partition": "default", "exported_at": "<RFC3339>",
//	  "entries": [
//	    {"key": "k", "value": "<base64 codec bytes>", "expires_at": "<RFC3339>", "hits": 0}
//	  ]
//	}
//
// Expiry is carried as an absolute timestamp, so a snapshot means the same
// thing no matter when it is imported. Decode is strict: unknown format or
// version, entries without a key or expiry, and trailing bytes after the
// document are all rejected.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// FormatName tags every snapshot so foreign JSON files are rejected early.
	FormatName = "rowcache"
	// Version is bumped on incompatible layout changes.
	Version = 1
)

// ErrMalformed is wrapped by every Decode failure.
var ErrMalformed = errors.New("transfer: malformed snapshot")

// Record is one exported row. Value holds the codec output verbatim;
// encoding/json carries it as base64 so binary codecs survive the trip.
type Record struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
	Hits      int64     `json:"hits"`
}

// Snapshot is a full export document for one partition.
type Snapshot struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	Partition  string    `json:"partition"`
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Record  `json:"entries"`
}

// Encode serializes s, stamping format name and version.
func Encode(s Snapshot) ([]byte, error) {
	s.Format = FormatName
	s.Version = Version
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses and validates a snapshot document.
func Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return Snapshot{}, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}
	if s.Format != FormatName {
		return Snapshot{}, fmt.Errorf("%w: unexpected format %q", ErrMalformed, s.Format)
	}
	if s.Version != Version {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, s.Version)
	}
	for i, r := range s.Entries {
		if r.Key == "" {
			return Snapshot{}, fmt.Errorf("%w: entry %d has no key", ErrMalformed, i)
		}
		if r.ExpiresAt.IsZero() {
			return Snapshot{}, fmt.Errorf("%w: entry %q has no expiry", ErrMalformed, r.Key)
		}
	}
	return s, nil
}
