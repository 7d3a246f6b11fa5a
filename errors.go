package rowcache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTTL rejects a negative TTL before any store access.
	ErrInvalidTTL = errors.New("rowcache: ttl must be positive")

	// ErrEmptyBulk rejects SetBulk with no items.
	ErrEmptyBulk = errors.New("rowcache: bulk set needs at least one item")

	// ErrEmptyKey rejects writes under an empty key. Rows written through the
	// engine always survive an export/import round trip.
	ErrEmptyKey = errors.New("rowcache: key must not be empty")

	// ErrUnavailable marks an Init failure: the backing store is unreachable.
	ErrUnavailable = errors.New("rowcache: storage unavailable")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("rowcache: cache is closed")
)

// CodecError reports a value that could not be encoded for storage or a
// stored payload that could not be decoded.
type CodecError struct {
	Key string
	Op  string // "encode" or "decode"
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("rowcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// StorageError reports a failed query or transaction against the row store.
type StorageError struct {
	Op  string // engine operation, e.g. "set", "get", "flush"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("rowcache: storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FormatError reports a malformed transfer file during Import. Nothing from
// the file has been committed when it is returned.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("rowcache: bad transfer file %q: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
