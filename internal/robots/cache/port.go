package cache

import (
	"io"
	"time"
)

// Store defines the port interface for the declaration cache.
// This interface follows the port-adapter pattern, allowing different
// storage backends to be swapped without changing the caching policy.
//
// A Store is an opaque key -> bytes mapping where every entry carries the
// time it was last written. Keys are slash-separated relative paths such as
// "https/example.com/8080/robots.txt". Stores never expire or delete entries;
// expiry is decided by the caller from Entry.ModTime.
//
// Implementations must be safe for concurrent use, and Write must replace an
// entry atomically: a concurrent Open sees either the old or the new bytes.
type Store interface {
	// Stat returns the entry metadata for key.
	// found is false (with a nil error) when no entry exists.
	Stat(key string) (entry Entry, found bool, err error)

	// Open returns a reader over the entry's bytes. The caller must close it.
	Open(key string) (io.ReadCloser, error)

	// Write consumes r completely and replaces the entry for key.
	// On error the previous entry, if any, is left untouched.
	Write(key string, r io.Reader) (Entry, error)
}

// Entry describes a stored declaration.
type Entry struct {
	Key string
	// Location is where the adapter keeps the bytes (a file path, or a
	// pseudo-location for in-memory stores). Observational only.
	Location string
	ModTime  time.Time
	Size     int64
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.ModTime)
}
