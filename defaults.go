package rowcache

import "time"

const (
	// DefaultPartition is the namespace used when Options.Partition is empty.
	DefaultPartition = "default"

	// DefaultTTL applies when Set/SetBulk are called with ttl == 0.
	DefaultTTL = 24 * time.Hour
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
