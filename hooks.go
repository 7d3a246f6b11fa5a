package rowcache

// Hooks are lightweight callbacks for read-path events. Implementations MUST
// be cheap and non-blocking; the engine calls them inline on hot paths. Wrap
// with hooks/async to move slow consumers off the caller's goroutine.
type Hooks interface {
	// A live entry was returned.
	Hit(partition, key string)

	// No row exists for the key.
	Miss(partition, key string)

	// A dead row was observed (and reaped best-effort) on read.
	Expired(partition, key string)

	// A stored payload failed to decode; the error was surfaced to the caller.
	DecodeError(partition, key string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Hit(string, string)                {}
func (NopHooks) Miss(string, string)               {}
func (NopHooks) Expired(string, string)            {}
func (NopHooks) DecodeError(string, string, error) {}
