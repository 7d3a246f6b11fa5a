// Package codec defines the single serialization boundary between caller
// values and the bytes stored in a cache row.
package codec

// Codec encodes/decodes values V to []byte for storage. Encode and Decode
// must round-trip: Decode(Encode(v)) yields a value deep-equal to v.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
