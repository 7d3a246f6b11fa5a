package transfer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := Snapshot{
		Partition:  "sessions",
		ExportedAt: now,
		Entries: []Record{
			{Key: "a", Value: []byte(`{"n":1}`), ExpiresAt: now.Add(time.Hour), Hits: 3},
			{Key: "b", Value: []byte{0x00, 0xFF, 0x10}, ExpiresAt: now.Add(2 * time.Hour)},
		},
	}
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Format != FormatName || out.Version != Version {
		t.Fatalf("stamp: format=%q version=%d", out.Format, out.Version)
	}
	if out.Partition != in.Partition || len(out.Entries) != 2 {
		t.Fatalf("partition/entries mismatch: %+v", out)
	}
	if out.Entries[0].Key != "a" || out.Entries[0].Hits != 3 {
		t.Fatalf("entry 0 mismatch: %+v", out.Entries[0])
	}
	if !bytes.Equal(out.Entries[1].Value, in.Entries[1].Value) {
		t.Fatalf("binary value did not survive: %v", out.Entries[1].Value)
	}
	if !out.Entries[1].ExpiresAt.Equal(in.Entries[1].ExpiresAt) {
		t.Fatalf("expiry mismatch: %v", out.Entries[1].ExpiresAt)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	now := time.Now().UTC()
	good, err := Encode(Snapshot{Partition: "p", ExportedAt: now, Entries: []Record{
		{Key: "k", Value: []byte("v"), ExpiresAt: now.Add(time.Minute)},
	}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	cases := map[string][]byte{
		"not json":       []byte("][nope"),
		"wrong format":   []byte(`{"format":"other","version":1,"entries":[]}`),
		"wrong version":  []byte(`{"format":"rowcache","version":99,"entries":[]}`),
		"missing key":    []byte(`{"format":"rowcache","version":1,"entries":[{"value":"YQ==","expires_at":"2025-01-01T00:00:00Z"}]}`),
		"missing expiry": []byte(`{"format":"rowcache","version":1,"entries":[{"key":"k","value":"YQ=="}]}`),
		"trailing data":  append(append([]byte{}, good...), []byte("{}")...),
	}
	for name, b := range cases {
		if _, err := Decode(b); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: err = %v, want ErrMalformed", name, err)
		}
	}
}

func TestDecodeEmptyEntries(t *testing.T) {
	b, err := Encode(Snapshot{Partition: "p", ExportedAt: time.Now()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(s.Entries))
	}
	if !strings.Contains(string(b), `"format": "rowcache"`) {
		t.Fatalf("stamp missing from output: %s", b)
	}
}
