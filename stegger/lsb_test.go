package stegger

import (
	"bytes"
	"testing"
)

func TestLSBRoundTrip(t *testing.T) {
	s := newMemSampler(1000, 8)
	stg, err := NewLSB(s, 2)
	if err != nil {
		t.Fatalf("NewLSB: %v", err)
	}

	want := []byte("the quick brown fox jumps over the lazy dog")
	if err := stg.WriteAt(want, 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	got := make([]byte, len(want))
	if err := stg.ReadAt(got, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, want)
	}
}

func TestLSBCapacity(t *testing.T) {
	s := newMemSampler(800, 8)
	stg, err := NewLSB(s, 1)
	if err != nil {
		t.Fatalf("NewLSB: %v", err)
	}
	if got, want := stg.Capacity(), int64(100); got != want {
		t.Fatalf("Capacity() = %d, want %d", got, want)
	}
}

func TestLSBRejectsBadK(t *testing.T) {
	s := newMemSampler(10, 8)
	if _, err := NewLSB(s, 0); err == nil {
		t.Fatalf("k=0 should be rejected")
	}
	if _, err := NewLSB(s, 9); err == nil {
		t.Fatalf("k=9 should be rejected for an 8-bit sampler")
	}
}

func TestLSBRejectsPastEnd(t *testing.T) {
	s := newMemSampler(80, 8)
	stg, err := NewLSB(s, 1)
	if err != nil {
		t.Fatalf("NewLSB: %v", err)
	}
	buf := make([]byte, 10)
	if err := stg.ReadAt(buf, stg.Capacity()); err == nil {
		t.Fatalf("ReadAt past capacity should fail")
	}
}
