// Package stegger packs user bytes into the bits of a sampler's sample
// stream and exposes the result as a flat, byte-addressable store.
package stegger

import "github.com/pkg/errors"

// ErrBadOffset is returned when a read or write would run past the
// stegger's capacity.
var ErrBadOffset = errors.New("stegger: bad offset")

// Stegger is a byte-addressable pseudo-device backed by a sampler's bits.
type Stegger interface {
	// Capacity is the size of the store in bytes. ReadAt/WriteAt accept
	// every range that ends below Capacity; a range that ends exactly at
	// Capacity may be rejected.
	Capacity() int64
	// ReadAt fills buf by gathering bits starting at offset.
	ReadAt(buf []byte, offset int64) error
	// WriteAt scatters buf's bits starting at offset.
	WriteAt(buf []byte, offset int64) error
	// Close releases the stegger. It does not close the underlying sampler.
	Close() error
}
