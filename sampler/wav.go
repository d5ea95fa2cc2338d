package sampler

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	pcmFormat      = 1
	minFmtTailLen  = 24
	minDataTailLen = 8
)

// wavSampler exposes the PCM samples of a WAV "data" chunk. Supports
// 8/16/32-bit PCM only.
type wavSampler struct {
	*mapped
}

func openWAV(filename string) (Sampler, error) {
	m, err := openMapped(filename)
	if err != nil {
		return nil, err
	}

	if err := parseWAVHeader(m); err != nil {
		m.Close()
		return nil, err
	}

	return &wavSampler{mapped: m}, nil
}

func parseWAVHeader(m *mapped) error {
	tail := scanFor(m.data, []byte("fmt "))
	if len(tail) < minFmtTailLen {
		return errors.Wrap(ErrBadFormat, "wav: incomplete or no 'fmt ' section found")
	}

	audioFormat := binary.LittleEndian.Uint16(tail[8:10])
	if audioFormat != pcmFormat {
		return errors.Wrap(ErrBadFormat, "wav: only PCM format supported")
	}
	bits := int(binary.LittleEndian.Uint16(tail[22:24]))
	if bits != 8 && bits != 16 && bits != 32 {
		return errors.Wrap(ErrBadFormat, "wav: unsupported bits per sample")
	}

	tail = scanFor(tail, []byte("data"))
	if len(tail) < minDataTailLen {
		return errors.Wrap(ErrBadFormat, "wav: incomplete or no 'data' section found")
	}

	dataLen := int64(binary.LittleEndian.Uint32(tail[4:8]))
	ptr := tail[8:]

	if dataLen > int64(len(ptr)) {
		return errors.Wrap(ErrBadFormat, "wav: bad data section")
	}

	m.ptr = ptr
	m.bits = bits
	m.count = dataLen / int64(bits/8)

	return nil
}

// scanFor finds the first occurrence of tag at or after the start of p, by
// scanning forward byte by byte as the original implementation does, and
// returns the remaining bytes from that position (inclusive of tag).
func scanFor(p []byte, tag []byte) []byte {
	for len(p) >= len(tag) {
		if bytes.Equal(p[:len(tag)], tag) {
			return p
		}
		p = p[1:]
	}
	return p
}
