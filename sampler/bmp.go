package sampler

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const bmpHeaderSize = 30

// bmpSampler treats one byte of the pixel array as one 8-bit sample,
// regardless of the file's true bits-per-pixel. This mirrors bmp.c: bpp is
// used only to compute count, never to widen the sample itself.
type bmpSampler struct {
	*mapped
}

func openBMP(filename string) (Sampler, error) {
	m, err := openMapped(filename)
	if err != nil {
		return nil, err
	}

	if err := parseBMPHeader(m); err != nil {
		m.Close()
		return nil, err
	}

	return &bmpSampler{mapped: m}, nil
}

func parseBMPHeader(m *mapped) error {
	if len(m.data) < bmpHeaderSize {
		return errors.Wrap(ErrBadFormat, "bmp: invalid header")
	}
	if m.data[0] != 'B' || m.data[1] != 'M' {
		return errors.Wrap(ErrBadFormat, "bmp: unsupported format")
	}

	pixelOffset := int64(binary.LittleEndian.Uint32(m.data[10:14]))
	width := int64(binary.LittleEndian.Uint32(m.data[18:22]))
	height := int64(binary.LittleEndian.Uint32(m.data[22:26]))
	bppBytes := int64(binary.LittleEndian.Uint16(m.data[28:30]) / 8)

	count := width * height * bppBytes
	if pixelOffset+count > int64(len(m.data)) {
		return errors.Wrap(ErrBadFormat, "bmp: invalid pixel offset")
	}

	m.ptr = m.data[pixelOffset:]
	m.count = count
	m.bits = 8

	return nil
}
