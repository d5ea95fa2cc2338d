// Package sampler parses a cover media file (BMP or WAV, PCM only) and
// exposes its sample stream as an indexed, mutable array of fixed-width
// samples backed by a memory-mapped view of the file.
package sampler

import (
	"encoding/binary"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrBadFormat is returned when a cover file's container header cannot be
// parsed as the format its extension claims.
var ErrBadFormat = errors.New("sampler: bad format")

// ErrWrongMedium is returned when a cover file's extension is not one of
// the supported container formats.
var ErrWrongMedium = errors.New("sampler: wrong medium")

// Sampler exposes a cover file's sample stream as an indexed array of
// fixed-width unsigned integers, mutable in place.
type Sampler interface {
	// Read returns the sample at index i.
	Read(i int64) (uint32, error)
	// Write sets the sample at index i to v.
	Write(i int64, v uint32) error
	// Count is the number of samples in the stream.
	Count() int64
	// Bits is the width of each sample: 8, 16 or 32.
	Bits() int
	// Close unmaps and closes the underlying cover file.
	Close() error
}

// mapped holds the raw memory-mapped cover file and the sample window
// within it. It is embedded by the format-specific parsers.
type mapped struct {
	file *os.File
	data []byte // the full mmap
	ptr  []byte // data[offset:], the start of the sample stream
	count int64
	bits  int
}

func openMapped(filename string) (*mapped, error) {
	f, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "sampler: open")
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "sampler: stat")
	}
	size := st.Size()
	if size == 0 {
		f.Close()
		return nil, errors.Wrap(ErrBadFormat, "sampler: empty file")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "sampler: mmap")
	}

	return &mapped{file: f, data: data}, nil
}

func (m *mapped) Count() int64 {
	return m.count
}

func (m *mapped) Bits() int {
	return m.bits
}

func (m *mapped) Read(i int64) (uint32, error) {
	if i < 0 || i >= m.count {
		return 0, errors.Wrap(ErrBadFormat, "sampler: index out of range")
	}
	switch m.bits {
	case 8:
		return uint32(m.ptr[i]), nil
	case 16:
		return uint32(binary.LittleEndian.Uint16(m.ptr[i*2:])), nil
	case 32:
		return binary.LittleEndian.Uint32(m.ptr[i*4:]), nil
	default:
		return 0, errors.Errorf("sampler: bad bits %d", m.bits)
	}
}

func (m *mapped) Write(i int64, v uint32) error {
	if i < 0 || i >= m.count {
		return errors.Wrap(ErrBadFormat, "sampler: index out of range")
	}
	switch m.bits {
	case 8:
		m.ptr[i] = byte(v)
	case 16:
		binary.LittleEndian.PutUint16(m.ptr[i*2:], uint16(v))
	case 32:
		binary.LittleEndian.PutUint32(m.ptr[i*4:], v)
	default:
		return errors.Errorf("sampler: bad bits %d", m.bits)
	}
	return nil
}

func (m *mapped) Close() error {
	if err := unix.Munmap(m.data); err != nil {
		m.file.Close()
		return errors.Wrap(err, "sampler: munmap")
	}
	return errors.Wrap(m.file.Close(), "sampler: close")
}

// Open opens filename and returns a Sampler appropriate for its extension:
// ".bmp" parses it as a BMP, ".wav" as a PCM WAV. Any other extension
// fails with ErrWrongMedium.
func Open(filename string) (Sampler, error) {
	switch {
	case strings.HasSuffix(filename, ".bmp"):
		return openBMP(filename)
	case strings.HasSuffix(filename, ".wav"):
		return openWAV(filename)
	default:
		return nil, errors.Wrapf(ErrWrongMedium, "sampler: unknown extension for %s", filename)
	}
}
