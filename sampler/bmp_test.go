package sampler

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func buildBMP(t *testing.T, width, height int, pixelOffset int) []byte {
	t.Helper()
	count := width * height // 8bpp: 1 byte/pixel
	buf := make([]byte, pixelOffset+count)
	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[10:14], uint32(pixelOffset))
	binary.LittleEndian.PutUint32(buf[18:22], uint32(width))
	binary.LittleEndian.PutUint32(buf[22:26], uint32(height))
	binary.LittleEndian.PutUint16(buf[28:30], 8) // bits per pixel
	for i := 0; i < count; i++ {
		buf[pixelOffset+i] = byte(i)
	}
	return buf
}

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestBMPOpenAndRoundTrip(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "cover.bmp", buildBMP(t, 4, 4, 54))

	s, err := Open(p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got, want := s.Count(), int64(16); got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
	if got, want := s.Bits(), 8; got != want {
		t.Fatalf("Bits() = %d, want %d", got, want)
	}

	v, err := s.Read(3)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 3 {
		t.Fatalf("Read(3) = %d, want 3", v)
	}

	if err := s.Write(3, 200); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err = s.Read(3)
	if err != nil {
		t.Fatalf("Read after write: %v", err)
	}
	if v != 200 {
		t.Fatalf("Read(3) after write = %d, want 200", v)
	}

	if _, err := s.Read(16); err == nil {
		t.Fatalf("Read(16) should fail, out of range")
	}
}

func TestBMPTooSmallIsBadFormat(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "tiny.bmp", []byte("BM"))
	if _, err := Open(p); errors.Cause(err) != ErrBadFormat {
		t.Fatalf("Open on truncated header = %v, want ErrBadFormat", err)
	}
}
