package sampler

import (
	"encoding/binary"
	"testing"
)

func buildWAV(t *testing.T, bitsPerSample int, samples []uint16) []byte {
	t.Helper()

	bytesPerSample := bitsPerSample / 8
	dataLen := len(samples) * bytesPerSample
	data := make([]byte, dataLen)
	for i, s := range samples {
		switch bytesPerSample {
		case 1:
			data[i] = byte(s)
		case 2:
			binary.LittleEndian.PutUint16(data[i*2:], s)
		}
	}

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1) // mono
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 44100)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], 44100*uint32(bytesPerSample))
	binary.LittleEndian.PutUint16(fmtChunk[12:14], uint16(bytesPerSample))
	binary.LittleEndian.PutUint16(fmtChunk[14:16], uint16(bitsPerSample))

	buf := []byte{}
	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, make([]byte, 4)...) // riff size, unchecked by parser
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	sz := make([]byte, 4)
	binary.LittleEndian.PutUint32(sz, uint32(len(fmtChunk)))
	buf = append(buf, sz...)
	buf = append(buf, fmtChunk...)
	buf = append(buf, []byte("data")...)
	binary.LittleEndian.PutUint32(sz, uint32(dataLen))
	buf = append(buf, sz...)
	buf = append(buf, data...)

	return buf
}

func TestWAVOpenAndRoundTrip(t *testing.T) {
	samples := make([]uint16, 8)
	for i := range samples {
		samples[i] = uint16(i * 100)
	}
	p := writeTemp(t, t.TempDir(), "cover.wav", buildWAV(t, 16, samples))

	s, err := Open(p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got, want := s.Count(), int64(len(samples)); got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
	if got, want := s.Bits(), 16; got != want {
		t.Fatalf("Bits() = %d, want %d", got, want)
	}

	for i, want := range samples {
		got, err := s.Read(int64(i))
		if err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if uint16(got) != want {
			t.Fatalf("Read(%d) = %d, want %d", i, got, want)
		}
	}

	if err := s.Write(0, 12345); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(0)
	if err != nil {
		t.Fatalf("Read after write: %v", err)
	}
	if got != 12345 {
		t.Fatalf("Read(0) after write = %d, want 12345", got)
	}
}

func TestWAVRejectsNonPCM(t *testing.T) {
	buf := buildWAV(t, 16, []uint16{1, 2, 3})
	// corrupt the audioFormat field inside the "fmt " chunk.
	idx := indexOf(buf, []byte("fmt "))
	binary.LittleEndian.PutUint16(buf[idx+8:idx+10], 3) // IEEE float, unsupported
	p := writeTemp(t, t.TempDir(), "bad.wav", buf)

	if _, err := Open(p); err == nil {
		t.Fatalf("Open should reject non-PCM format")
	}
}

func indexOf(p, tag []byte) int {
	for i := 0; i+len(tag) <= len(p); i++ {
		match := true
		for j := range tag {
			if p[i+j] != tag[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
