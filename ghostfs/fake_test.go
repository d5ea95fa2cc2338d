package ghostfs

import (
	"github.com/mukadr/ghostfs/cluster"
	"github.com/mukadr/ghostfs/sampler"
	"github.com/mukadr/ghostfs/stegger"
)

// memSampler is an in-memory sampler.Sampler for exercising password-mode
// mounting without a real cover file.
type memSampler struct {
	data []uint32
	bits int
}

func newMemSampler(n, bits int) *memSampler {
	return &memSampler{data: make([]uint32, n), bits: bits}
}

func (m *memSampler) Read(i int64) (uint32, error)  { return m.data[i], nil }
func (m *memSampler) Write(i int64, v uint32) error { m.data[i] = v; return nil }
func (m *memSampler) Count() int64                  { return int64(len(m.data)) }
func (m *memSampler) Bits() int                     { return m.bits }
func (m *memSampler) Close() error                  { return nil }

var _ sampler.Sampler = (*memSampler)(nil)

// memStegger is an in-memory stegger.Stegger for exercising the volume
// layer without any real cover file or bit-packing underneath.
type memStegger struct {
	data []byte
}

func newMemStegger(clusterCount int64) *memStegger {
	return &memStegger{data: make([]byte, cluster.SuperblockPrefixSize+clusterCount*cluster.Size)}
}

func (m *memStegger) Capacity() int64 { return int64(len(m.data)) }

func (m *memStegger) ReadAt(buf []byte, offset int64) error {
	copy(buf, m.data[offset:])
	return nil
}

func (m *memStegger) WriteAt(buf []byte, offset int64) error {
	copy(m.data[offset:], buf)
	return nil
}

func (m *memStegger) Close() error { return nil }

var _ stegger.Stegger = (*memStegger)(nil)

func newTestVolume(t interface {
	Helper()
	Fatalf(string, ...interface{})
}, clusterCount int64) *Volume {
	t.Helper()
	stg := newMemStegger(clusterCount)
	if err := FormatStegger(stg); err != nil {
		t.Fatalf("FormatStegger: %v", err)
	}
	v, err := Mount(stg, "")
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return v
}
