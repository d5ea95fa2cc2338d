package stegger

import "github.com/mukadr/ghostfs/sampler"

// memSampler is an in-memory sampler.Sampler for testing stegger bit math
// without a real cover file.
type memSampler struct {
	data []uint32
	bits int
}

func newMemSampler(n, bits int) *memSampler {
	return &memSampler{data: make([]uint32, n), bits: bits}
}

func (m *memSampler) Read(i int64) (uint32, error) {
	return m.data[i], nil
}

func (m *memSampler) Write(i int64, v uint32) error {
	m.data[i] = v
	return nil
}

func (m *memSampler) Count() int64 { return int64(len(m.data)) }
func (m *memSampler) Bits() int    { return m.bits }
func (m *memSampler) Close() error { return nil }

var _ sampler.Sampler = (*memSampler)(nil)
