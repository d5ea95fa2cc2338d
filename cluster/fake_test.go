package cluster

import "github.com/mukadr/ghostfs/stegger"

// memStegger is an in-memory stegger.Stegger for testing the cluster cache
// without any real bit-packing underneath.
type memStegger struct {
	data []byte
}

func newMemStegger(n int64) *memStegger {
	return &memStegger{data: make([]byte, n)}
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
