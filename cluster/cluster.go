// Package cluster implements the lazy, write-back cluster cache that sits
// between the stegger's flat byte store and the GhostFS directory/file
// layer.
package cluster

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// Size is the total on-stegger size of a cluster, header included.
	Size = 4096
	// DataSize is the number of user-addressable bytes in a cluster.
	DataSize = Size - headerSize
	headerSize = 4 // next u16, used u8, dirty u8 (dirty is in-memory only)

	// SuperblockPrefixSize is the size, in bytes, of the MD5 + cluster_count
	// prefix that precedes cluster 0 on the stegger.
	SuperblockPrefixSize = digestSize + headerFieldSize
	digestSize           = 16
	headerFieldSize       = 2
)

// Cluster is one 4096-byte unit of the filesystem: 4092 data bytes plus a
// 4-byte header. Data, Next and Used round-trip to disk; dirty never does.
type Cluster struct {
	Data  [DataSize]byte
	Next  uint16
	Used  bool
	dirty bool
}

// Dirty reports whether the cluster has unsynced in-memory mutations.
func (c *Cluster) Dirty() bool {
	return c.dirty
}

// MarkDirty flags the cluster as needing a write-through on the next Sync.
func (c *Cluster) MarkDirty() {
	c.dirty = true
}

func clusterFromBytes(b []byte) (*Cluster, error) {
	if len(b) != Size {
		return nil, errors.Errorf("cluster: expected %d bytes, got %d", Size, len(b))
	}
	c := &Cluster{}
	copy(c.Data[:], b[:DataSize])
	c.Next = binary.LittleEndian.Uint16(b[DataSize : DataSize+2])
	c.Used = b[DataSize+2] != 0
	// b[DataSize+3] is the reserved/dirty byte; always 0 on a fresh read.
	return c, nil
}

func (c *Cluster) toBytes() []byte {
	b := make([]byte, Size)
	copy(b[:DataSize], c.Data[:])
	binary.LittleEndian.PutUint16(b[DataSize:DataSize+2], c.Next)
	if c.Used {
		b[DataSize+2] = 1
	}
	// b[DataSize+3] stays 0: the dirty bit must never pollute the medium.
	return b
}

// Offset returns the byte offset, on the stegger, of cluster nr.
func Offset(nr uint16) int64 {
	return SuperblockPrefixSize + int64(nr)*Size
}

// ZeroedBytes returns the on-stegger representation of an empty cluster,
// for use by Format before any Cache exists.
func ZeroedBytes(used bool, next uint16) []byte {
	c := &Cluster{Used: used, Next: next}
	return c.toBytes()
}
