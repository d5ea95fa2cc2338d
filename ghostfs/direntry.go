package ghostfs

import (
	"encoding/binary"

	"github.com/mukadr/ghostfs/cluster"
)

const (
	// maxNameLen is the longest filename a dirEntry can hold, the field
	// width minus the trailing NUL.
	maxNameLen   = 55
	nameFieldLen = 56
	entrySize    = 62

	// dirBit, set in the high bit of the size field, marks a directory
	// entry. A plain file never sets it; its size field is the byte length.
	dirBit = uint32(1) << 31
)

// entriesPerCluster is how many 62-byte directory entries fit in a
// cluster's 4092 data bytes (66 * 62 == 4092, no slack).
const entriesPerCluster = cluster.DataSize / entrySize

// dirEntry is the in-memory form of one 62-byte on-disk directory entry.
// filename == "" means the slot is free.
type dirEntry struct {
	filename string
	size     uint32
	cluster  uint16
}

func (e dirEntry) used() bool {
	return e.filename != ""
}

func (e dirEntry) isDir() bool {
	return e.size&dirBit != 0
}

func (e dirEntry) fileSize() uint32 {
	return e.size &^ dirBit
}

func dirEntryFromBytes(b []byte) dirEntry {
	nul := 0
	for nul < nameFieldLen && b[nul] != 0 {
		nul++
	}
	var e dirEntry
	if nul > 0 {
		e.filename = string(b[:nul])
	}
	e.size = binary.LittleEndian.Uint32(b[56:60])
	e.cluster = binary.LittleEndian.Uint16(b[60:62])
	return e
}

func (e dirEntry) toBytes() []byte {
	b := make([]byte, entrySize)
	copy(b[:nameFieldLen], e.filename)
	binary.LittleEndian.PutUint32(b[56:60], e.size)
	binary.LittleEndian.PutUint16(b[60:62], e.cluster)
	return b
}

// entrySlice returns the slice of cl's data occupied by entry index idx.
func entrySlice(cl *cluster.Cluster, idx int) []byte {
	return cl.Data[idx*entrySize : idx*entrySize+entrySize]
}
