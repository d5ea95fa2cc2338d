package ghostfs

import (
	"errors"

	"github.com/mukadr/ghostfs/cluster"
)

// ErrEndOfChain is returned by dirIterator.next/nextUsed once the last
// entry of a directory's cluster chain has been passed.
var ErrEndOfChain = errors.New("ghostfs: end of directory chain")

// entryRef locates one directory entry: the cluster it lives in and its
// index within that cluster's entriesPerCluster slots.
type entryRef struct {
	clusterNr uint16
	index     int
}

// dirIterator walks the entries of a directory's cluster chain in order,
// following Next links as it runs off the end of each cluster.
type dirIterator struct {
	vol       *Volume
	clusterNr uint16
	cluster   *cluster.Cluster
	index     int
}

func (v *Volume) iterDir(head uint16) (*dirIterator, error) {
	cl, err := v.cache.Get(head)
	if err != nil {
		return nil, err
	}
	return &dirIterator{vol: v, clusterNr: head, cluster: cl, index: 0}, nil
}

func (it *dirIterator) ref() entryRef {
	return entryRef{clusterNr: it.clusterNr, index: it.index}
}

func (it *dirIterator) entry() dirEntry {
	return dirEntryFromBytes(entrySlice(it.cluster, it.index))
}

// next advances to the following slot, crossing into the next cluster of
// the chain when the current one is exhausted. It returns ErrEndOfChain,
// leaving the iterator positioned at the last entry of the last cluster,
// once the chain's final cluster has no further entry.
func (it *dirIterator) next() error {
	if it.index < entriesPerCluster-1 {
		it.index++
		return nil
	}
	if it.cluster.Next == 0 {
		return ErrEndOfChain
	}
	cl, err := it.vol.cache.Get(it.cluster.Next)
	if err != nil {
		return err
	}
	it.clusterNr = it.cluster.Next
	it.cluster = cl
	it.index = 0
	return nil
}

// nextUsed advances to the next used entry, or returns ErrEndOfChain. The
// search runs on a scratch copy, so on any error the iterator stays where
// it was.
func (it *dirIterator) nextUsed() error {
	scratch := *it
	for {
		if err := scratch.next(); err != nil {
			return err
		}
		if scratch.entry().used() {
			*it = scratch
			return nil
		}
	}
}
