package ghostfs

import "github.com/mukadr/ghostfs/cluster"

// allocClusters allocates a chain of n clusters, linking them head-to-tail
// and zeroing each one when zero is true, returning the head cluster
// number. On failure it frees whatever it already allocated.
func (v *Volume) allocClusters(n int, zero bool) (uint16, error) {
	if n <= 0 {
		return 0, newErr(Invalid, "alloc", nil)
	}

	var head uint16
	var prev uint16
	havePrev := false
	allocated := make([]uint16, 0, n)
	searchFrom := uint16(1)

	rollback := func() {
		for _, nr := range allocated {
			v.cache.SetUsed(nr, false)
		}
	}

	for len(allocated) < n {
		nr, ok := v.cache.NextFree(searchFrom)
		if !ok {
			rollback()
			return 0, newErr(NoSpace, "alloc", nil)
		}
		searchFrom = nr + 1

		cl, err := v.cache.Get(nr)
		if err != nil {
			rollback()
			return 0, err
		}
		if zero {
			cl.Data = [cluster.DataSize]byte{}
		}
		cl.Next = 0
		cl.MarkDirty()

		if err := v.cache.SetUsed(nr, true); err != nil {
			rollback()
			return 0, err
		}

		if havePrev {
			prevCl, err := v.cache.Get(prev)
			if err != nil {
				rollback()
				return 0, err
			}
			prevCl.Next = nr
			prevCl.MarkDirty()
		} else {
			head = nr
		}
		prev = nr
		havePrev = true
		allocated = append(allocated, nr)
	}

	return head, nil
}

// freeChain marks every cluster in the chain starting at head as free.
func (v *Volume) freeChain(head uint16) error {
	nr := head
	for {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return err
		}
		next := cl.Next
		if err := v.cache.SetUsed(nr, false); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		nr = next
	}
}

// lastClusterOf returns the number of the final cluster in the chain
// starting at head.
func (v *Volume) lastClusterOf(head uint16) (uint16, error) {
	nr := head
	for {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return 0, err
		}
		if cl.Next == 0 {
			return nr, nil
		}
		nr = cl.Next
	}
}

// nthClusterOf returns the number of the (n+1)-th cluster (0-indexed) in
// the chain starting at head.
func (v *Volume) nthClusterOf(head uint16, n int) (uint16, error) {
	nr := head
	for i := 0; i < n; i++ {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return 0, err
		}
		if cl.Next == 0 {
			return 0, newErr(IO, "nth-cluster", nil)
		}
		nr = cl.Next
	}
	return nr, nil
}

// findFreeSlot locates the first unused entry slot in the directory chain
// rooted at head, extending the chain with a fresh zeroed cluster if none
// is free.
func (v *Volume) findFreeSlot(head uint16) (entryRef, error) {
	it, err := v.iterDir(head)
	if err != nil {
		return entryRef{}, err
	}
	for {
		if !it.entry().used() {
			return it.ref(), nil
		}
		if err := it.next(); err != nil {
			if err != ErrEndOfChain {
				return entryRef{}, err
			}
			break
		}
	}

	// it is now positioned at the last entry of the last cluster in the
	// chain; extend it with one fresh cluster.
	lastNr := it.clusterNr
	newNr, err := v.allocClusters(1, true)
	if err != nil {
		return entryRef{}, err
	}
	lastCl, err := v.cache.Get(lastNr)
	if err != nil {
		return entryRef{}, err
	}
	lastCl.Next = newNr
	lastCl.MarkDirty()
	return entryRef{clusterNr: newNr, index: 0}, nil
}

func (v *Volume) writeEntry(ref entryRef, e dirEntry) error {
	cl, err := v.cache.Get(ref.clusterNr)
	if err != nil {
		return err
	}
	copy(entrySlice(cl, ref.index), e.toBytes())
	cl.MarkDirty()
	return nil
}
