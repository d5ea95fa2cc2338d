package ghostfs

import "github.com/mukadr/ghostfs/cluster"

func ceilDivClusters(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + cluster.DataSize - 1) / cluster.DataSize
}

// truncateEntry grows or shrinks the cluster chain backing entry (located
// at ref) to hold newSize bytes, and returns the updated entry (not yet
// written back).
func (v *Volume) truncateEntry(ref entryRef, entry dirEntry, newSize int64) (dirEntry, error) {
	oldSize := int64(entry.fileSize())
	oldClusters := ceilDivClusters(oldSize)
	newClusters := ceilDivClusters(newSize)

	switch {
	case newClusters > oldClusters:
		grow := int(newClusters - oldClusters)
		if oldClusters == 0 {
			head, err := v.allocClusters(grow, false)
			if err != nil {
				return dirEntry{}, err
			}
			entry.cluster = head
		} else {
			lastNr, err := v.lastClusterOf(entry.cluster)
			if err != nil {
				return dirEntry{}, err
			}
			newHead, err := v.allocClusters(grow, false)
			if err != nil {
				return dirEntry{}, err
			}
			lastCl, err := v.cache.Get(lastNr)
			if err != nil {
				return dirEntry{}, err
			}
			lastCl.Next = newHead
			lastCl.MarkDirty()
		}

	case newClusters < oldClusters:
		if newClusters == 0 {
			if err := v.freeChain(entry.cluster); err != nil {
				return dirEntry{}, err
			}
			entry.cluster = 0
		} else {
			tailNr, err := v.nthClusterOf(entry.cluster, int(newClusters)-1)
			if err != nil {
				return dirEntry{}, err
			}
			tailCl, err := v.cache.Get(tailNr)
			if err != nil {
				return dirEntry{}, err
			}
			toFree := tailCl.Next
			tailCl.Next = 0
			tailCl.MarkDirty()
			if toFree != 0 {
				if err := v.freeChain(toFree); err != nil {
					return dirEntry{}, err
				}
			}
		}
	}

	entry.size = uint32(newSize)
	return entry, nil
}

// Truncate sets the file at path to exactly n bytes. Growing does not
// zero-fill: newly allocated clusters keep whatever data they last held,
// and so do the bytes between the old and new size within the existing
// tail cluster.
func (v *Volume) Truncate(path string, n int64) (err error) {
	defer v.logOp("truncate", path, &err)

	if n < 0 {
		return newErr(Invalid, "truncate", nil)
	}
	if n > maxFileSize {
		return newErr(TooLarge, "truncate", nil)
	}

	entry, ref, err := v.lookup(path, false)
	if err != nil {
		return err
	}
	if entry.isDir() {
		return newErr(IsDirectory, "truncate", nil)
	}

	updated, err := v.truncateEntry(ref, entry, n)
	if err != nil {
		return err
	}
	return v.writeEntry(ref, updated)
}
