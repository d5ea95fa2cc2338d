package ghostfs

import "github.com/mukadr/ghostfs/cluster"

// Handle is an open reference to a file's directory entry. It holds no
// cluster data itself; Read/Write always re-read the entry's current size
// and first cluster from the cache.
type Handle struct {
	vol    *Volume
	ref    entryRef
	closed bool
}

// Open resolves path to a file and returns a Handle for Read/Write.
func (v *Volume) Open(path string) (h *Handle, err error) {
	defer v.logOp("open", path, &err)

	entry, ref, err := v.lookup(path, false)
	if err != nil {
		return nil, err
	}
	if entry.isDir() {
		return nil, newErr(IsDirectory, "open", nil)
	}
	return &Handle{vol: v, ref: ref}, nil
}

// Release marks h as no longer in use. It never fails: there is no
// separate resource to free, since the handle's data lives in the shared
// cluster cache.
func (h *Handle) Release() {
	h.closed = true
}

func (v *Volume) readChain(head uint16, buf []byte, offset int64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	clusterIdx := offset / cluster.DataSize
	inOffset := int(offset % cluster.DataSize)

	nr := head
	for i := int64(0); i < clusterIdx; i++ {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return 0, err
		}
		if cl.Next == 0 {
			return 0, newErr(IO, "read", nil)
		}
		nr = cl.Next
	}

	written := 0
	remaining := len(buf)
	for remaining > 0 {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return written, err
		}
		n := cluster.DataSize - inOffset
		if n > remaining {
			n = remaining
		}
		copy(buf[written:written+n], cl.Data[inOffset:inOffset+n])
		written += n
		remaining -= n
		inOffset = 0

		if remaining > 0 {
			if cl.Next == 0 {
				return written, newErr(IO, "read", nil)
			}
			nr = cl.Next
		}
	}
	return written, nil
}

func (v *Volume) writeChain(head uint16, buf []byte, offset int64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	clusterIdx := offset / cluster.DataSize
	inOffset := int(offset % cluster.DataSize)

	nr := head
	for i := int64(0); i < clusterIdx; i++ {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return 0, err
		}
		if cl.Next == 0 {
			return 0, newErr(IO, "write", nil)
		}
		nr = cl.Next
	}

	written := 0
	remaining := len(buf)
	for remaining > 0 {
		cl, err := v.cache.Get(nr)
		if err != nil {
			return written, err
		}
		n := cluster.DataSize - inOffset
		if n > remaining {
			n = remaining
		}
		copy(cl.Data[inOffset:inOffset+n], buf[written:written+n])
		cl.MarkDirty()
		written += n
		remaining -= n
		inOffset = 0

		if remaining > 0 {
			if cl.Next == 0 {
				return written, newErr(IO, "write", nil)
			}
			nr = cl.Next
		}
	}
	return written, nil
}

// Read copies len(buf) bytes from h's file starting at offset. It fails
// ErrInvalid if the read would run past the file's current size.
func (v *Volume) Read(h *Handle, buf []byte, offset int64) (n int, err error) {
	if h.closed {
		return 0, newErr(Invalid, "read", nil)
	}
	entry, err := v.readEntryAt(h.ref)
	if err != nil {
		return 0, err
	}
	if offset < 0 || offset+int64(len(buf)) > int64(entry.fileSize()) {
		return 0, newErr(Invalid, "read", nil)
	}
	return v.readChain(entry.cluster, buf, offset)
}

// Write copies buf into h's file at offset, growing the file (allocating
// clusters as needed) when the write extends past the current size.
func (v *Volume) Write(h *Handle, buf []byte, offset int64) (n int, err error) {
	if h.closed {
		return 0, newErr(Invalid, "write", nil)
	}
	if offset < 0 {
		return 0, newErr(Invalid, "write", nil)
	}
	end := offset + int64(len(buf))
	if end > maxFileSize {
		return 0, newErr(TooLarge, "write", nil)
	}

	entry, err := v.readEntryAt(h.ref)
	if err != nil {
		return 0, err
	}

	if end > int64(entry.fileSize()) {
		updated, err := v.truncateEntry(h.ref, entry, end)
		if err != nil {
			return 0, err
		}
		if err := v.writeEntry(h.ref, updated); err != nil {
			return 0, err
		}
		entry = updated
	}

	return v.writeChain(entry.cluster, buf, offset)
}

func (v *Volume) readEntryAt(ref entryRef) (dirEntry, error) {
	cl, err := v.cache.Get(ref.clusterNr)
	if err != nil {
		return dirEntry{}, err
	}
	return dirEntryFromBytes(entrySlice(cl, ref.index)), nil
}
