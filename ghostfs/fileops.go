package ghostfs

import stderrors "errors"

func (v *Volume) createEntry(path string, isDir bool) (err error) {
	defer v.logOp("create", path, &err)

	parentPath, name, err := splitParent(path)
	if err != nil {
		return err
	}
	if len(name) > maxNameLen {
		return newErr(NameTooLong, "create", nil)
	}

	parent, _, err := v.lookup(parentPath, false)
	if err != nil {
		return err
	}
	if !parent.isDir() {
		return newErr(NotADirectory, "create", nil)
	}

	if _, _, err := v.findInDir(parent.cluster, name); err == nil {
		return newErr(Exists, "create", nil)
	} else if !stderrors.Is(err, ErrNoSuchEntry) {
		return err
	}

	var newDirCluster uint16
	allocatedDir := false
	if isDir {
		nr, err := v.allocClusters(1, true)
		if err != nil {
			return err
		}
		newDirCluster = nr
		allocatedDir = true
	}

	ref, err := v.findFreeSlot(parent.cluster)
	if err != nil {
		if allocatedDir {
			v.freeChain(newDirCluster)
		}
		return err
	}

	e := dirEntry{filename: name}
	if isDir {
		e.size = dirBit
		e.cluster = newDirCluster
	}
	if err := v.writeEntry(ref, e); err != nil {
		if allocatedDir {
			v.freeChain(newDirCluster)
		}
		return err
	}

	bf, err := v.ensureBloom(parent.cluster)
	if err != nil {
		return err
	}
	bf.AddString(name)
	return nil
}

// Create adds an empty, zero-length file at path.
func (v *Volume) Create(path string) error {
	return v.createEntry(path, false)
}

// Mkdir adds an empty directory at path.
func (v *Volume) Mkdir(path string) error {
	return v.createEntry(path, true)
}

func (v *Volume) remove(path string, wantDir bool) (err error) {
	op := "unlink"
	if wantDir {
		op = "rmdir"
	}
	defer v.logOp(op, path, &err)

	comps, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(comps) == 0 {
		return newErr(Invalid, op, nil)
	}

	entry, ref, err := v.lookup(path, false)
	if err != nil {
		return err
	}
	if wantDir && !entry.isDir() {
		return newErr(NotADirectory, op, nil)
	}
	if !wantDir && entry.isDir() {
		return newErr(IsDirectory, op, nil)
	}
	if wantDir {
		empty, err := v.dirEmpty(entry.cluster)
		if err != nil {
			return err
		}
		if !empty {
			return newErr(NotEmpty, op, nil)
		}
	}

	if entry.cluster != 0 {
		if err := v.freeChain(entry.cluster); err != nil {
			return err
		}
		if wantDir {
			v.invalidateBloom(entry.cluster)
		}
	}

	cl, err := v.cache.Get(ref.clusterNr)
	if err != nil {
		return err
	}
	entrySlice(cl, ref.index)[0] = 0
	cl.MarkDirty()
	return nil
}

// Unlink removes the file at path.
func (v *Volume) Unlink(path string) error {
	return v.remove(path, false)
}

// Rmdir removes the empty directory at path.
func (v *Volume) Rmdir(path string) error {
	return v.remove(path, true)
}

func (v *Volume) dirEmpty(head uint16) (bool, error) {
	it, err := v.iterDir(head)
	if err != nil {
		return false, err
	}
	for {
		if it.entry().used() {
			return false, nil
		}
		if err := it.next(); err != nil {
			if stderrors.Is(err, ErrEndOfChain) {
				return true, nil
			}
			return false, err
		}
	}
}

// DirEntry is one entry returned by ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  uint32
}

// ReadDir lists the used entries of the directory at path.
func (v *Volume) ReadDir(path string) (entries []DirEntry, err error) {
	defer v.logOp("readdir", path, &err)

	dir, _, err := v.lookup(path, false)
	if err != nil {
		return nil, err
	}
	if !dir.isDir() {
		return nil, newErr(NotADirectory, "readdir", nil)
	}

	it, err := v.iterDir(dir.cluster)
	if err != nil {
		return nil, err
	}
	for {
		if e := it.entry(); e.used() {
			entries = append(entries, DirEntry{Name: e.filename, IsDir: e.isDir(), Size: e.fileSize()})
		}
		if err := it.next(); err != nil {
			if stderrors.Is(err, ErrEndOfChain) {
				break
			}
			return nil, err
		}
	}
	return entries, nil
}
