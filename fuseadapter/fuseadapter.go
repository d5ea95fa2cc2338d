// Package fuseadapter translates the FUSE operation shape (one call per
// path, file handle, or directory handle) onto a *ghostfs.Volume. It does
// not bind to an actual FUSE library: no FUSE binding exists anywhere in
// this module's dependency stack, so the adapter stops at the boundary a
// real `fuse_operations` table would sit behind, and is exercised directly
// by its own tests instead of through a mounted kernel filesystem.
package fuseadapter

import (
	"os"
	"sync"

	"github.com/mukadr/ghostfs/ghostfs"
)

// Attr is the subset of file metadata GhostFS can report, the Go analogue
// of the original's struct stat fill-in.
type Attr struct {
	IsDir bool
	Size  int64
	Mode  os.FileMode
}

// DirHandle is an open directory iteration cursor, returned by Opendir
// and consumed by Readdir/Releasedir.
type DirHandle struct {
	entries []ghostfs.DirEntry
	pos     int
}

// Volume is the operation surface fuseadapter dispatches onto, satisfied
// by *ghostfs.Volume.
type Volume interface {
	Create(path string) error
	Mkdir(path string) error
	Unlink(path string) error
	Rmdir(path string) error
	Truncate(path string, n int64) error
	Open(path string) (*ghostfs.Handle, error)
	Read(h *ghostfs.Handle, buf []byte, offset int64) (int, error)
	Write(h *ghostfs.Handle, buf []byte, offset int64) (int, error)
	ReadDir(path string) ([]ghostfs.DirEntry, error)
	Sync() error
}

// SerialDispatcher wraps a Volume so that every dispatched operation runs
// under a single mutex, the Go expression of the original's `-s`
// single-threaded FUSE flag: GhostFS has no internal locking of its own,
// so the adapter is where "only one operation in flight" gets enforced.
type SerialDispatcher struct {
	mu  sync.Mutex
	vol Volume
}

// NewSerialDispatcher wraps vol for single-threaded dispatch.
func NewSerialDispatcher(vol Volume) *SerialDispatcher {
	return &SerialDispatcher{vol: vol}
}

func (d *SerialDispatcher) Getattr(path string) (Attr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if path == "/" {
		return Attr{IsDir: true, Mode: os.ModeDir | 0755}, nil
	}

	entries, err := d.vol.ReadDir(parentOf(path))
	if err != nil {
		return Attr{}, err
	}
	name := baseOf(path)
	for _, e := range entries {
		if e.Name == name {
			if e.IsDir {
				return Attr{IsDir: true, Mode: os.ModeDir | 0755}, nil
			}
			return Attr{Size: int64(e.Size), Mode: 0644}, nil
		}
	}
	return Attr{}, ghostfs.ErrNoSuchEntry
}

func (d *SerialDispatcher) Create(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Create(path)
}

func (d *SerialDispatcher) Mkdir(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Mkdir(path)
}

func (d *SerialDispatcher) Unlink(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Unlink(path)
}

func (d *SerialDispatcher) Rmdir(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Rmdir(path)
}

func (d *SerialDispatcher) Truncate(path string, size int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Truncate(path, size)
}

func (d *SerialDispatcher) Open(path string) (*ghostfs.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Open(path)
}

func (d *SerialDispatcher) Release(h *ghostfs.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h.Release()
}

func (d *SerialDispatcher) Read(h *ghostfs.Handle, buf []byte, offset int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Read(h, buf, offset)
}

func (d *SerialDispatcher) Write(h *ghostfs.Handle, buf []byte, offset int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Write(h, buf, offset)
}

func (d *SerialDispatcher) Opendir(path string) (*DirHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries, err := d.vol.ReadDir(path)
	if err != nil {
		return nil, err
	}
	return &DirHandle{entries: entries}, nil
}

// Readdir returns the next entry's name, and false once exhausted,
// mirroring ghostfs_next_entry's end-of-chain/ENOENT signal.
func (d *SerialDispatcher) Readdir(dh *DirHandle) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dh.pos >= len(dh.entries) {
		return "", false
	}
	name := dh.entries[dh.pos].Name
	dh.pos++
	return name, true
}

func (d *SerialDispatcher) Releasedir(dh *DirHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dh.entries = nil
}

// Chmod and Chown are no-ops: GhostFS carries no permission bits to set.
func (d *SerialDispatcher) Chmod(path string, mode os.FileMode) error { return nil }
func (d *SerialDispatcher) Chown(path string, uid, gid int) error    { return nil }

// Destroy syncs the volume, the adapter's equivalent of fuse.c's destroy()
// flushing gfs before the stegger and sampler are closed by the caller.
func (d *SerialDispatcher) Destroy() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vol.Sync()
}

func parentOf(path string) string {
	i := lastSlash(path)
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

func baseOf(path string) string {
	i := lastSlash(path)
	return path[i+1:]
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
