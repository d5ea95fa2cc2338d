// Package ghostfs implements the hierarchical filesystem layered on top of
// a cluster cache, itself layered on a stegger, itself layered on a
// sampler. See cluster, stegger and sampler for the layers below this one.
package ghostfs

import (
	"encoding/binary"
	stderrors "errors"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/djherbis/times.v1"

	"github.com/mukadr/ghostfs/cluster"
	"github.com/mukadr/ghostfs/internal/digest"
	"github.com/mukadr/ghostfs/sampler"
	"github.com/mukadr/ghostfs/stegger"
)

const maxFileSize = 0x7FFFFFFF

// Volume is a mounted GhostFS filesystem.
type Volume struct {
	stg   stegger.Stegger
	cache *cluster.Cache
	root  dirEntry

	blooms map[uint16]*bloom.BloomFilter

	id  uuid.UUID
	log *logrus.Entry
}

// Format lays out a fresh, empty filesystem on filename's cover medium
// using the default LSB(k=1) stegger, which also determines its capacity.
// Use FormatStegger directly to format under a different stegger
// configuration (e.g. password mode, or a wider LSB k).
func Format(filename string) error {
	s, err := sampler.Open(filename)
	if err != nil {
		return newErr(WrongMedium, "format", err)
	}
	defer s.Close()

	stg, err := stegger.NewLSB(s, 1)
	if err != nil {
		return newErr(Invalid, "format", err)
	}
	defer stg.Close()

	return FormatStegger(stg)
}

// FormatStegger lays out a fresh, empty filesystem directly on stg,
// whatever its mode (LSB at any k, or password). clusterCount is derived
// from stg's capacity: floor((Capacity() - 18) / 4096), clamped to 0xFFFF.
func FormatStegger(stg stegger.Stegger) error {
	avail := stg.Capacity() - cluster.SuperblockPrefixSize
	if avail < cluster.Size {
		return newErr(NoSpace, "format", stderrors.New("cover too small for a single cluster"))
	}
	count := avail / cluster.Size
	if count > 0xFFFF {
		count = 0xFFFF
	}
	clusterCount := uint16(count)

	zero := cluster.ZeroedBytes(false, 0)
	for nr := uint16(0); nr < clusterCount; nr++ {
		if err := stg.WriteAt(zero, cluster.Offset(nr)); err != nil {
			return newErr(IO, "format", err)
		}
	}

	cache, err := cluster.NewCache(stg, clusterCount)
	if err != nil {
		return newErr(IO, "format", err)
	}
	if err := cache.SetUsed(0, true); err != nil {
		return newErr(IO, "format", err)
	}
	if err := cache.Sync(); err != nil {
		return newErr(IO, "format", err)
	}
	return nil
}

// Mount verifies stg's superblock checksum and brings up the cluster
// cache and root directory. coverPath, when non-empty, is only used to
// log the cover medium's filesystem timestamps; mounting never fails
// because of it.
func Mount(stg stegger.Stegger, coverPath string) (*Volume, error) {
	id := uuid.NewV4()
	log := logrus.WithFields(logrus.Fields{"component": "ghostfs.Volume", "mount_id": id.String()})

	if coverPath != "" {
		if t, err := times.Stat(coverPath); err != nil {
			log.WithError(err).Warn("mount: could not stat cover file timestamps")
		} else {
			log.WithFields(logrus.Fields{
				"mtime": t.ModTime(),
				"atime": t.AccessTime(),
			}).Debug("mount: cover file timestamps")
		}
	}

	storedSum := make([]byte, digest.Size)
	if err := stg.ReadAt(storedSum, 0); err != nil {
		return nil, newErr(IO, "mount", err)
	}
	header := make([]byte, 2)
	if err := stg.ReadAt(header, digest.Size); err != nil {
		return nil, newErr(IO, "mount", err)
	}
	clusterCount := binary.LittleEndian.Uint16(header)

	rootBytes := make([]byte, cluster.Size)
	if err := stg.ReadAt(rootBytes, cluster.Offset(0)); err != nil {
		return nil, newErr(IO, "mount", err)
	}

	sum := digest.Sum(header, rootBytes)
	if string(sum[:]) != string(storedSum) {
		log.Debug("mount: checksum mismatch, not a ghostfs volume under this stegger")
		return nil, newErr(WrongMedium, "mount", nil)
	}

	cache, err := cluster.NewCache(stg, clusterCount)
	if err != nil {
		return nil, newErr(IO, "mount", err)
	}

	v := &Volume{
		stg:    stg,
		cache:  cache,
		root:   dirEntry{filename: "/", size: dirBit, cluster: 0},
		blooms: make(map[uint16]*bloom.BloomFilter),
		id:     id,
		log:    log,
	}

	if _, err := v.ensureBloom(0); err != nil {
		return nil, newErr(IO, "mount", err)
	}

	log.WithField("cluster_count", clusterCount).Debug("mount: succeeded")
	return v, nil
}

// TryMountLSB tries LSB k = 1..8 in ascending order against s, returning
// the first mounted Volume (and the stegger that mounted it) whose
// checksum verifies.
func TryMountLSB(s sampler.Sampler, coverPath string) (*Volume, stegger.Stegger, error) {
	var lastErr error
	for k := 1; k <= 8; k++ {
		stg, err := stegger.NewLSB(s, k)
		if err != nil {
			continue
		}
		v, err := Mount(stg, coverPath)
		if err == nil {
			return v, stg, nil
		}
		lastErr = err
		stg.Close()
	}
	if lastErr == nil {
		lastErr = newErr(WrongMedium, "try-mount-lsb", nil)
	}
	return nil, nil, lastErr
}

// ClusterCount returns the number of clusters in the mounted volume.
func (v *Volume) ClusterCount() uint16 {
	return v.cache.ClusterCount()
}

// Sync flushes all dirty clusters (and the superblock) to the stegger.
func (v *Volume) Sync() (err error) {
	defer v.logOp("sync", "", &err)
	return v.cache.Sync()
}

// Unmount syncs, then closes the stegger. The sampler, if the caller
// opened one separately, is the caller's to close.
func (v *Volume) Unmount() (err error) {
	defer v.logOp("unmount", "", &err)
	if err = v.cache.Sync(); err != nil {
		return errors.Wrap(err, "ghostfs: unmount: sync")
	}
	if err = v.stg.Close(); err != nil {
		return newErr(IO, "unmount", err)
	}
	return nil
}

func (v *Volume) logOp(op, path string, errp *error) {
	fields := logrus.Fields{"op": op, "mount_id": v.id.String()}
	if path != "" {
		fields["path"] = path
	}
	if errp != nil && *errp != nil {
		v.log.WithFields(fields).WithError(*errp).Warn("ghostfs operation failed")
	} else {
		v.log.WithFields(fields).Debug("ghostfs operation succeeded")
	}
}

// --- path resolution -------------------------------------------------

func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, newErr(Invalid, "path", stderrors.New("path must be absolute"))
	}
	var comps []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			comps = append(comps, c)
		}
	}
	return comps, nil
}

func splitParent(path string) (parent string, name string, err error) {
	comps, err := splitPath(path)
	if err != nil {
		return "", "", err
	}
	if len(comps) == 0 {
		return "", "", newErr(Invalid, "path", stderrors.New("cannot use root as a file name"))
	}
	name = comps[len(comps)-1]
	parent = "/" + strings.Join(comps[:len(comps)-1], "/")
	return parent, name, nil
}

// lookup resolves path against the mounted tree. With skipLast it stops
// at, and returns, the parent directory of path's final component
// (which need not exist yet).
func (v *Volume) lookup(path string, skipLast bool) (dirEntry, entryRef, error) {
	comps, err := splitPath(path)
	if err != nil {
		return dirEntry{}, entryRef{}, err
	}

	current := v.root
	var currentRef entryRef

	if len(comps) == 0 {
		return current, currentRef, nil
	}

	last := len(comps) - 1
	for i, name := range comps {
		if !current.isDir() {
			return dirEntry{}, entryRef{}, newErr(NotADirectory, "lookup", nil)
		}
		if skipLast && i == last {
			return current, currentRef, nil
		}
		entry, ref, err := v.findInDir(current.cluster, name)
		if err != nil {
			return dirEntry{}, entryRef{}, err
		}
		current, currentRef = entry, ref
	}
	return current, currentRef, nil
}

func (v *Volume) findInDir(head uint16, name string) (dirEntry, entryRef, error) {
	bf, err := v.ensureBloom(head)
	if err != nil {
		return dirEntry{}, entryRef{}, err
	}
	if !bf.TestString(name) {
		return dirEntry{}, entryRef{}, newErr(NoSuchEntry, "lookup", nil)
	}

	it, err := v.iterDir(head)
	if err != nil {
		return dirEntry{}, entryRef{}, err
	}
	for {
		e := it.entry()
		if e.used() && e.filename == name {
			return e, it.ref(), nil
		}
		if err := it.next(); err != nil {
			if stderrors.Is(err, ErrEndOfChain) {
				return dirEntry{}, entryRef{}, newErr(NoSuchEntry, "lookup", nil)
			}
			return dirEntry{}, entryRef{}, err
		}
	}
}

// ensureBloom returns the (lazily built, memoized) bloom filter over the
// names present in the directory chain rooted at head.
func (v *Volume) ensureBloom(head uint16) (*bloom.BloomFilter, error) {
	if bf, ok := v.blooms[head]; ok {
		return bf, nil
	}
	bf := bloom.NewWithEstimates(4096, 0.01)
	it, err := v.iterDir(head)
	if err != nil {
		return nil, err
	}
	for {
		if e := it.entry(); e.used() {
			bf.AddString(e.filename)
		}
		if err := it.next(); err != nil {
			if stderrors.Is(err, ErrEndOfChain) {
				break
			}
			return nil, err
		}
	}
	v.blooms[head] = bf
	return bf, nil
}

func (v *Volume) invalidateBloom(head uint16) {
	delete(v.blooms, head)
}
