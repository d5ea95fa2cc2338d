package cluster

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mukadr/ghostfs/internal/digest"
	"github.com/mukadr/ghostfs/stegger"
)

// ErrOutOfRange is returned when a cluster number is not below ClusterCount.
var ErrOutOfRange = errors.New("cluster: out of range")

// Cache is the lazy, write-back cluster cache. Clusters are loaded into
// memory on first use via Get and written through to the stegger only if
// dirty, in ascending cluster number order, with cluster 0 always first.
type Cache struct {
	stg          stegger.Stegger
	clusterCount uint16
	slots        []*Cluster

	// used mirrors each cluster's on-disk "used" byte so that free-cluster
	// search (cluster.Cache.NextFree) can jump straight to a candidate
	// instead of touching the stegger for every index.
	used *bitset.BitSet

	log *logrus.Entry
}

// NewCache builds a cache over stg for clusterCount clusters, eagerly
// scanning each cluster's single "used" byte (not its full 4096 bytes) to
// seed the free/used bitset mirror.
func NewCache(stg stegger.Stegger, clusterCount uint16) (*Cache, error) {
	c := &Cache{
		stg:          stg,
		clusterCount: clusterCount,
		slots:        make([]*Cluster, clusterCount),
		used:         bitset.New(uint(clusterCount)),
		log:          logrus.WithField("component", "cluster.Cache"),
	}

	used := make([]byte, 1)
	for nr := uint16(0); nr < clusterCount; nr++ {
		if err := stg.ReadAt(used, Offset(nr)+DataSize+2); err != nil {
			return nil, errors.Wrapf(err, "cluster: reading used byte for cluster %d", nr)
		}
		if used[0] != 0 {
			c.used.Set(uint(nr))
		}
	}

	return c, nil
}

// ClusterCount returns the number of clusters this cache was built for.
func (c *Cache) ClusterCount() uint16 {
	return c.clusterCount
}

// Get returns the cluster with the given number, loading it from the
// stegger on first access.
func (c *Cache) Get(nr uint16) (*Cluster, error) {
	if nr >= c.clusterCount {
		return nil, errors.Wrapf(ErrOutOfRange, "cluster: %d >= %d", nr, c.clusterCount)
	}
	if c.slots[nr] != nil {
		return c.slots[nr], nil
	}

	buf := make([]byte, Size)
	if err := c.stg.ReadAt(buf, Offset(nr)); err != nil {
		return nil, errors.Wrapf(err, "cluster: reading cluster %d", nr)
	}
	cl, err := clusterFromBytes(buf)
	if err != nil {
		return nil, err
	}
	c.slots[nr] = cl
	if cl.Used {
		c.used.Set(uint(nr))
	} else {
		c.used.Clear(uint(nr))
	}
	return cl, nil
}

// SetUsed sets the used flag of cluster nr, keeps the bitset mirror in
// sync, and marks the cluster dirty.
func (c *Cache) SetUsed(nr uint16, used bool) error {
	cl, err := c.Get(nr)
	if err != nil {
		return err
	}
	cl.Used = used
	cl.MarkDirty()
	if used {
		c.used.Set(uint(nr))
	} else {
		c.used.Clear(uint(nr))
	}
	return nil
}

// NextFree returns the lowest free cluster number >= from, and false if
// none exists below ClusterCount.
func (c *Cache) NextFree(from uint16) (uint16, bool) {
	i, ok := c.used.NextClear(uint(from))
	if !ok || i >= uint(c.clusterCount) {
		return 0, false
	}
	return uint16(i), true
}

// Sync writes cluster 0 (and the header/MD5) first, then every other
// present, dirty cluster in ascending order, clearing dirty as it goes. It
// stops and returns the first failing cluster's error.
func (c *Cache) Sync() error {
	c.log.Debug("sync: writing header and dirty clusters")

	root, err := c.Get(0)
	if err != nil {
		return err
	}
	if err := c.writeHeader(root); err != nil {
		return errors.Wrap(err, "cluster: writing header")
	}
	root.dirty = false

	for nr := uint16(1); nr < c.clusterCount; nr++ {
		cl := c.slots[nr]
		if cl == nil || !cl.dirty {
			continue
		}
		if err := c.stg.WriteAt(cl.toBytes(), Offset(nr)); err != nil {
			return errors.Wrapf(err, "cluster: writing cluster %d", nr)
		}
		cl.dirty = false
	}

	return nil
}

// writeHeader computes MD5(header || cluster 0) and writes the MD5, the
// header (cluster_count) and cluster 0 to the stegger, in that order.
func (c *Cache) writeHeader(root *Cluster) error {
	header := make([]byte, headerFieldSize)
	binary.LittleEndian.PutUint16(header, c.clusterCount)

	rootBytes := root.toBytes()
	sum := digest.Sum(header, rootBytes)

	if err := c.stg.WriteAt(sum[:], 0); err != nil {
		return errors.Wrap(err, "cluster: writing md5")
	}
	if err := c.stg.WriteAt(header, digestSize); err != nil {
		return errors.Wrap(err, "cluster: writing cluster_count")
	}
	if err := c.stg.WriteAt(rootBytes, Offset(0)); err != nil {
		return errors.Wrap(err, "cluster: writing cluster 0")
	}
	return nil
}
