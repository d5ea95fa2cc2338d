package main

import (
	"github.com/mukadr/ghostfs/ghostfs"
	"github.com/mukadr/ghostfs/sampler"
)

// withVolume opens cover's sampler, mounts the GhostFS volume hidden in
// it (probing LSB k=1..8), runs fn, then syncs and unmounts.
func withVolume(cover string, fn func(v *ghostfs.Volume) error) error {
	s, err := sampler.Open(cover)
	if err != nil {
		return err
	}
	defer s.Close()

	v, _, err := ghostfs.TryMountLSB(s, cover)
	if err != nil {
		return err
	}
	defer v.Unmount()

	return fn(v)
}
