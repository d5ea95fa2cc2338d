package ghostfs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mukadr/ghostfs/cluster"
	"github.com/mukadr/ghostfs/stegger"
)

func TestPasswordModeRoundTrip(t *testing.T) {
	// Capacity (bytes) = sampleCount / 8 for password mode; comfortably
	// cover the superblock plus a handful of data clusters.
	const clusterCount = 4
	sampleCount := (int(cluster.SuperblockPrefixSize)+clusterCount*cluster.Size)*8 + 64
	s := newMemSampler(sampleCount, 8)

	stg := stegger.NewPassword(s, "secret")
	if err := FormatStegger(stg); err != nil {
		t.Fatalf("FormatStegger: %v", err)
	}

	v, err := Mount(stg, "")
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if err := v.Create("/p"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	h, err := v.Open("/p")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := v.Truncate("/p", int64(len(payload))); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if _, err := v.Write(h, payload, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	h.Release()
	if err := v.Unmount(); err != nil {
		t.Fatalf("Unmount: %v", err)
	}

	// Remount with the same password and read back identical bytes.
	stg2 := stegger.NewPassword(s, "secret")
	v2, err := Mount(stg2, "")
	if err != nil {
		t.Fatalf("Mount with correct password: %v", err)
	}
	h2, err := v2.Open("/p")
	if err != nil {
		t.Fatalf("Open after remount: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := v2.Read(h2, got, 0); err != nil {
		t.Fatalf("Read after remount: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("remount read = %v, want %v", got, payload)
	}

	// Remount with the wrong password must fail the checksum.
	stg3 := stegger.NewPassword(s, "wrong")
	if _, err := Mount(stg3, ""); !errors.Is(err, ErrWrongMedium) {
		t.Fatalf("Mount with wrong password = %v, want ErrWrongMedium", err)
	}
}
