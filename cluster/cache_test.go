package cluster

import "testing"

func newTestCache(t *testing.T, count uint16) (*Cache, *memStegger) {
	t.Helper()
	stg := newMemStegger(SuperblockPrefixSize + int64(count)*Size)
	c, err := NewCache(stg, count)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return c, stg
}

func TestCacheGetLoadsAndCaches(t *testing.T) {
	c, _ := newTestCache(t, 4)

	a, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	b, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0) again: %v", err)
	}
	if a != b {
		t.Fatalf("Get should return the same cached pointer across calls")
	}
}

func TestCacheGetOutOfRange(t *testing.T) {
	c, _ := newTestCache(t, 4)
	if _, err := c.Get(4); err == nil {
		t.Fatalf("Get(4) should fail for a 4-cluster cache")
	}
}

func TestCacheSetUsedAndNextFree(t *testing.T) {
	c, _ := newTestCache(t, 4)

	if nr, ok := c.NextFree(0); !ok || nr != 0 {
		t.Fatalf("NextFree(0) = (%d, %v), want (0, true)", nr, ok)
	}

	if err := c.SetUsed(0, true); err != nil {
		t.Fatalf("SetUsed(0, true): %v", err)
	}
	if nr, ok := c.NextFree(0); !ok || nr != 1 {
		t.Fatalf("NextFree(0) after using 0 = (%d, %v), want (1, true)", nr, ok)
	}

	if err := c.SetUsed(1, true); err != nil {
		t.Fatalf("SetUsed(1, true): %v", err)
	}
	if err := c.SetUsed(2, true); err != nil {
		t.Fatalf("SetUsed(2, true): %v", err)
	}
	if err := c.SetUsed(3, true); err != nil {
		t.Fatalf("SetUsed(3, true): %v", err)
	}
	if _, ok := c.NextFree(0); ok {
		t.Fatalf("NextFree should report exhaustion once every cluster is used")
	}
}

func TestCacheSyncPersistsAcrossReload(t *testing.T) {
	c, stg := newTestCache(t, 4)

	cl, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	copy(cl.Data[:], []byte("persisted"))
	cl.Next = 2
	cl.MarkDirty()
	if err := c.SetUsed(1, true); err != nil {
		t.Fatalf("SetUsed: %v", err)
	}

	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	reloaded, err := NewCache(stg, 4)
	if err != nil {
		t.Fatalf("NewCache reload: %v", err)
	}
	got, err := reloaded.Get(1)
	if err != nil {
		t.Fatalf("Get(1) after reload: %v", err)
	}
	if string(got.Data[:9]) != "persisted" {
		t.Fatalf("Data after reload = %q, want %q", got.Data[:9], "persisted")
	}
	if got.Next != 2 {
		t.Fatalf("Next after reload = %d, want 2", got.Next)
	}
	if !got.Used {
		t.Fatalf("Used after reload = false, want true")
	}
}
