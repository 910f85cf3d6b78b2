package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleVectors() [][]float32 {
	return [][]float32{
		{0.1, 0.2, 0.3},
		{-1.5, 0, 2.25},
	}
}

func TestNewKeyChangesWithContent(t *testing.T) {
	a := NewKey("Doc", []string{"one", "two"})
	b := NewKey("Doc", []string{"one", "three"})

	if a.Title != "Doc" || b.Title != "Doc" {
		t.Fatalf("titles not preserved: %q %q", a.Title, b.Title)
	}
	if a.ContentHash == b.ContentHash {
		t.Error("different chunk texts produced the same content hash")
	}

	again := NewKey("Doc", []string{"one", "two"})
	if again.ContentHash != a.ContentHash {
		t.Error("same chunk texts produced different content hashes")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	key := NewKey("Water Quality Act", []string{"chunk a", "chunk b"})
	want := sampleVectors()

	if err := c.Set(key, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found := c.Get(key)
	if !found {
		t.Fatal("expected a hit after Set")
	}
	if len(got) != len(want) {
		t.Fatalf("vector count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("vectors[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestDiskCacheStaleContentIsMiss(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	old := NewKey("Doc", []string{"original text"})
	if err := c.Set(old, sampleVectors()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Same title, different content: the stored file must not be served.
	fresh := NewKey("Doc", []string{"revised text"})
	if _, found := c.Get(fresh); found {
		t.Error("stale vectors served for changed content")
	}
}

func TestDiskCacheCorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir)
	key := NewKey("Doc", []string{"text"})

	path := filepath.Join(dir, "Doc", vectorsFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a vector file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, found := c.Get(key); found {
		t.Error("corrupt file reported as hit")
	}
}

func TestDiskCacheSanitizesTitles(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	key := NewKey("H.R. 1319/117th", []string{"text"})

	if err := c.Set(key, sampleVectors()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get(key); !found {
		t.Error("title with path separator not retrievable")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := NewKey("Doc", []string{"text"})

	// Seed the disk layer only.
	if err := NewDiskCache(dir).Set(key, sampleVectors()); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir)
	if _, found := c.Get(key); !found {
		t.Fatal("expected disk hit through layered cache")
	}

	// Remove the disk file; a promoted entry must still hit.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get(key); !found {
		t.Error("expected memory hit after promotion")
	}
}

func TestLayeredCacheDelete(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir())
	key := NewKey("Doc", []string{"text"})

	if err := c.Set(key, sampleVectors()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = c.Delete(key)

	if _, found := c.Get(key); found {
		t.Error("entry still present after Delete")
	}
}
