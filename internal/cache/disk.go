package cache

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk layout: <dir>/<title>/embeddings.bin, one file per document.
// File format: magic, format version, 32-byte content hash, vector
// count, dimension, then count*dim little-endian float32 values.
const (
	diskMagic       = "LSEM"
	diskFormatV1    = 1
	vectorsFileName = "embeddings.bin"
)

// DiskCache persists vector sets under a data directory. Single-writer
// assumption: the pipeline is the only process touching the directory.
type DiskCache struct {
	dir string
}

// NewDiskCache creates a disk-backed vector cache rooted at dir.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

// Get loads the cached vectors for the key. A file whose stored content
// hash differs from the key's is a miss, never an error.
func (c *DiskCache) Get(key Key) ([][]float32, bool) {
	f, err := os.Open(c.path(key))
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	vectors, hash, err := readVectors(f)
	if err != nil || hash != key.ContentHash {
		return nil, false
	}
	return vectors, true
}

// Set stores vectors under the key, creating the document directory.
func (c *DiskCache) Set(key Key, vectors [][]float32) error {
	dir := filepath.Dir(c.path(key))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	f, err := os.Create(c.path(key))
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeVectors(f, vectors, key.ContentHash); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Delete removes the document's cache file.
func (c *DiskCache) Delete(key Key) error {
	return os.Remove(c.path(key))
}

// path generates the file path for a cache key.
func (c *DiskCache) path(key Key) string {
	return filepath.Join(c.dir, sanitizeTitle(key.Title), vectorsFileName)
}

// sanitizeTitle makes a document title safe for use as a directory name.
func sanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		default:
			return r
		}
	}, title)
}

func writeVectors(w io.Writer, vectors [][]float32, contentHash string) error {
	if _, err := w.Write([]byte(diskMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(diskFormatV1)); err != nil {
		return err
	}

	var hash [32]byte
	decoded, err := hex.DecodeString(contentHash)
	if err != nil {
		return fmt.Errorf("decode content hash: %w", err)
	}
	copy(hash[:], decoded)
	if _, err := w.Write(hash[:]); err != nil {
		return err
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dim)); err != nil {
		return err
	}

	for _, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("ragged vector set: %d != %d", len(vec), dim)
		}
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return err
		}
	}
	return nil
}

func readVectors(r io.Reader) ([][]float32, string, error) {
	magic := make([]byte, len(diskMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, "", err
	}
	if string(magic) != diskMagic {
		return nil, "", fmt.Errorf("not a vector cache file")
	}

	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, "", err
	}
	if version != diskFormatV1 {
		return nil, "", fmt.Errorf("unsupported format version %d", version)
	}

	hash := make([]byte, 32)
	if _, err := io.ReadFull(r, hash); err != nil {
		return nil, "", err
	}

	var count, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, "", err
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, "", err
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vectors[i]); err != nil {
			return nil, "", err
		}
	}

	return vectors, hex.EncodeToString(hash), nil
}
