// Package cache persists per-document embedding vectors. Keys combine
// the document title with a hash of the chunk texts, so vectors computed
// for changed content are never served for the old content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VectorCache stores the embedding vectors of one document's chunks.
type VectorCache interface {
	// Get returns the cached vectors for the key, if present and valid.
	Get(key Key) ([][]float32, bool)

	// Set stores vectors under the key.
	Set(key Key, vectors [][]float32) error

	// Delete removes the entry for the key.
	Delete(key Key) error
}

// Key identifies one document's vector set.
type Key struct {
	Title       string
	ContentHash string
}

// NewKey builds a cache key from a document title and its chunk texts.
func NewKey(title string, chunkTexts []string) Key {
	hash := sha256.Sum256([]byte(strings.Join(chunkTexts, "\x00")))
	return Key{
		Title:       title,
		ContentHash: hex.EncodeToString(hash[:]),
	}
}

// String renders the key for use in flat (memory) cache namespaces.
func (k Key) String() string {
	return k.Title + ":" + k.ContentHash
}
