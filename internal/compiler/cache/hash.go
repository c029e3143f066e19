// Package cache stores parsed interface documents keyed by a hash of
// their source so unchanged files are not parsed twice. Entries live in
// process memory and, optionally, in a shared Store backed by SQLite,
// Postgres or Redis.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/rclgo/msgidl/compiler/ast"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashString computes a SHA-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

// Key derives the cache key of a document from its package, kind, name
// and text
func (fh *FileHasher) Key(pkg string, kind ast.Kind, name, content string) string {
	hasher := sha256.New()
	for _, part := range []string{pkg, string(kind), name} {
		io.WriteString(hasher, part)
		hasher.Write([]byte{0})
	}
	io.WriteString(hasher, content)
	return hex.EncodeToString(hasher.Sum(nil))
}
