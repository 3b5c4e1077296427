package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Algorithm represents the hashing algorithm to use
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	XXH64  Algorithm = "xxh64"
)

// Hasher provides extensible hashing functionality
type Hasher struct {
	algorithm Algorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm Algorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case XXH64:
		return strconv.FormatUint(xxhash.Sum64(data), 16)
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashFields computes a hash from multiple fields
// Fields are sorted and joined so that order does not matter
func (h *Hasher) HashFields(fields ...string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	return h.HashString(strings.Join(sorted, "|"))
}

// Short returns the first 12 characters of a hash for log fields
func Short(full string) string {
	if len(full) < 12 {
		return full
	}
	return full[:12]
}
