// Package hash implements the block hashing primitive: SHA-256 over the
// canonical textual encoding of a block's (id, data, prev, nonce) fields,
// and the suffix check mining targets.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash computes the lowercase hex SHA-256 digest of the canonical
// concatenation of id, data, prev, and nonce, in that fixed order. It is a
// pure function: identical inputs always yield an identical digest.
func Hash(id uint64, data, prev string, nonce uint64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(id, 10))
	b.WriteString(data)
	b.WriteString(prev)
	b.WriteString(strconv.FormatUint(nonce, 10))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Satisfies reports whether hash ends with suffix, case-insensitively. An
// empty suffix is trivially satisfied by any hash.
func Satisfies(hash, suffix string) bool {
	if suffix == "" {
		return true
	}
	if len(hash) < len(suffix) {
		return false
	}
	return strings.EqualFold(hash[len(hash)-len(suffix):], suffix)
}
