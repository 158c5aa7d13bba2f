// Package hashutil computes content hashes used as a non-authoritative
// skip-hint when the crawler fetches a URL whose document already has a
// hash stored in the database (from this run or an earlier one).
package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashAlgo selects the digest algorithm used by HashBytes.
type HashAlgo int

const (
	// AlgoBlake3 is the default: fast, wide-output, suitable for
	// content-equality checks rather than security.
	AlgoBlake3 HashAlgo = iota
)

// HashBytes returns the lowercase hex digest of b under algo.
func HashBytes(algo HashAlgo, b []byte) string {
	switch algo {
	case AlgoBlake3:
		sum := blake3.Sum256(b)
		return hex.EncodeToString(sum[:])
	default:
		sum := blake3.Sum256(b)
		return hex.EncodeToString(sum[:])
	}
}
