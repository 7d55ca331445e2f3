// Package subtle provides the low-level Crypto-PAn primitive working on raw keys
// and 128-bit integers.
package subtle

import (
	"lukechampine.com/uint128"
)

// maskEntry holds the precomputed values for one prefix length p: mask has the
// top p bits set and maskedPad is the pad with those bits cleared.
type maskEntry struct {
	mask      uint128.Uint128
	maskedPad uint128.Uint128
}

// prefixMask returns a 128-bit value with the top p bits set.
func prefixMask(p int) uint128.Uint128 {
	if p <= 0 {
		return uint128.Zero
	}
	return uint128.Max.Lsh(uint(128 - p))
}

// buildMaskTable computes the mask table for every prefix length in [0, 128).
func buildMaskTable(pad uint128.Uint128) [128]maskEntry {
	var table [128]maskEntry
	for p := range table {
		mask := prefixMask(p)
		table[p] = maskEntry{
			mask:      mask,
			maskedPad: pad.And(mask.Xor(uint128.Max)),
		}
	}
	return table
}

// candidate keeps the first p bits of aligned and fills the remaining bits
// with the pad.
func (e maskEntry) candidate(aligned uint128.Uint128) uint128.Uint128 {
	return aligned.And(e.mask).Or(e.maskedPad)
}
