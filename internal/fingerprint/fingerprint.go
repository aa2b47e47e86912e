// Package fingerprint computes the two locality-sensitive fingerprints the
// similarity engine is built on: a 64-bit SimHash over word shingles, and a
// 128-slot MinHash signature over a token set.
package fingerprint

import (
	"hash/fnv"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// MinHashSlots is the fixed signature length used throughout the engine.
const MinHashSlots = 128

// SimHash computes a 64-bit SimHash over 3-word shingles of raw
// (non-stemmed) whitespace-split tokens. Empty or fewer-than-3-word inputs
// yield an all-zero fingerprint.
func SimHash(content string) uint64 {
	words := strings.Fields(content)
	if len(words) < 3 {
		return 0
	}

	var counters [64]int32
	for i := 0; i+3 <= len(words); i++ {
		shingle := words[i] + " " + words[i+1] + " " + words[i+2]
		h := hashString(shingle)
		for bit := 0; bit < 64; bit++ {
			if (h>>uint(bit))&1 == 1 {
				counters[bit]++
			} else {
				counters[bit]--
			}
		}
	}

	var fp uint64
	for bit := 0; bit < 64; bit++ {
		if counters[bit] > 0 {
			fp |= 1 << uint(bit)
		}
	}
	return fp
}

// HammingDistance counts the differing bits between two SimHash values.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// SimHashSimilarity converts Hamming distance into a similarity in [0, 1].
func SimHashSimilarity(a, b uint64) float64 {
	return 1.0 - float64(HammingDistance(a, b))/64.0
}

// MinHash is a length-128 signature over a set of stemmed tokens.
type MinHash [MinHashSlots]uint64

// ComputeMinHash builds a MinHash signature over a token set. An empty set
// yields the all-maximum signature (similarity 0 against any signature).
func ComputeMinHash(tokens []string) MinHash {
	var sig MinHash
	for i := range sig {
		sig[i] = math.MaxUint64
	}
	for _, t := range tokens {
		for slot := 0; slot < MinHashSlots; slot++ {
			h := seededHash(t, slot)
			if h < sig[slot] {
				sig[slot] = h
			}
		}
	}
	return sig
}

// Similarity estimates Jaccard similarity as the fraction of equal slots.
// An empty signature (no tokens ever folded in) has similarity 0 against
// any signature, including another empty one.
func (m MinHash) Similarity(other MinHash) float64 {
	if m.isEmpty() || other.isEmpty() {
		return 0.0
	}
	equal := 0
	for i := range m {
		if m[i] == other[i] {
			equal++
		}
	}
	return float64(equal) / float64(MinHashSlots)
}

func (m MinHash) isEmpty() bool {
	for _, v := range m {
		if v != math.MaxUint64 {
			return false
		}
	}
	return true
}

// JaccardSimilarity computes exact set Jaccard similarity over two string
// sets represented as maps (membership only).
func JaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// seededHash deterministically derives a per-slot hash for a token: the
// slot index is mixed into the hashed bytes so that each of the 128 slots
// is an independent hash function of the token.
func seededHash(token string, slot int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.Itoa(slot)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(token))
	return h.Sum64()
}
