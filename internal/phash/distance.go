package phash

import (
	"math/bits"
	"strconv"
)

// Incomparable is the distance sentinel for fingerprints that cannot be
// compared: unequal lengths, empty values, or malformed encodings.
const Incomparable = -1

// Distance returns the bitwise Hamming distance between two hex-encoded
// fingerprints, or Incomparable when the inputs are not comparable.
func Distance(a, b string) int {
	if len(a) == 0 || len(a) != len(b) {
		return Incomparable
	}
	distance := 0
	for i := 0; i < len(a); i += 16 {
		end := i + 16
		if end > len(a) {
			end = len(a)
		}
		wordA, errA := strconv.ParseUint(a[i:end], 16, 64)
		wordB, errB := strconv.ParseUint(b[i:end], 16, 64)
		if errA != nil || errB != nil {
			return Incomparable
		}
		distance += bits.OnesCount64(wordA ^ wordB)
	}
	return distance
}

// IsMatch reports whether two fingerprints are within threshold bits of each
// other. Incomparable fingerprints never match, regardless of threshold.
func IsMatch(a, b string, threshold int) bool {
	d := Distance(a, b)
	return d != Incomparable && d <= threshold
}

// Similarity converts the distance between two fingerprints into a score in
// [0, 1], where 1 means identical. The score is for ranking only; match
// decisions always go through IsMatch.
func Similarity(a, b string) float64 {
	d := Distance(a, b)
	if d == Incomparable {
		return 0
	}
	bitLen := len(a) * 4
	score := 1 - float64(d)/float64(bitLen)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
