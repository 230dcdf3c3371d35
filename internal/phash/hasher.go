package phash

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	// Register decoders for the common feed formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/corona10/goimagehash"
	"golang.org/x/image/draw"
)

// ErrDecode reports image bytes that could not be decoded.
var ErrDecode = errors.New("image decode failed")

// normalizedDim is the square edge length images are scaled to before
// hashing. Fixed-size smoothing resampling is what keeps fingerprints stable
// under recompression and minor crops.
const normalizedDim = 256

// Hasher derives fingerprints of a fixed configuration.
type Hasher struct {
	size int
}

// NewHasher constructs a Hasher with a square hash dimension. Supported sizes
// are 8 (64-bit fingerprint) and 16 (256-bit fingerprint).
func NewHasher(size int) (*Hasher, error) {
	switch size {
	case 8, 16:
		return &Hasher{size: size}, nil
	default:
		return nil, fmt.Errorf("unsupported hash size %d", size)
	}
}

// Bits returns the fingerprint length in bits.
func (h *Hasher) Bits() int {
	return h.size * h.size
}

// HexLen returns the canonical encoded fingerprint length in hex characters.
func (h *Hasher) HexLen() int {
	return h.Bits() / 4
}

// Compute derives the fingerprint for raw image bytes. It returns an error
// wrapping ErrDecode for empty, corrupt, or unsupported input; callers must
// treat that as "no fingerprint available", never as a zero distance.
func (h *Hasher) Compute(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrDecode)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	normalized := normalize(src)
	hash, err := goimagehash.ExtPerceptionHash(normalized, h.size, h.size)
	if err != nil {
		return "", fmt.Errorf("perception hash (%s image): %w", format, err)
	}
	return encodeWords(hash.GetHash(), h.HexLen()), nil
}

// normalize converts to a canonical RGBA model at a fixed square dimension
// using Catmull-Rom resampling.
func normalize(src image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, normalizedDim, normalizedDim))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func encodeWords(words []uint64, hexLen int) string {
	var b strings.Builder
	b.Grow(len(words) * 16)
	for _, word := range words {
		fmt.Fprintf(&b, "%016x", word)
	}
	encoded := b.String()
	// The hash library emits whole 64-bit words; the canonical encoding is
	// exactly bits/4 characters.
	if len(encoded) > hexLen {
		encoded = encoded[len(encoded)-hexLen:]
	}
	return encoded
}
