package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// PNG returns deterministic PNG bytes for tests. The same seed always yields
// byte-identical output; different seeds yield visually distinct patterns.
func PNG(t testing.TB, seed int) []byte {
	t.Helper()

	const dim = 64
	img := image.NewRGBA(image.Rect(0, 0, dim, dim))
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			v := (x*(seed+1) + y*(seed+3)) % 256
			img.Set(x, y, color.RGBA{
				R: uint8(v),
				G: uint8((v + 85) % 256),
				B: uint8((v + 170) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}
