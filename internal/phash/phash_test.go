package phash_test

import (
	"errors"
	"strings"
	"testing"

	"chara/internal/phash"
	"chara/internal/testsupport"
)

func TestComputeIsDeterministic(t *testing.T) {
	hasher, err := phash.NewHasher(8)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	data := testsupport.PNG(t, 1)
	first, err := hasher.Compute(data)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := hasher.Compute(data)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if first != second {
		t.Fatalf("identical input produced different fingerprints: %q vs %q", first, second)
	}
	if len(first) != hasher.HexLen() {
		t.Fatalf("expected %d hex chars, got %d (%q)", hasher.HexLen(), len(first), first)
	}
	if first != strings.ToLower(first) {
		t.Fatalf("fingerprint not canonical lowercase: %q", first)
	}
	if phash.Distance(first, second) != 0 {
		t.Fatalf("expected zero self-distance, got %d", phash.Distance(first, second))
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	hasher, err := phash.NewHasher(8)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", testsupport.PNG(t, 1)[:20]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := hasher.Compute(tc.data); !errors.Is(err, phash.ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestNewHasherRejectsUnsupportedSize(t *testing.T) {
	for _, size := range []int{0, 4, 7, 32} {
		if _, err := phash.NewHasher(size); err == nil {
			t.Fatalf("expected error for size %d", size)
		}
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "00000000000000ff", "00000000000000ff", 0},
		{"one bit", "0000000000000000", "0000000000000001", 1},
		{"full word", "0000000000000000", "ffffffffffffffff", 64},
		{"mixed", "00000000000000f0", "000000000000000f", 8},
		{"long identical", strings.Repeat("a5", 32), strings.Repeat("a5", 32), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := phash.Distance(tc.a, tc.b); got != tc.want {
				t.Fatalf("Distance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := phash.Distance(tc.b, tc.a); got != tc.want {
				t.Fatalf("distance not symmetric: %d", got)
			}
		})
	}
}

func TestDistanceIncomparable(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"both empty", "", ""},
		{"one empty", "00000000000000ff", ""},
		{"length mismatch", "00000000000000ff", strings.Repeat("0", 64)},
		{"malformed hex", "zzzzzzzzzzzzzzzz", "00000000000000ff"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := phash.Distance(tc.a, tc.b); got != phash.Incomparable {
				t.Fatalf("expected Incomparable, got %d", got)
			}
			if phash.IsMatch(tc.a, tc.b, 1<<30) {
				t.Fatal("incomparable fingerprints must never match")
			}
		})
	}
}

func TestIsMatchThreshold(t *testing.T) {
	a := "0000000000000000"
	b := "0000000000000007" // distance 3

	if !phash.IsMatch(a, b, 3) {
		t.Fatal("expected match at threshold boundary")
	}
	if phash.IsMatch(a, b, 2) {
		t.Fatal("expected non-match below threshold")
	}
}

func TestSimilarity(t *testing.T) {
	a := "0000000000000000"
	if got := phash.Similarity(a, a); got != 1.0 {
		t.Fatalf("self similarity = %f, want 1.0", got)
	}
	b := "ffffffffffffffff"
	if got := phash.Similarity(a, b); got != 0.0 {
		t.Fatalf("opposite similarity = %f, want 0.0", got)
	}
	c := "00000000000000ff" // distance 8 of 64 bits
	if got := phash.Similarity(a, c); got != 1-8.0/64 {
		t.Fatalf("similarity = %f, want %f", got, 1-8.0/64)
	}
	if got := phash.Similarity(a, ""); got != 0.0 {
		t.Fatalf("incomparable similarity = %f, want 0.0", got)
	}
}
