// Package phash computes perceptual image fingerprints and compares them.
//
// A fingerprint is a DCT-based perceptual hash encoded as fixed-width
// lowercase hex. Fingerprints of the same configuration are directly
// comparable by Hamming distance; comparing fingerprints of different
// lengths yields the Incomparable sentinel, never an error.
//
// Hashing and comparison are pure functions of their inputs and safe for
// concurrent use.
package phash
