// Package caption extracts a (subject, group) pair from free-text image
// captions.
//
// Captions arrive in wildly inconsistent human-authored formats, so parsing
// is an ordered chain of extraction strategies with a catch-all at the end.
// Parse is total: it never fails and always returns two non-empty strings,
// falling back to "Unknown" for anything it cannot make sense of.
package caption
