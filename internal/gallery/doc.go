// Package gallery is the read/write surface over the catalog: reverse image
// search, curator uploads, listing, and deletion.
//
// Reverse search and duplicate detection share the same fingerprint scan but
// use different thresholds; search favors recall, ingestion favors precision.
package gallery
