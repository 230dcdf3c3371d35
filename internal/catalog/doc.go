// Package catalog persists the image catalog in SQLite: gallery items with
// their fingerprints, per-feed ingestion checkpoints, and admin sessions.
//
// The schema is applied through embedded, ordered migrations so any binary
// opening the database brings it up to date first.
package catalog
