// Package feed defines the upstream message feed the scraper ingests from.
//
// A Source lists candidate messages strictly after a checkpoint id, in
// ascending id order. Listing failures are fatal for the batch and surface as
// ErrUnavailable; fetching an individual image can fail independently without
// condemning the rest of the batch.
package feed
