// Package server exposes the gallery over HTTP: status, item listing,
// reverse image search, image serving, and the authenticated admin surface
// for uploads and deletions.
package server
