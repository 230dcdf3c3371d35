// Package ingest runs the checkpointed scraper pipeline that turns feed
// messages into catalog items.
//
// Each candidate moves through fetch, fingerprint, duplicate scan, caption
// parse, and persist as one sequential unit. The feed checkpoint only
// advances once a candidate reaches a terminal state, so a crash mid-batch
// resumes exactly where it left off and re-running against an unchanged feed
// is a no-op.
package ingest
