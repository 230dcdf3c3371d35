// Command chara is the gallery CLI. It operates directly on the catalog
// database and image store, so most commands work whether or not charad is
// running; only ingestion holds the daemon lock.
package main
