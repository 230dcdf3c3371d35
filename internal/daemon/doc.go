// Package daemon wires the long-running services together: the HTTP server,
// the optional scraper poll loop, and the single-instance file lock.
package daemon
