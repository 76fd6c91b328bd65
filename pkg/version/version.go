// Package version exposes the tunedial release version.
package version

// Current is the tunedial-go version, stamped into event-log sessions,
// status snapshots, and mDNS TXT records.
const Current = "0.4.1"
