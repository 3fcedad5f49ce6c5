// Package journal persists an audit trail of sort runs in SQLite.
//
// Each run gets a row in runs plus one entries row per copied, clustered,
// moved or failed file. The journal is write-only from the organizer's point
// of view: sorting decisions always come from the directory tree, and the
// history commands are the only readers.
//
// The store mirrors the queue conventions used elsewhere: an embedded schema,
// a schema_version check on open, WAL mode and a bounded retry loop around
// SQLITE_BUSY.
package journal
