// Package organizer drives a full sort run: it copies a recovery dump into
// extension buckets, clusters image buckets into year (or year/month) folders
// by capture event, and finally splits any over-full directory into numbered
// partitions.
//
// Per-file problems never abort a run. They are collected as Failures on the
// Report, logged with event_type/error_hint/impact fields, and written to the
// run journal when one is configured. Only configuration, preflight and lock
// errors are fatal, and those are raised before any file is touched.
//
// Progress is published through an Observer so the CLI can choose between a
// terminal progress bar and sampled log lines.
package organizer
