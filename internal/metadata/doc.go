// Package metadata turns embedded image metadata into a single capture
// timestamp.
//
// Extractor reads raw EXIF date strings from a file into a Candidates map, and
// Resolve picks the earliest parsable value from a fixed, trust-ordered chain of
// fields. Resolve is pure so callers can feed it maps produced by any
// extractor.
package metadata
