// Package services defines shared utilities consumed by the organizer stages
// and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging
//     and the run journal.
//   - Structured error markers plus the Wrap helper that keep failure messages
//     uniform (stage: operation: message: cause) and classifiable with
//     errors.Is.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the copy, cluster, and partition phases.
package services
