// Package preflight provides readiness checks for the filesystem paths a sort
// run depends on.
//
// The organizer calls RunAll before touching any file: a missing source, a
// read-only destination or an unusable state directory is fatal, and failing
// fast avoids leaving a half-copied destination behind. The CLI "config
// validate" command uses the same checks to display path health.
package preflight
