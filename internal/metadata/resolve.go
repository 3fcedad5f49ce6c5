package metadata

import (
	"strings"
	"time"
)

// Canonical field names recognised by Resolve, ordered by trust.
const (
	FieldDateTimeOriginal  = "DateTimeOriginal"
	FieldDateTimeDigitized = "DateTimeDigitized"
	FieldDateTime          = "DateTime"
)

// DateLayout is the EXIF wall-clock layout (YYYY:MM:DD HH:MM:SS).
const DateLayout = "2006:01:02 15:04:05"

// Candidates maps metadata field names to raw date strings.
type Candidates map[string]string

// Resolution is the outcome of Resolve.
type Resolution struct {
	Time      time.Time
	Field     string
	OK        bool
	Malformed []string
}

type fieldSpec struct {
	name    string
	aliases []string
}

var fieldChain = []fieldSpec{
	{name: FieldDateTimeOriginal, aliases: []string{"EXIF DateTimeOriginal"}},
	{name: FieldDateTimeDigitized, aliases: []string{"EXIF DateTimeDigitized"}},
	{name: FieldDateTime, aliases: []string{"Image DateTime"}},
}

// Fields returns the canonical field chain in trust order.
func Fields() []string {
	out := make([]string, 0, len(fieldChain))
	for _, spec := range fieldChain {
		out = append(out, spec.name)
	}
	return out
}

// Resolve returns the earliest timestamp among the recognised fields. Ties keep
// the field that appears first in the chain. Unknown keys are ignored.
// 0001:01:01 00:00:00 parses but collides with the zero time, so it counts as
// malformed.
func Resolve(c Candidates) Resolution {
	var res Resolution
	for _, spec := range fieldChain {
		raw, ok := lookup(c, spec)
		if !ok {
			continue
		}
		ts, err := ParseDate(raw)
		if err != nil || ts.IsZero() {
			res.Malformed = append(res.Malformed, spec.name)
			continue
		}
		if !res.OK || ts.Before(res.Time) {
			res.Time = ts
			res.Field = spec.name
			res.OK = true
		}
	}
	return res
}

// ParseDate parses a raw EXIF date string as a naive UTC wall-clock time.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, cleanValue(raw), time.UTC)
}

func lookup(c Candidates, spec fieldSpec) (string, bool) {
	if c == nil {
		return "", false
	}
	if v, ok := c[spec.name]; ok {
		return v, true
	}
	for _, alias := range spec.aliases {
		if v, ok := c[alias]; ok {
			return v, true
		}
	}
	return "", false
}

func cleanValue(raw string) string {
	return strings.TrimSpace(strings.Trim(raw, "\x00"))
}
