// Package naming decides destination file names and resolves collisions.
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"recsort/internal/config"
)

// DateTimeLayout renders capture times for the date-time policy.
const DateTimeLayout = "20060102_150405"

// maxAttempts bounds the collision search so a pathological directory cannot spin forever.
const maxAttempts = 1_000_000

// Namer produces destination names according to a filename policy. The
// sequential counter is shared across every call for the lifetime of the Namer.
type Namer struct {
	policy  string
	counter int
}

// NewNamer returns a Namer for policy (see config.NormalizePolicy).
func NewNamer(policy string) (*Namer, error) {
	normalized := config.NormalizePolicy(policy)
	switch normalized {
	case config.PolicyKeepOriginal, config.PolicySequential, config.PolicyDateTime:
	default:
		return nil, fmt.Errorf("naming: unknown filename policy %q", policy)
	}
	return &Namer{policy: normalized}, nil
}

// Policy returns the normalized policy.
func (n *Namer) Policy() string {
	return n.policy
}

// Counter returns the next sequential number.
func (n *Namer) Counter() int {
	return n.counter
}

// Name returns the destination base name for a source file. taken is the
// resolved capture time; the zero value means unknown. Every call advances the
// sequential counter, whatever the policy.
func (n *Namer) Name(original string, taken time.Time) string {
	seq := n.counter
	n.counter++

	ext := Extension(original)
	switch n.policy {
	case config.PolicySequential:
		return withExt(strconv.Itoa(seq), ext)
	case config.PolicyDateTime:
		if taken.IsZero() {
			return original
		}
		return withExt(taken.Format(DateTimeLayout), ext)
	default:
		return original
	}
}

// Extension returns the lower-cased extension of name without the leading
// dot, or "" when there is none. Dotfiles such as ".profile" have no
// extension.
func Extension(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base || len(ext) <= 1 {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// FreeName returns the first name in dir that does not exist yet, starting with
// name and then trying "stem(1).ext", "stem(2).ext" and so on.
func FreeName(dir, name string) (string, error) {
	stem, ext := split(name)
	candidate := name
	for i := 1; i <= maxAttempts; i++ {
		_, err := os.Lstat(filepath.Join(dir, candidate))
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("free name %s: %w", filepath.Join(dir, candidate), err)
		}
		candidate = stem + "(" + strconv.Itoa(i) + ")" + ext
	}
	return "", fmt.Errorf("free name %s: no free name after %d attempts", filepath.Join(dir, name), maxAttempts)
}

func split(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name || len(ext) <= 1 {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

func withExt(stem, ext string) string {
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}
