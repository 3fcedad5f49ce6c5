package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSort()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSort() {
	c.Sort.FilenamePolicy = NormalizePolicy(c.Sort.FilenamePolicy)

	exts := make([]string, 0, len(c.Sort.ImageExtensions))
	seen := make(map[string]struct{}, len(c.Sort.ImageExtensions))
	for _, ext := range c.Sort.ImageExtensions {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Sort.ImageExtensions = exts

	c.Sort.NoExtensionDir = strings.TrimSpace(c.Sort.NoExtensionDir)
	if c.Sort.NoExtensionDir == "" {
		c.Sort.NoExtensionDir = defaultNoExtensionDir
	}
}

// NormalizePolicy maps user-facing aliases onto the canonical policy names.
// Unknown values are returned lower-cased so Validate can reject them.
func NormalizePolicy(policy string) string {
	policy = strings.ToLower(strings.TrimSpace(policy))
	switch policy {
	case "":
		return defaultFilenamePolicy
	case "keep", "original", "keep_original", PolicyKeepOriginal:
		return PolicyKeepOriginal
	case "seq", PolicySequential:
		return PolicySequential
	case "datetime", "date_time", PolicyDateTime:
		return PolicyDateTime
	default:
		return policy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
