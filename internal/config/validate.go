package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSort(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateSort() error {
	if c.Sort.MaxFilesPerDirectory < 1 {
		return fmt.Errorf("sort.max_files_per_directory must be positive, got %d", c.Sort.MaxFilesPerDirectory)
	}
	if c.Sort.MinEventDeltaDays < 1 {
		return fmt.Errorf("sort.min_event_delta_days must be positive, got %d", c.Sort.MinEventDeltaDays)
	}
	switch c.Sort.FilenamePolicy {
	case PolicyKeepOriginal, PolicySequential, PolicyDateTime:
	default:
		return fmt.Errorf("sort.filename_policy must be one of %s, %s, %s; got %q",
			PolicyKeepOriginal, PolicySequential, PolicyDateTime, c.Sort.FilenamePolicy)
	}
	if len(c.Sort.ImageExtensions) == 0 {
		return errors.New("sort.image_extensions must include at least one extension")
	}
	name := c.Sort.NoExtensionDir
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("sort.no_extension_dir must be a single directory name, got %q", c.Sort.NoExtensionDir)
	}
	return nil
}
