package testsupport

import (
	"path/filepath"
	"testing"

	"recsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp state directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMaxPerDirectory overrides the partition cap.
func WithMaxPerDirectory(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.MaxFilesPerDirectory = n
	}
}

// WithMinEventDelta overrides the event gap in days.
func WithMinEventDelta(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.MinEventDeltaDays = days
	}
}

// WithPolicy sets the filename policy.
func WithPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.FilenamePolicy = policy
	}
}

// WithSplitByMonth enables year/month buckets.
func WithSplitByMonth() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.SplitByMonth = true
	}
}

// WithoutJournal disables the run journal.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}
