package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recsort/internal/config"
	"recsort/internal/logging"
	"recsort/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesStateLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")

	logger, err := logging.NewFromConfig(&cfg, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("state log check")

	if got := readLog(t, cfg.LogPath()); !strings.Contains(got, "state log check") {
		t.Fatalf("expected message in %s, got %q", cfg.LogPath(), got)
	}
}

func TestNewFromConfigLevelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg, "debug")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug visible")

	if got := readLog(t, cfg.LogPath()); !strings.Contains(got, "debug visible") {
		t.Fatalf("expected override to enable debug output, got %q", got)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestConsoleLoggerFormatsSubjectAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "3f2a9c1e-1111-2222-3333-444455556666")
	ctx = services.WithStage(ctx, "copy")
	logger = logging.NewComponentLogger(logger, "organizer")
	logging.WithContext(ctx, logger).Info("copied file", logging.String("source", "a b.jpg"), logging.Int("index", 3))

	got := readLog(t, logPath)
	for _, want := range []string{"INFO [organizer] 3f2a9c1e (copy) – copied file", `source="a b.jpg"`, "index=3"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if strings.Contains(got, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", got)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")
	if got := readLog(t, logPath); !strings.Contains(got, "logger_test.go:") {
		t.Fatalf("expected caller information, got %q", got)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-1")
	logging.WithContext(ctx, logger).Warn("partition skipped", logging.Error(errors.New("boom")))

	line := strings.TrimSpace(readLog(t, logPath))
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log %q: %v", line, err)
	}
	if payload["level"] != "warn" || payload["msg"] != "partition skipped" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload[logging.FieldRunID] != "run-1" {
		t.Fatalf("expected run id field, got %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestJSONLoggerRendersDurationsAndTimes(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "values.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	captured := time.Date(2021, 12, 31, 23, 58, 0, 0, time.FixedZone("x", 3600))
	logger.Info("run finished",
		logging.Duration("elapsed", 1500*time.Microsecond+2*time.Second),
		logging.Any("captured", captured),
		logging.Any("cause", errors.New("disk full")))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["elapsed"] != "2.002s" {
		t.Fatalf("elapsed = %v, want 2.002s", payload["elapsed"])
	}
	if payload["captured"] != "2021-12-31T22:58:00Z" {
		t.Fatalf("captured = %v, want UTC RFC3339", payload["captured"])
	}
	if payload["cause"] != "disk full" {
		t.Fatalf("cause = %v, want error text", payload["cause"])
	}
}

func TestConsoleLoggerQuotesAwkwardValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "quotes.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("values",
		logging.String("empty", ""),
		logging.String("eq", "a=b"),
		logging.String("plain", "IMG_0001.JPG"),
		logging.Duration("elapsed", 1500*time.Microsecond))

	got := readLog(t, logPath)
	for _, want := range []string{`empty=""`, `eq="a=b"`, "plain=IMG_0001.JPG", "elapsed=2ms"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "copy failed", "copy_failed", logging.String(logging.FieldImpact, "file not copied"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload[logging.FieldEventType] != "copy_failed" {
		t.Fatalf("expected event type, got %v", payload)
	}
	if payload[logging.FieldImpact] != "file not copied" {
		t.Fatalf("explicit impact should win, got %v", payload)
	}
	if payload[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint, got %v", payload)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
