package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recsort/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckSourceDirectory("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckDirectoryAccess("dest", dir); result.Passed {
		t.Fatal("expected failure for read-only destination")
	}
	if result := CheckSourceDirectory("src", dir); !result.Passed {
		t.Fatalf("read-only source should pass: %s", result.Detail)
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dst := filepath.Join(base, "dst")
	for _, dir := range []string{src, dst} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Paths.StateDir = base

	results := RunAll(&cfg, src, dst)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	results = RunAll(&cfg, src, filepath.Join(src, "out"))
	if err := Err(results); err == nil {
		t.Fatal("expected failure for missing nested destination")
	}
}

func TestNested(t *testing.T) {
	cases := []struct {
		src, dst string
		want     bool
	}{
		{"/a/src", "/a/src", true},
		{"/a/src", "/a/src/out", true},
		{"/a/src", "/a/srcdest", false},
		{"/a/src", "/a/dst", false},
		{"/a/src", "/a", false},
	}
	for _, tc := range cases {
		if got := nested(tc.src, tc.dst); got != tc.want {
			t.Errorf("nested(%q, %q) = %v, want %v", tc.src, tc.dst, got, tc.want)
		}
	}
}
