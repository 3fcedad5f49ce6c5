package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"recsort/internal/testsupport"
)

// setupCLITestEnv points HOME at a temp directory and writes a config whose
// state lives under it. It returns the config path.
func setupCLITestEnv(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Chdir(base)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		filepath.Join(base, "state"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writeDump creates a small recovery dump: two dated JPEGs a year apart, a
// text file and an extension-less file.
func writeDump(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "dump")
	testsupport.WriteFile(t, filepath.Join(src, "README"), 4)
	testsupport.WriteJPEG(t, filepath.Join(src, "a.jpg"), map[string]string{"DateTimeOriginal": "2021:06:01 10:00:00"})
	testsupport.WriteJPEG(t, filepath.Join(src, "b.jpg"), map[string]string{"DateTimeOriginal": "2022:06:01 10:00:00"})
	testsupport.WriteFile(t, filepath.Join(src, "notes.txt"), 8)
	return src
}

func assertTree(t *testing.T, root string, want []string) {
	t.Helper()
	got := testsupport.ListFiles(t, root)
	slices.Sort(got)
	want = slices.Clone(want)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected tree under %s:\n got  %v\n want %v", root, got, want)
	}
}
