package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestRunCommandSortsDumpAsJSON(t *testing.T) {
	configPath := setupCLITestEnv(t)
	src := writeDump(t)
	dst := filepath.Join(t.TempDir(), "sorted")

	out, _, err := runCLI(t, []string{"run", src, dst, "--json", "-d", "1"}, configPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var summary runSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id in summary")
	}
	if summary.Copied != 4 || summary.Dated != 2 || summary.Clustered != 2 || len(summary.Failures) != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Policy != "sequential" {
		t.Fatalf("unexpected policy: %q", summary.Policy)
	}

	assertTree(t, dst, []string{
		"_NO_EXTENSION/0",
		"JPG/2021/1.jpg",
		"JPG/2022/2.jpg",
		"TXT/3.txt",
	})
}

func TestRunCommandKeepFilenameSplitMonths(t *testing.T) {
	configPath := setupCLITestEnv(t)
	src := writeDump(t)
	dst := filepath.Join(t.TempDir(), "sorted")

	out, _, err := runCLI(t, []string{"run", src, dst, "-k", "-m"}, configPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	requireContains(t, out, "keep-original")
	requireContains(t, out, "Images clustered")

	assertTree(t, dst, []string{
		"_NO_EXTENSION/README",
		"JPG/2021/06/a.jpg",
		"JPG/2022/06/b.jpg",
		"TXT/notes.txt",
	})
}

func TestRunCommandAppliesPartitionLimit(t *testing.T) {
	configPath := setupCLITestEnv(t)
	src := writeDump(t)
	dst := filepath.Join(t.TempDir(), "sorted")

	if _, _, err := runCLI(t, []string{"run", src, dst, "-k", "-n", "1", "-d", "1000"}, configPath); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// With a huge gap both images form one 2021 event; the cap of one file
	// then splits that folder.
	assertTree(t, dst, []string{
		"_NO_EXTENSION/README",
		"JPG/2021/1/a.jpg",
		"JPG/2021/2/b.jpg",
		"TXT/notes.txt",
	})
}

func TestRunCommandRejectsConflictingPolicies(t *testing.T) {
	configPath := setupCLITestEnv(t)
	src := writeDump(t)

	_, _, err := runCLI(t, []string{"run", src, t.TempDir(), "-k", "-j"}, configPath)
	if err == nil {
		t.Fatal("expected error for -k with -j")
	}
	requireContains(t, err.Error(), "keep-filename")
}

func TestRunCommandRejectsInvalidCap(t *testing.T) {
	configPath := setupCLITestEnv(t)
	src := writeDump(t)
	dst := filepath.Join(t.TempDir(), "sorted")

	_, _, err := runCLI(t, []string{"run", src, dst, "-n", "0"}, configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "max_files_per_directory")
	if _, statErr := os.Stat(dst); !errors.Is(statErr, fs.ErrNotExist) {
		t.Fatalf("destination must not be created for invalid settings: %v", statErr)
	}
}

func TestRunCommandRequiresSource(t *testing.T) {
	configPath := setupCLITestEnv(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, _, err := runCLI(t, []string{"run", missing, t.TempDir()}, configPath)
	if err == nil {
		t.Fatal("expected preflight error")
	}
	requireContains(t, err.Error(), "Source directory")
}

func TestRunCommandNeedsTwoArgs(t *testing.T) {
	configPath := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"run", t.TempDir()}, configPath); err == nil {
		t.Fatal("expected argument error")
	}
}
