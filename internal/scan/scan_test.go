package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"recsort/internal/scan"
	"recsort/internal/testsupport"
)

func TestFilesNaturalOrder(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "recup_dir.10", "f1.jpg"), 3)
	testsupport.WriteFile(t, filepath.Join(root, "recup_dir.2", "f10.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "recup_dir.2", "f9.txt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "report.xml"), 1)
	if err := os.Symlink(filepath.Join(root, "report.xml"), filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	files, skipped, err := scan.Files(root)
	if err != nil {
		t.Fatalf("Files returned error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped entries: %v", skipped)
	}

	want := []string{
		"report.xml",
		"recup_dir.2/f9.txt",
		"recup_dir.2/f10.jpg",
		"recup_dir.10/f1.jpg",
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		if filepath.ToSlash(rel) != want[i] {
			t.Fatalf("file %d = %s, want %s", i, rel, want[i])
		}
	}
	if files[3].Size != 3 || files[3].Name != "f1.jpg" {
		t.Fatalf("unexpected file metadata: %+v", files[3])
	}
}

func TestFilesMissingRoot(t *testing.T) {
	if _, _, err := scan.Files(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
