package partition_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"recsort/internal/logging"
	"recsort/internal/partition"
	"recsort/internal/testsupport"
)

func TestPartitionSplitsIntoOrderedChunks(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteNumbered(t, root, 1205, ".jpg")

	result, err := partition.Partition(context.Background(), root, 500, logging.NewNop())
	if err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", result.Err())
	}
	if result.DirectoriesSplit != 1 || result.FilesMoved != 1205 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if n := testsupport.CountFiles(t, root); n != 0 {
		t.Fatalf("expected root to hold no files, got %d", n)
	}
	for i, want := range []int{500, 500, 205} {
		dir := filepath.Join(root, strconv.Itoa(i+1))
		if got := testsupport.CountFiles(t, dir); got != want {
			t.Fatalf("%s holds %d files, want %d", dir, got, want)
		}
	}
	// Natural order: 0..499 in 1/, 500..999 in 2/, 1000..1204 in 3/.
	for _, check := range []struct {
		dir  string
		file string
	}{{"1", "0.jpg"}, {"1", "499.jpg"}, {"2", "500.jpg"}, {"2", "999.jpg"}, {"3", "1000.jpg"}, {"3", "1204.jpg"}} {
		if _, err := os.Stat(filepath.Join(root, check.dir, check.file)); err != nil {
			t.Fatalf("expected %s in %s: %v", check.file, check.dir, err)
		}
	}

	again, err := partition.Partition(context.Background(), root, 500, nil)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if again.FilesMoved != 0 || again.DirectoriesSplit != 0 {
		t.Fatalf("second pass should be a no-op, got %+v", again)
	}
}

func TestPartitionHonoursCapEverywhere(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteNumbered(t, filepath.Join(root, "JPG", "2021"), 23, ".jpg")
	testsupport.WriteNumbered(t, filepath.Join(root, "JPG", "2022"), 7, ".jpg")
	testsupport.WriteNumbered(t, filepath.Join(root, "TXT"), 11, ".txt")
	testsupport.WriteNumbered(t, root, 6, "")

	const limit = 5
	if _, err := partition.Partition(context.Background(), root, limit, nil); err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}

	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if n := testsupport.CountFiles(t, path); n > limit {
				t.Errorf("%s holds %d files, cap is %d", path, n, limit)
			}
			return nil
		}
		total++
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if total != 23+7+11+6 {
		t.Fatalf("files lost or duplicated: %d", total)
	}
}

func TestPartitionSkipsTakenNumbers(t *testing.T) {
	root := t.TempDir()
	// Extension-less sequential names collide with partition numbers.
	testsupport.WriteNumbered(t, root, 4, "")

	result, err := partition.Partition(context.Background(), root, 3, nil)
	if err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}
	if result.FilesMoved != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	// Files 0..3 occupy the names 1, 2 and 3, so partitions start at 4.
	for _, want := range []string{"4/0", "4/1", "4/2", "5/3"} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(want))); err != nil {
			t.Fatalf("expected %s: %v", want, err)
		}
	}
}

func TestPartitionNestedExistingPartitions(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteNumbered(t, filepath.Join(root, "1"), 2, ".jpg")
	testsupport.WriteNumbered(t, root, 3, ".png")

	if _, err := partition.Partition(context.Background(), root, 2, nil); err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}
	if n := testsupport.CountFiles(t, filepath.Join(root, "1")); n != 2 {
		t.Fatalf("existing partition should be untouched, holds %d", n)
	}
	if n := testsupport.CountFiles(t, filepath.Join(root, "2")); n != 2 {
		t.Fatalf("expected first new partition to be 2 with 2 files, got %d", n)
	}
	if n := testsupport.CountFiles(t, filepath.Join(root, "3")); n != 1 {
		t.Fatalf("expected second new partition to be 3 with 1 file, got %d", n)
	}
}

func TestPartitionRecordsMkdirFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	testsupport.WriteNumbered(t, locked, 3, ".jpg")
	testsupport.WriteNumbered(t, filepath.Join(root, "open"), 3, ".jpg")
	if err := os.Chmod(locked, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result, err := partition.Partition(context.Background(), root, 2, nil)
	if err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].Op != "mkdir" {
		t.Fatalf("expected one mkdir failure, got %+v", result.Failures)
	}
	if result.Err() == nil {
		t.Fatal("expected combined error")
	}
	if n := testsupport.CountFiles(t, filepath.Join(root, "open", "1")); n != 2 {
		t.Fatalf("other directories should still be split, got %d", n)
	}
}

func TestPartitionPreconditions(t *testing.T) {
	root := t.TempDir()
	if _, err := partition.Partition(context.Background(), root, 0, nil); err == nil {
		t.Fatal("expected error for zero limit")
	}
	if _, err := partition.Partition(context.Background(), filepath.Join(root, "missing"), 5, nil); err == nil {
		t.Fatal("expected error for missing root")
	}
	file := filepath.Join(root, "file")
	testsupport.WriteFile(t, file, 1)
	if _, err := partition.Partition(context.Background(), file, 5, nil); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestPartitionStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteNumbered(t, root, 10, ".jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := partition.Partition(ctx, root, 3, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := testsupport.CountFiles(t, root); n != 10 {
		t.Fatalf("no files should move after cancellation, %d remain", n)
	}
}
