package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"recsort/internal/journal"
	"recsort/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenJournal(t, filepath.Join(t.TempDir(), "state", "journal.db"))

	id, err := store.BeginRun(ctx, "/src", "/dest", "sequential")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("expected uuid run id, got %q", id)
	}

	entries := []journal.Entry{
		{Phase: journal.PhaseCopy, Source: "/src/f1.jpg", Destination: "/dest/JPG/0.jpg"},
		{Phase: journal.PhaseCopy, Source: "/src/f2.jpg", Error: "permission denied"},
		{Phase: journal.PhaseCluster, Source: "/dest/JPG/0.jpg", Destination: "/dest/JPG/2021/0.jpg"},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, id, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := store.FinishRun(ctx, id, journal.StatusCompleted, journal.Summary{Copied: 1, Clustered: 1, Failures: 1}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := store.GetRun(ctx, id[:8])
	if err != nil {
		t.Fatalf("GetRun by prefix: %v", err)
	}
	if run.ID != id || run.Status != journal.StatusCompleted || !run.Finished() {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Copied != 1 || run.Clustered != 1 || run.Failures != 1 || run.Policy != "sequential" {
		t.Fatalf("unexpected counters: %+v", run.Summary)
	}
	if run.Duration() < 0 {
		t.Fatalf("negative duration: %v", run.Duration())
	}

	got, err := store.Entries(ctx, id)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, entry := range got {
		if entry.Seq != i+1 {
			t.Fatalf("entry %d has seq %d", i, entry.Seq)
		}
	}
	if got[1].Error != "permission denied" || got[1].Destination != "" {
		t.Fatalf("unexpected failure entry: %+v", got[1])
	}
	if got[2].Phase != journal.PhaseCluster {
		t.Fatalf("unexpected phase: %q", got[2].Phase)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenJournal(t, filepath.Join(t.TempDir(), "journal.db"))

	var ids []string
	for range 3 {
		id, err := store.BeginRun(ctx, "/src", "/dest", "keep-original")
		if err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Finished() {
		t.Fatal("unfinished run reported as finished")
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all runs, got %d, %v", len(all), err)
	}
}

func TestGetRunMissing(t *testing.T) {
	store := testsupport.MustOpenJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	if _, err := store.GetRun(context.Background(), "nope"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := store.FinishRun(context.Background(), "nope", journal.StatusFailed, journal.Summary{}); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound from FinishRun, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	first, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := first.BeginRun(context.Background(), "/a", "/b", "date-time")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenJournal(t, path)
	if _, err := second.GetRun(context.Background(), id); err != nil {
		t.Fatalf("run lost after reopen: %v", err)
	}
}
