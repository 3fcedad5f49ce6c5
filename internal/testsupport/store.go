package testsupport

import (
	"testing"

	"recsort/internal/journal"
)

// MustOpenJournal opens a journal.Store at path for tests and registers
// cleanup.
func MustOpenJournal(t testing.TB, path string) *journal.Store {
	t.Helper()

	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
