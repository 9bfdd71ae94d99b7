package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "journal.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestRecordAndReadBack(t *testing.T) {
	store := openTemp(t)

	id, err := store.BeginSession("console", "127.0.0.1:5000")
	if err != nil {
		t.Fatalf("BeginSession() failed: %v", err)
	}
	if id == "" {
		t.Fatal("BeginSession() returned an empty ID")
	}

	records := []struct {
		dir  Direction
		text string
	}{
		{DirEvent, "stop"},
		{DirResponse, "stopped"},
		{DirEvent, "press 65"},
		{DirEvent, "continue"},
	}
	for _, r := range records {
		if err := store.Record(id, r.dir, r.text); err != nil {
			t.Fatalf("Record(%s) failed: %v", r.text, err)
		}
	}

	entries, err := store.Entries(id, 0)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(entries) != len(records) {
		t.Fatalf("expected %d entries, got %d", len(records), len(entries))
	}
	for i, r := range records {
		if entries[i].Direction != r.dir || entries[i].Text != r.text {
			t.Errorf("entry %d = %s %q, expected %s %q", i, entries[i].Direction, entries[i].Text, r.dir, r.text)
		}
		if entries[i].CreatedAt.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}
}

func TestSessionsListing(t *testing.T) {
	store := openTemp(t)

	first, _ := store.BeginSession("send", "")
	store.Record(first, DirEvent, "stop")
	if err := store.EndSession(first); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}

	second, _ := store.BeginSession("console", "ssh:alice")

	sessions, err := store.RecentSessions(10)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	// Most recent first
	if sessions[0].ID != second || sessions[1].ID != first {
		t.Errorf("unexpected order: %s, %s", sessions[0].ID, sessions[1].ID)
	}
	if sessions[1].Events != 1 {
		t.Errorf("first session entry count = %d, expected 1", sessions[1].Events)
	}
	if sessions[1].EndedAt.IsZero() {
		t.Error("ended session should have an end time")
	}
	if !sessions[0].EndedAt.IsZero() {
		t.Error("open session should have no end time")
	}
}

func TestEntriesUnknownSession(t *testing.T) {
	store := openTemp(t)

	entries, err := store.Entries("missing", 10)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestFindSessionsByPrefix(t *testing.T) {
	store := openTemp(t)

	id, err := store.BeginSession("send", "local")
	if err != nil {
		t.Fatalf("BeginSession() failed: %v", err)
	}
	store.BeginSession("send", "local")

	found, err := store.FindSessions(id[:13])
	if err != nil {
		t.Fatalf("FindSessions() failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != id {
		t.Errorf("FindSessions(%q) = %v", id[:13], found)
	}

	if found, _ := store.FindSessions(id); len(found) != 1 {
		t.Errorf("full id matched %d sessions", len(found))
	}
	if _, err := store.FindSessions(""); err == nil {
		t.Error("empty prefix should fail")
	}
}
