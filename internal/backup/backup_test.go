package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/model"
)

func setupManager(t *testing.T) (*Manager, Config) {
	t.Helper()
	root := t.TempDir()
	cfg := Config{DataDir: filepath.Join(root, "data"), BackupDir: filepath.Join(root, "data", "backups")}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return NewManager(cfg, nil, nil), cfg
}

func writeCollection(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAndRestore(t *testing.T) {
	m, cfg := setupManager(t)
	writeCollection(t, cfg.DataDir, "users", `[{"id": 1, "username": "alice"}]`)
	writeCollection(t, cfg.DataDir, "chores", `[]`)

	b, err := m.Create(context.Background(), "hunter2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", b.Status)
	}
	if b.SizeBytes == 0 || b.CompletedAt == nil {
		t.Errorf("record = %+v, want size and completion time", b)
	}
	if got := b.Collections; len(got) != 2 || got[0] != "chores" || got[1] != "users" {
		t.Errorf("collections = %v, want [chores users]", got)
	}
	if st := m.Status(); st.State != StateIdle || st.LastBackup == nil || st.InProgress {
		t.Errorf("status = %+v, want idle with last backup", st)
	}

	// Wreck the data and restore it.
	writeCollection(t, cfg.DataDir, "users", `[]`)
	names, err := m.Restore(context.Background(), b.ID, "hunter2")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("restored = %v", names)
	}

	data, err := os.ReadFile(filepath.Join(cfg.DataDir, "users.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "[\n  {\n    \"id\": 1,\n    \"username\": \"alice\"\n  }\n]\n"
	if string(data) != want {
		t.Errorf("users.json = %q, want %q", data, want)
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	m, cfg := setupManager(t)
	writeCollection(t, cfg.DataDir, "users", `[]`)

	b, err := m.Create(context.Background(), "right")
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Restore(context.Background(), b.ID, "wrong")
	if !errors.Is(err, fault.Unauthorized) {
		t.Errorf("err = %v, want Unauthorized", err)
	}

	_, err = m.Restore(context.Background(), 42, "right")
	if !errors.Is(err, fault.NotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestCreateRejectsInvalidCollection(t *testing.T) {
	m, cfg := setupManager(t)
	writeCollection(t, cfg.DataDir, "users", `{broken`)

	_, err := m.Create(context.Background(), "pass")
	if !fault.IsStore(err) || !errors.Is(err, fault.ParseError) {
		t.Fatalf("err = %v, want a store ParseError", err)
	}
	if st := m.Status(); st.State != StateError {
		t.Errorf("state = %q, want error", st.State)
	}

	records, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != model.BackupStatusFailed || records[0].ErrorMessage == "" {
		t.Errorf("records = %+v, want one failed record", records)
	}
}

func TestFileFailuresAreStoreFaults(t *testing.T) {
	m, cfg := setupManager(t)
	writeCollection(t, cfg.DataDir, "users", `[]`)

	b, err := m.Create(context.Background(), "pass")
	if err != nil {
		t.Fatal(err)
	}

	// users.json is a regular file, so nothing can be created beneath it.
	blocked := NewManager(Config{DataDir: filepath.Join(cfg.DataDir, "users.json", "nested"), BackupDir: cfg.BackupDir}, nil, nil)
	_, err = blocked.Restore(context.Background(), b.ID, "pass")
	if !fault.IsStore(err) || !errors.Is(err, fault.WriteError) {
		t.Errorf("restore under a file: err = %v, want a store WriteError", err)
	}

	if err := os.Remove(filepath.Join(cfg.BackupDir, b.Filename)); err != nil {
		t.Fatal(err)
	}
	_, err = m.Restore(context.Background(), b.ID, "pass")
	if !fault.IsStore(err) || !errors.Is(err, fault.ReadError) {
		t.Errorf("missing file: err = %v, want a store ReadError", err)
	}
}

func TestCreateRequiresPassphrase(t *testing.T) {
	m, _ := setupManager(t)
	if _, err := m.Create(context.Background(), " "); !errors.Is(err, fault.ValidationFailed) {
		t.Errorf("err = %v, want ValidationFailed", err)
	}
}

func TestListAndCleanup(t *testing.T) {
	root := t.TempDir()
	cfg := Config{DataDir: filepath.Join(root, "data"), BackupDir: filepath.Join(root, "backups")}
	os.MkdirAll(cfg.DataDir, 0o755)
	writeCollection(t, cfg.DataDir, "users", `[]`)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	var mu sync.Mutex
	var states []State
	m := NewManager(cfg, nil, func(s Status) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	}, jsonstore.WithClock(now))
	m.SetClock(now)

	old, err := m.Create(context.Background(), "pass")
	if err != nil {
		t.Fatal(err)
	}
	clock = clock.AddDate(0, 0, 40)
	recent, err := m.Create(context.Background(), "pass")
	if err != nil {
		t.Fatal(err)
	}

	records, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != recent.ID {
		t.Fatalf("records = %+v, want newest first", records)
	}

	removed, err := m.Cleanup(context.Background(), 30)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(filepath.Join(cfg.BackupDir, old.Filename)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old backup file still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.BackupDir, recent.Filename)); err != nil {
		t.Errorf("recent backup file missing: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 4 || states[0] != StateRunning || states[3] != StateIdle {
		t.Errorf("states = %v, want running/idle twice", states)
	}
}
