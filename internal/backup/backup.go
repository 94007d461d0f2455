// Package backup writes encrypted snapshots of the data directory and
// restores them. Snapshot metadata is kept in its own collection in the
// backup directory.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/model"
)

// Config holds backup manager configuration.
type Config struct {
	DataDir   string
	BackupDir string
}

// State represents the backup manager state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateError   State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// snapshot is the plaintext document inside an encrypted backup file.
type snapshot struct {
	Version     int                        `json:"version"`
	CreatedAt   time.Time                  `json:"created_at"`
	Collections map[string]json.RawMessage `json:"collections"`
}

const snapshotVersion = 1

// collection names the backup records and the faults raised for backup files.
const collection = "backups"

// Manager creates, lists, restores and prunes local encrypted backups.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	records *jsonstore.Store[model.Backup, *model.Backup]
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager creates a new backup manager. opts configure the store that
// keeps the backup records.
func NewManager(cfg Config, logger *slog.Logger, callback StatusCallback, opts ...jsonstore.Option) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		cfg:      cfg,
		status:   Status{State: StateIdle},
		callback: callback,
		records:  jsonstore.New[model.Backup](cfg.BackupDir, collection, opts...),
		logger:   logger.With("component", "backup"),
		now:      time.Now,
	}
}

// SetClock replaces time.Now for backup file names and retention.
func (m *Manager) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// begin flips the manager into the running state, failing if a backup is
// already underway.
func (m *Manager) begin() error {
	m.mu.Lock()
	if m.status.InProgress {
		m.mu.Unlock()
		return fault.Rule("BACKUP_IN_PROGRESS", "a backup is already running")
	}
	m.status = Status{State: StateRunning, InProgress: true, LastBackup: m.status.LastBackup}
	s := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
	return nil
}

// Create snapshots every collection in the data directory into one
// encrypted file and records it.
func (m *Manager) Create(ctx context.Context, passphrase string) (*model.Backup, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, fault.Validation("passphrase", "is required")
	}
	if err := m.begin(); err != nil {
		return nil, err
	}

	started := m.now().UTC()
	filename := fmt.Sprintf("backup-%s.json.enc", started.Format("2006-01-02T150405.000Z"))
	record, err := m.records.Insert(&model.Backup{Filename: filename, Status: model.BackupStatusPending})
	if err == nil {
		err = m.records.Persist()
	}
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	size, collections, err := m.write(ctx, record.ID, filename, passphrase, started)
	if err != nil {
		record.Status = model.BackupStatusFailed
		record.ErrorMessage = err.Error()
		if _, uerr := m.records.Update(record); uerr == nil {
			_ = m.records.Persist()
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		m.logger.Error("backup failed", "backup_id", record.ID, "error", err)
		return nil, err
	}

	completed := m.now().UTC()
	record.Status = model.BackupStatusCompleted
	record.SizeBytes = size
	record.Collections = collections
	record.CompletedAt = &completed
	updated, err := m.records.Update(record)
	if err == nil {
		err = m.records.Persist()
	}
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("complete backup record: %w", err)
	}

	m.setStatus(Status{State: StateIdle, LastBackup: &completed})
	m.logger.Info("backup completed", "backup_id", updated.ID, "file", filename, "bytes", size, "collections", len(collections))
	return updated, nil
}

func (m *Manager) write(ctx context.Context, id int64, filename, passphrase string, at time.Time) (int64, []string, error) {
	paths, err := filepath.Glob(filepath.Join(m.cfg.DataDir, "*.json"))
	if err != nil {
		return 0, nil, fault.Store(fault.ReadError, collection, "create", id, fmt.Errorf("list collections: %w", err))
	}

	snap := snapshot{Version: snapshotVersion, CreatedAt: at, Collections: make(map[string]json.RawMessage, len(paths))}
	var names []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return 0, nil, fault.Store(fault.ReadError, collection, "create", id, fmt.Errorf("read collection: %w", err))
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			data = []byte("[]")
		}
		if !json.Valid(data) {
			return 0, nil, fault.Store(fault.ParseError, collection, "create", id, fmt.Errorf("collection %s is not valid JSON", filepath.Base(p)))
		}
		name := strings.TrimSuffix(filepath.Base(p), ".json")
		snap.Collections[name] = data
		names = append(names, name)
	}
	slices.Sort(names)

	plaintext, err := json.Marshal(snap)
	if err != nil {
		return 0, nil, fmt.Errorf("encode snapshot: %w", err)
	}
	sealed, err := Seal(plaintext, passphrase)
	if err != nil {
		return 0, nil, fmt.Errorf("encrypt: %w", err)
	}

	if err := os.MkdirAll(m.cfg.BackupDir, 0o755); err != nil {
		return 0, nil, fault.Store(fault.WriteError, collection, "create", id, fmt.Errorf("create backup dir: %w", err))
	}
	if err := os.WriteFile(filepath.Join(m.cfg.BackupDir, filename), sealed, 0o600); err != nil {
		return 0, nil, fault.Store(fault.WriteError, collection, "create", id, fmt.Errorf("write encrypted file: %w", err))
	}
	return int64(len(sealed)), names, nil
}

// List returns the backup records, newest first.
func (m *Manager) List() ([]model.Backup, error) {
	records, err := m.records.List()
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	slices.SortStableFunc(records, func(a, b model.Backup) int {
		if c := b.CreatedDate.Compare(a.CreatedDate); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return records, nil
}

// Restore decrypts a completed backup and overwrites the collection files
// in the data directory. It must run before any store has loaded, since
// loaded stores never re-read their files.
func (m *Manager) Restore(ctx context.Context, backupID int64, passphrase string) ([]string, error) {
	record, err := m.records.GetByID(backupID)
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return nil, fault.Missing("BACKUP_NOT_FOUND", "backup not found")
	}
	if record.Status != model.BackupStatusCompleted {
		return nil, fault.Rule("BACKUP_INCOMPLETE", fmt.Sprintf("backup %d is %s", backupID, record.Status))
	}

	sealed, err := os.ReadFile(filepath.Join(m.cfg.BackupDir, record.Filename))
	if err != nil {
		return nil, fault.Store(fault.ReadError, collection, "restore", backupID, fmt.Errorf("read backup file: %w", err))
	}
	plaintext, err := Open(sealed, passphrase)
	if errors.Is(err, ErrDecrypt) {
		return nil, fault.Domain(fault.Unauthorized, "INVALID_PASSPHRASE", "wrong passphrase or damaged backup")
	}
	if err != nil {
		return nil, fmt.Errorf("decrypt backup: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, fault.Store(fault.ParseError, collection, "restore", backupID, fmt.Errorf("decode snapshot: %w", err))
	}
	// Validate everything before touching the data directory.
	names := make([]string, 0, len(snap.Collections))
	for name, raw := range snap.Collections {
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return nil, fault.Store(fault.ParseError, collection, "restore", backupID, fmt.Errorf("snapshot has invalid collection name %q", name))
		}
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fault.Store(fault.ParseError, collection, "restore", backupID, fmt.Errorf("collection %s is not an array: %w", name, err))
		}
		names = append(names, name)
	}
	slices.Sort(names)

	if err := os.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return nil, fault.Store(fault.WriteError, collection, "restore", backupID, fmt.Errorf("create data dir: %w", err))
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, snap.Collections[name], "", "  "); err != nil {
			return nil, fault.Store(fault.ParseError, collection, "restore", backupID, fmt.Errorf("format collection %s: %w", name, err))
		}
		buf.WriteByte('\n')
		if err := os.WriteFile(filepath.Join(m.cfg.DataDir, name+".json"), buf.Bytes(), 0o644); err != nil {
			return nil, fault.Store(fault.WriteError, collection, "restore", backupID, fmt.Errorf("restore collection %s: %w", name, err))
		}
	}

	m.logger.Info("backup restored", "backup_id", backupID, "collections", len(names))
	return names, nil
}

// Cleanup deletes backups older than the retention period along with their
// files. It returns the number of records removed. A file that cannot be
// removed keeps its record; the first such failure is returned after the
// rest have been pruned.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := m.now().AddDate(0, 0, -retentionDays)

	old, err := m.records.Filter(func(b model.Backup) bool { return b.CreatedDate.Before(cutoff) })
	if err != nil {
		return 0, fmt.Errorf("list old backups: %w", err)
	}

	removed := 0
	var failed error
	for _, b := range old {
		if err := ctx.Err(); err != nil {
			break
		}
		err := os.Remove(filepath.Join(m.cfg.BackupDir, b.Filename))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("remove backup file", "backup_id", b.ID, "error", err)
			if failed == nil {
				failed = fault.Store(fault.WriteError, collection, "cleanup", b.ID, fmt.Errorf("remove backup file: %w", err))
			}
			continue
		}
		if ok, err := m.records.Delete(b.ID); err != nil {
			return removed, fmt.Errorf("delete backup record: %w", err)
		} else if ok {
			removed++
		}
	}

	if removed > 0 {
		if err := m.records.Persist(); err != nil {
			return removed, fmt.Errorf("save backup records: %w", err)
		}
		m.logger.Info("old backups removed", "count", removed, "retention_days", retentionDays)
	}
	if failed != nil {
		return removed, failed
	}
	return removed, ctx.Err()
}
