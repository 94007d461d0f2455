// Package jsonstore keeps one homogeneous collection of records in memory and
// mirrors it to a JSON array on disk.
//
// A Store loads its file lazily on first use and from then on treats the
// in-memory slice as the source of truth. It assumes it is the only writer of
// its file for the lifetime of the process: there is no refresh and no
// detection of outside changes. Every operation, reads included, runs under a
// single mutex, so callers never observe a collection mid-mutation.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/homedash/internal/fault"
)

// Entity is the capability every storable record exposes so the store can
// manage identity and timestamps without knowing the concrete type.
type Entity[T any] interface {
	*T
	EntityID() int64
	SetEntityID(int64)
	Created() time.Time
	SetCreated(time.Time)
	SetModified(*time.Time)
	Clone() T
}

// Hook runs inside the store's critical section before an insert or update
// is applied. all is the committed collection and must be treated as
// read-only. current is a copy of the record being replaced (nil on insert).
// next is the record about to be stored; hooks may adjust it. Returning an
// error aborts the write with nothing changed.
type Hook[T any] func(all []T, current *T, next *T) error

type Store[T any, P Entity[T]] struct {
	collection string
	path       string
	now        func() time.Time
	logger     *slog.Logger
	metrics    *Metrics

	mu     sync.Mutex
	loaded bool
	items  []T
	maxID  int64
}

// New returns a store for collection backed by <dir>/<collection>.json.
// Nothing is read until the first operation.
func New[T any, P Entity[T]](dir, collection string, opts ...Option) *Store[T, P] {
	o := options{
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, P]{
		collection: collection,
		path:       filepath.Join(dir, collection+".json"),
		now:        o.now,
		logger:     o.logger.With("collection", collection),
		metrics:    o.metrics,
	}
}

func (s *Store[T, P]) Path() string { return s.path }

// Now reads the store's clock. Hooks use it for derived timestamps.
func (s *Store[T, P]) Now() time.Time { return s.stamp() }

// Load reads the backing file if it has not been read yet. A failed load
// leaves the store unloaded so the next call tries again.
func (s *Store[T, P]) Load() (err error) {
	defer s.observe("load", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoaded()
}

func (s *Store[T, P]) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return fault.Store(fault.ReadError, s.collection, "load", 0, err)
	}

	var items []T
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fault.Store(fault.ParseError, s.collection, "load", 0, fmt.Errorf("%s: %w", s.path, err))
		}
	}

	var maxID int64
	for i := range items {
		if id := P(&items[i]).EntityID(); id > maxID {
			maxID = id
		}
	}

	s.items = items
	s.maxID = maxID
	s.loaded = true
	s.logger.Debug("collection loaded", "path", s.path, "records", len(items))
	return nil
}

// List returns a copy of every record in storage order.
func (s *Store[T, P]) List() (out []T, err error) {
	defer s.observe("list", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	out = make([]T, len(s.items))
	for i := range s.items {
		out[i] = P(&s.items[i]).Clone()
	}
	return out, nil
}

// GetByID returns a copy of the record with the given id, or nil if there is
// none.
func (s *Store[T, P]) GetByID(id int64) (rec *T, err error) {
	defer s.observe("get", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	c := P(&s.items[idx]).Clone()
	return &c, nil
}

// Filter returns copies of the records for which keep reports true.
func (s *Store[T, P]) Filter(keep func(T) bool) (out []T, err error) {
	defer s.observe("filter", time.Now(), &err)
	if keep == nil {
		return nil, fault.Store(fault.InvalidArgument, s.collection, "filter", 0, errors.New("nil predicate"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	for i := range s.items {
		c := P(&s.items[i]).Clone()
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Insert assigns the next id, stamps the creation time if rec has none and
// appends a copy of rec. rec itself is not modified.
func (s *Store[T, P]) Insert(rec *T, hooks ...Hook[T]) (stored *T, err error) {
	defer s.observe("insert", time.Now(), &err)
	if rec == nil {
		return nil, fault.Store(fault.InvalidArgument, s.collection, "insert", 0, errors.New("nil record"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	next := P(rec).Clone()
	np := P(&next)
	id := s.maxID + 1
	np.SetEntityID(id)
	if np.Created().IsZero() {
		np.SetCreated(s.stamp())
	}
	np.SetModified(nil)

	for _, h := range hooks {
		if err := h(s.items, nil, &next); err != nil {
			return nil, err
		}
	}
	// A hook must not be able to move the record off its assigned id.
	np.SetEntityID(id)

	s.items = append(s.items, next)
	s.maxID = id
	out := np.Clone()
	return &out, nil
}

// Update replaces the record whose id matches rec, keeping its original
// creation time and stamping the modification time.
func (s *Store[T, P]) Update(rec *T, hooks ...Hook[T]) (stored *T, err error) {
	defer s.observe("update", time.Now(), &err)
	if rec == nil {
		return nil, fault.Store(fault.InvalidArgument, s.collection, "update", 0, errors.New("nil record"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	id := P(rec).EntityID()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fault.Store(fault.NotFound, s.collection, "update", id, nil)
	}

	current := P(&s.items[idx]).Clone()
	next := P(rec).Clone()
	np := P(&next)
	np.SetCreated(P(&current).Created())
	now := s.stamp()
	np.SetModified(&now)

	for _, h := range hooks {
		if err := h(s.items, &current, &next); err != nil {
			return nil, err
		}
	}
	np.SetEntityID(id)

	s.items[idx] = next
	out := np.Clone()
	return &out, nil
}

// Delete removes the record with the given id and reports whether one was
// removed. The order of the remaining records is preserved.
func (s *Store[T, P]) Delete(id int64) (removed bool, err error) {
	defer s.observe("delete", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return true, nil
}

// Persist overwrites the backing file with the whole collection. Mutations
// are not written until Persist is called.
func (s *Store[T, P]) Persist() (err error) {
	defer s.observe("persist", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	items := s.items
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fault.Store(fault.Unexpected, s.collection, "persist", 0, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fault.Store(fault.WriteError, s.collection, "persist", 0, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fault.Store(fault.WriteError, s.collection, "persist", 0, err)
	}
	s.logger.Debug("collection persisted", "path", s.path, "records", len(items))
	return nil
}

func (s *Store[T, P]) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(rec T) bool {
		return P(&rec).EntityID() == id
	})
}

// stamp drops the monotonic reading so stored times compare equal after a
// JSON round trip.
func (s *Store[T, P]) stamp() time.Time {
	return s.now().Round(0)
}

func (s *Store[T, P]) observe(op string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.observe(s.collection, op, time.Since(start), *err)
}
