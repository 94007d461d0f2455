package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/homedash/internal/fault"
)

type widget struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Tags         []string   `json:"tags"`
	CreatedDate  time.Time  `json:"created_date"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (w *widget) EntityID() int64          { return w.ID }
func (w *widget) SetEntityID(id int64)     { w.ID = id }
func (w *widget) Created() time.Time       { return w.CreatedDate }
func (w *widget) SetCreated(t time.Time)   { w.CreatedDate = t }
func (w *widget) SetModified(t *time.Time) { w.ModifiedDate = t }

func (w *widget) Clone() widget {
	out := *w
	out.Tags = slices.Clone(w.Tags)
	if w.ModifiedDate != nil {
		m := *w.ModifiedDate
		out.ModifiedDate = &m
	}
	return out
}

var epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// fakeClock advances one hour per call.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Hour)
	return c.t
}

func setupTestStore(t *testing.T, opts ...Option) (*Store[widget, *widget], string) {
	t.Helper()
	dir := t.TempDir()
	return New[widget](dir, "widgets", opts...), dir
}

func TestInsertAndGetByID(t *testing.T) {
	s, _ := setupTestStore(t)

	in := &widget{Name: "alpha", Tags: []string{"a"}}
	got, err := s.Insert(in)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
	if got.CreatedDate.IsZero() {
		t.Error("expected CreatedDate to be stamped")
	}
	if got.ModifiedDate != nil {
		t.Error("expected ModifiedDate to stay nil on insert")
	}
	if in.ID != 0 {
		t.Errorf("input was mutated: ID = %d", in.ID)
	}

	fetched, err := s.GetByID(got.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected record, got nil")
	}
	if fetched.Name != "alpha" || !slices.Equal(fetched.Tags, []string{"a"}) {
		t.Errorf("fetched = %+v, want name alpha with tag a", fetched)
	}
	if !fetched.CreatedDate.Equal(got.CreatedDate) {
		t.Errorf("CreatedDate = %v, want %v", fetched.CreatedDate, got.CreatedDate)
	}
}

func TestInsertKeepsCallerCreatedDate(t *testing.T) {
	s, _ := setupTestStore(t)

	got, err := s.Insert(&widget{Name: "old", CreatedDate: epoch})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !got.CreatedDate.Equal(epoch) {
		t.Errorf("CreatedDate = %v, want %v", got.CreatedDate, epoch)
	}
}

func TestGetByIDMissing(t *testing.T) {
	s, _ := setupTestStore(t)

	got, err := s.GetByID(42)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestInsertNil(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.Insert(nil)
	if !errors.Is(err, fault.InvalidArgument) {
		t.Errorf("err = %v, want InvalidArgument", err)
	}
	if _, err := s.Update(nil); !errors.Is(err, fault.InvalidArgument) {
		t.Errorf("update err = %v, want InvalidArgument", err)
	}
}

func TestSequentialIDs(t *testing.T) {
	s, _ := setupTestStore(t)

	for i := 1; i <= 5; i++ {
		got, err := s.Insert(&widget{Name: "w"})
		if err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
		if got.ID != int64(i) {
			t.Errorf("insert %d: ID = %d, want %d", i, got.ID, i)
		}
	}
}

func TestDeletedIDNotReused(t *testing.T) {
	s, _ := setupTestStore(t)

	for range 3 {
		if _, err := s.Insert(&widget{Name: "w"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	removed, err := s.Delete(3)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("expected Delete to report removal")
	}

	got, err := s.Insert(&widget{Name: "next"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got.ID != 4 {
		t.Errorf("ID = %d, want 4", got.ID)
	}
}

func TestDeleteMissing(t *testing.T) {
	s, _ := setupTestStore(t)
	if _, err := s.Insert(&widget{Name: "keep"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	removed, err := s.Delete(99)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Error("expected Delete to report false for a missing id")
	}

	all, _ := s.List()
	if len(all) != 1 {
		t.Errorf("len = %d, want 1", len(all))
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	s, _ := setupTestStore(t)
	for _, n := range []string{"a", "b", "c", "d"} {
		if _, err := s.Insert(&widget{Name: n}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	if _, err := s.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, w := range all {
		names = append(names, w.Name)
	}
	if want := []string{"a", "c", "d"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestUpdate(t *testing.T) {
	clock := &fakeClock{t: epoch}
	s, _ := setupTestStore(t, WithClock(clock.Now))

	created, err := s.Insert(&widget{Name: "before"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// A full replace with a zero CreatedDate must not clear the original.
	updated, err := s.Update(&widget{ID: created.ID, Name: "after"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "after" {
		t.Errorf("Name = %q, want %q", updated.Name, "after")
	}
	if !updated.CreatedDate.Equal(created.CreatedDate) {
		t.Errorf("CreatedDate = %v, want %v", updated.CreatedDate, created.CreatedDate)
	}
	if updated.ModifiedDate == nil {
		t.Fatal("expected ModifiedDate to be set")
	}
	if !updated.ModifiedDate.After(created.CreatedDate) {
		t.Errorf("ModifiedDate %v not after CreatedDate %v", updated.ModifiedDate, created.CreatedDate)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := setupTestStore(t)
	if _, err := s.Insert(&widget{Name: "only"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_, err := s.Update(&widget{ID: 7, Name: "ghost"})
	if !errors.Is(err, fault.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	var se *fault.StoreError
	if !errors.As(err, &se) {
		t.Fatal("expected a StoreError")
	}
	if se.Collection != "widgets" || se.ID != 7 {
		t.Errorf("fault = %+v, want widgets id 7", se)
	}

	all, _ := s.List()
	if len(all) != 1 || all[0].Name != "only" {
		t.Errorf("collection changed: %+v", all)
	}
}

func TestHookAbortsWrite(t *testing.T) {
	s, _ := setupTestStore(t)
	reject := errors.New("rejected")

	_, err := s.Insert(&widget{Name: "bad"}, func(all []widget, current, next *widget) error {
		return reject
	})
	if !errors.Is(err, reject) {
		t.Fatalf("err = %v, want %v", err, reject)
	}

	got, err := s.Insert(&widget{Name: "good"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1 (rejected insert must not consume an id)", got.ID)
	}
}

func TestHookSeesCurrentAndMayAdjustNext(t *testing.T) {
	s, _ := setupTestStore(t)
	created, _ := s.Insert(&widget{Name: "v1"})

	var seen string
	_, err := s.Update(&widget{ID: created.ID, Name: "v2"}, func(all []widget, current, next *widget) error {
		seen = current.Name
		next.Name = strings.ToUpper(next.Name)
		next.ID = 999
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if seen != "v1" {
		t.Errorf("current.Name = %q, want %q", seen, "v1")
	}

	got, _ := s.GetByID(created.ID)
	if got == nil || got.Name != "V2" {
		t.Errorf("got = %+v, want name V2 under the original id", got)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s, _ := setupTestStore(t)
	created, _ := s.Insert(&widget{Name: "orig", Tags: []string{"x"}})

	created.Name = "changed"
	created.Tags[0] = "y"

	list, _ := s.List()
	list[0].Tags[0] = "z"

	got, _ := s.GetByID(created.ID)
	if got.Name != "orig" || got.Tags[0] != "x" {
		t.Errorf("store state leaked: %+v", got)
	}
}

func TestFilter(t *testing.T) {
	s, _ := setupTestStore(t)
	for _, n := range []string{"apple", "banana", "avocado"} {
		s.Insert(&widget{Name: n})
	}

	got, err := s.Filter(func(w widget) bool { return strings.HasPrefix(w.Name, "a") })
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	if _, err := s.Filter(nil); !errors.Is(err, fault.InvalidArgument) {
		t.Errorf("err = %v, want InvalidArgument", err)
	}
}

func TestConcurrentInserts(t *testing.T) {
	s, _ := setupTestStore(t)
	const n = 64

	ids := make([]int64, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			w, err := s.Insert(&widget{Name: "w"})
			if err != nil {
				return err
			}
			ids[i] = w.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	slices.Sort(ids)
	for i, id := range ids {
		if id != int64(i+1) {
			t.Fatalf("ids[%d] = %d, want %d", i, id, i+1)
		}
	}
}

func TestPersistAndReload(t *testing.T) {
	s, dir := setupTestStore(t)
	s.Insert(&widget{Name: "one", Tags: []string{"t"}})
	s.Insert(&widget{Name: "two"})
	s.Delete(2)
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reopened := New[widget](dir, "widgets")
	all, err := reopened.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].Name != "one" || all[0].Tags[0] != "t" {
		t.Errorf("reloaded = %+v", all)
	}

	got, _ := reopened.Insert(&widget{Name: "three"})
	if got.ID != 2 {
		t.Errorf("ID after reload = %d, want 2", got.ID)
	}
}

func TestPersistCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New[widget](dir, "widgets")

	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "widgets.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("file = %q, want %q", data, "[]\n")
	}
}

func TestLoadIsLazy(t *testing.T) {
	s, dir := setupTestStore(t)

	// Written after New but before first use: the store must see it.
	content := `[{"id": 5, "name": "late", "tags": null, "created_date": "2024-01-02T03:04:05Z", "modified_date": null}]`
	if err := os.WriteFile(filepath.Join(dir, "widgets.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID(5)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "late" {
		t.Fatalf("got = %+v", got)
	}

	// Later outside writes are ignored.
	os.WriteFile(filepath.Join(dir, "widgets.json"), []byte("[]"), 0o644)
	all, _ := s.List()
	if len(all) != 1 {
		t.Errorf("len = %d, want 1", len(all))
	}
}

func TestLoadEmptyFile(t *testing.T) {
	for _, content := range []string{"", "   \n\t"} {
		s, dir := setupTestStore(t)
		os.WriteFile(filepath.Join(dir, "widgets.json"), []byte(content), 0o644)

		all, err := s.List()
		if err != nil {
			t.Fatalf("List(%q): %v", content, err)
		}
		if len(all) != 0 {
			t.Errorf("List(%q) len = %d, want 0", content, len(all))
		}
	}
}

func TestLoadParseErrorThenRetry(t *testing.T) {
	s, dir := setupTestStore(t)
	path := filepath.Join(dir, "widgets.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	_, err := s.List()
	if !errors.Is(err, fault.ParseError) {
		t.Fatalf("err = %v, want ParseError", err)
	}

	os.WriteFile(path, []byte(`[{"id": 1, "name": "fixed"}]`), 0o644)
	all, err := s.List()
	if err != nil {
		t.Fatalf("List after fix: %v", err)
	}
	if len(all) != 1 || all[0].Name != "fixed" {
		t.Errorf("all = %+v", all)
	}
}

func TestLoadReadError(t *testing.T) {
	s, dir := setupTestStore(t)
	// A directory where the file should be cannot be read.
	if err := os.Mkdir(filepath.Join(dir, "widgets.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := s.Load()
	if !errors.Is(err, fault.ReadError) {
		t.Errorf("err = %v, want ReadError", err)
	}
}

func TestPersistWriteError(t *testing.T) {
	s, dir := setupTestStore(t)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "widgets.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := s.Persist()
	if !errors.Is(err, fault.WriteError) {
		t.Errorf("err = %v, want WriteError", err)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	s, _ := setupTestStore(t, WithMetrics(m))

	s.Insert(&widget{Name: "a"})
	s.Insert(&widget{Name: "b"})
	s.Update(&widget{ID: 9})

	out := filepath.Join(t.TempDir(), "store.prom")
	if err := m.WriteToTextfile(out); err != nil {
		t.Fatalf("WriteToTextfile: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`homedash_store_operations_total{collection="widgets",op="insert",result="ok"} 2`,
		`homedash_store_operations_total{collection="widgets",op="update",result="not_found"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
