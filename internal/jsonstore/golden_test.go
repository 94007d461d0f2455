package jsonstore

import (
	"os"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

func TestPersistedFormat(t *testing.T) {
	s, _ := setupTestStore(t, WithClock(func() time.Time { return epoch }))

	s.Insert(&widget{Name: "alpha", Tags: []string{"a", "b"}})
	beta, _ := s.Insert(&widget{Name: "beta"})
	beta.Name = "beta (edited)"
	if _, err := s.Update(beta); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	g := goldie.New(t)
	g.Assert(t, "widgets", data)
}
