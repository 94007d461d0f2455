package store

import (
	"testing"
	"time"

	"github.com/dukerupert/homedash/internal/jsonstore"
)

var testEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// testClock advances one minute per reading.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func testOptions() []jsonstore.Option {
	clock := &testClock{t: testEpoch}
	return []jsonstore.Option{jsonstore.WithClock(clock.Now)}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  groCERIES ", "Groceries"},
		{"dairy", "Dairy"},
		{"PERSONAL CARE", "Personal care"},
		{"é", "É"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := normalizeCategory(tt.in); got != tt.want {
			t.Errorf("normalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldKey(t *testing.T) {
	if foldKey(" Alice ") != foldKey("aLICE") {
		t.Error("expected case and surrounding space to be ignored")
	}
}
