package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
)

func TestStructValidChore(t *testing.T) {
	c := &model.Chore{Title: "Take out trash", PointsValue: 10, Urgency: model.UrgencyHigh}
	if err := Struct(c); err != nil {
		t.Errorf("Struct: %v", err)
	}
}

func TestStructReportsJSONFieldName(t *testing.T) {
	tests := []struct {
		name   string
		rec    any
		field  string
		reason string
	}{
		{"points too high", &model.Chore{Title: "x", PointsValue: 101, Urgency: model.UrgencyLow}, "points_value", "must be at most 100"},
		{"bad urgency", &model.Chore{Title: "x", PointsValue: 5, Urgency: "Someday"}, "urgency", "must be one of Critical"},
		{"missing title", &model.Chore{PointsValue: 5, Urgency: model.UrgencyLow}, "title", "is required"},
		{"price", &model.ShoppingItem{Name: "Milk", Category: "Dairy", Price: 10001, Urgency: model.UrgencyMedium}, "price", "must be at most 10000"},
		{"capacity", &model.Household{Name: "H", PasswordHash: "h", MaxMembers: 1}, "max_members", "must be at least 2"},
		{"email", &model.User{Username: "alice", PasswordHash: "h", Name: "A", Email: "nope"}, "email", "valid email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.rec)
			if !errors.Is(err, fault.ValidationFailed) {
				t.Fatalf("err = %v, want ValidationFailed", err)
			}
			msg := err.Error()
			if !strings.Contains(msg, tt.field) || !strings.Contains(msg, tt.reason) {
				t.Errorf("message = %q, want field %q and reason %q", msg, tt.field, tt.reason)
			}
		})
	}
}

func TestUsername(t *testing.T) {
	valid := []string{"alice", "Bob_99", "abc"}
	invalid := []string{"", "ab", "9lives", "has space", "_under", strings.Repeat("a", 51)}

	for _, s := range valid {
		if err := Username(s); err != nil {
			t.Errorf("Username(%q) = %v, want nil", s, err)
		}
	}
	for _, s := range invalid {
		if err := Username(s); !errors.Is(err, fault.ValidationFailed) {
			t.Errorf("Username(%q) = %v, want ValidationFailed", s, err)
		}
	}
}

func TestEmail(t *testing.T) {
	if err := Email("john@smith.com"); err != nil {
		t.Errorf("Email: %v", err)
	}
	if err := Email("john.smith.com"); !errors.Is(err, fault.ValidationFailed) {
		t.Errorf("err = %v, want ValidationFailed", err)
	}
}

func TestLengthAndRange(t *testing.T) {
	if err := Length("name", "  ab ", 3, 100); err == nil {
		t.Error("expected trimmed length 2 to fail min 3")
	}
	if err := Length("address", "", 0, 500); err != nil {
		t.Errorf("empty optional field: %v", err)
	}
	if err := Range("max_members", 51, 2, 50); !errors.Is(err, fault.ValidationFailed) {
		t.Errorf("err = %v, want ValidationFailed", err)
	}
}
