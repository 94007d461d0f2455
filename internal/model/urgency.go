package model

import (
	"fmt"
	"strings"
)

// Urgency is an ordered severity classification shared by chores and
// shopping items. Critical is the most severe.
type Urgency string

const (
	UrgencyCritical Urgency = "Critical"
	UrgencyHigh     Urgency = "High"
	UrgencyMedium   Urgency = "Medium"
	UrgencyLow      Urgency = "Low"
	UrgencyWish     Urgency = "Wish"
)

var urgencies = []Urgency{UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow, UrgencyWish}

// Urgencies returns every urgency level, most severe first.
func Urgencies() []Urgency {
	out := make([]Urgency, len(urgencies))
	copy(out, urgencies)
	return out
}

// Rank orders urgencies for sorting: Critical is 0, Wish is 4.
// Unknown values sort after every known level.
func (u Urgency) Rank() int {
	for i, v := range urgencies {
		if v == u {
			return i
		}
	}
	return len(urgencies)
}

func (u Urgency) Valid() bool {
	return u.Rank() < len(urgencies)
}

// ParseUrgency matches s against the known levels case-insensitively.
// An empty string yields Medium.
func ParseUrgency(s string) (Urgency, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return UrgencyMedium, nil
	}
	for _, v := range urgencies {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}
