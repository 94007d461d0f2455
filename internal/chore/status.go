package chore

import (
	"time"

	"github.com/dukerupert/homedash/internal/model"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

type ChoreWithStatus struct {
	model.Chore
	Status       Status `json:"status"`
	AssigneeName string `json:"assignee_name"`
}

// ComputeStatus classifies a chore at the given instant. A chore is overdue
// once its due date has passed without completion.
func ComputeStatus(c model.Chore, now time.Time) Status {
	switch {
	case c.IsCompleted:
		return StatusCompleted
	case c.DueDate.Before(now):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// DaysEarly is the number of whole days between completion and the due
// date. It is zero or negative for on-time-to-late completions.
func DaysEarly(c model.Chore, completedAt time.Time) int {
	return int(c.DueDate.Sub(completedAt) / (24 * time.Hour))
}

// AwardedPoints returns the points earned for completing c at completedAt:
// half again for three or more days early, a quarter extra for one or more.
func AwardedPoints(c model.Chore, completedAt time.Time) int {
	days := DaysEarly(c, completedAt)
	switch {
	case days >= 3:
		return int(float64(c.PointsValue) * 1.5)
	case days >= 1:
		return int(float64(c.PointsValue) * 1.25)
	default:
		return c.PointsValue
	}
}

// DaysOverdue counts whole days past due; zero when not overdue.
func DaysOverdue(c model.Chore, now time.Time) int {
	if ComputeStatus(c, now) != StatusOverdue {
		return 0
	}
	return int(now.Sub(c.DueDate) / (24 * time.Hour))
}

// IsDueOnDate reports whether c falls due on the calendar day of date.
func IsDueOnDate(c model.Chore, date time.Time) bool {
	day := startOfDay(date)
	due := c.DueDate.In(date.Location())
	return !due.Before(day) && due.Before(day.AddDate(0, 0, 1))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
