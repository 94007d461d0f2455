package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/model"
)

type ChoreStore struct {
	s *jsonstore.Store[model.Chore, *model.Chore]
}

func NewChoreStore(dir string, opts ...jsonstore.Option) *ChoreStore {
	return &ChoreStore{s: jsonstore.New[model.Chore](dir, "chores", opts...)}
}

func (s *ChoreStore) Load() error { return s.s.Load() }

func (s *ChoreStore) Save() error {
	if err := s.s.Persist(); err != nil {
		return fmt.Errorf("save chores: %w", err)
	}
	return nil
}

func (s *ChoreStore) List() ([]model.Chore, error) {
	chores, err := s.s.List()
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	return chores, nil
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	c, err := s.s.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// ListByHousehold returns a household's chores, incomplete first, then by
// due date.
func (s *ChoreStore) ListByHousehold(householdID int64) ([]model.Chore, error) {
	chores, err := s.s.Filter(func(c model.Chore) bool { return c.HouseholdID == householdID })
	if err != nil {
		return nil, fmt.Errorf("list chores by household: %w", err)
	}
	slices.SortStableFunc(chores, byCompletionThenDue)
	return chores, nil
}

// ListByAssignee returns the chores assigned to a user, incomplete first,
// then by due date.
func (s *ChoreStore) ListByAssignee(userID int64) ([]model.Chore, error) {
	chores, err := s.s.Filter(func(c model.Chore) bool { return c.AssignedToUserID == userID })
	if err != nil {
		return nil, fmt.Errorf("list chores by assignee: %w", err)
	}
	slices.SortStableFunc(chores, byCompletionThenDue)
	return chores, nil
}

func (s *ChoreStore) ListByCreator(userID int64) ([]model.Chore, error) {
	chores, err := s.s.Filter(func(c model.Chore) bool { return c.CreatedByUserID == userID })
	if err != nil {
		return nil, fmt.Errorf("list chores by creator: %w", err)
	}
	slices.SortStableFunc(chores, byCompletionThenDue)
	return chores, nil
}

// ListOverdue returns incomplete chores of a household whose due date is
// before now, earliest first.
func (s *ChoreStore) ListOverdue(householdID int64, now time.Time) ([]model.Chore, error) {
	chores, err := s.s.Filter(func(c model.Chore) bool {
		return c.HouseholdID == householdID && !c.IsCompleted && c.DueDate.Before(now)
	})
	if err != nil {
		return nil, fmt.Errorf("list overdue chores: %w", err)
	}
	slices.SortStableFunc(chores, byDue)
	return chores, nil
}

func (s *ChoreStore) ListIncomplete(householdID int64) ([]model.Chore, error) {
	chores, err := s.s.Filter(func(c model.Chore) bool {
		return c.HouseholdID == householdID && !c.IsCompleted
	})
	if err != nil {
		return nil, fmt.Errorf("list incomplete chores: %w", err)
	}
	slices.SortStableFunc(chores, byDue)
	return chores, nil
}

func (s *ChoreStore) Create(c *model.Chore) (*model.Chore, error) {
	created, err := s.s.Insert(c, choreDefaults, s.completion, validated[model.Chore])
	if err != nil {
		return nil, fmt.Errorf("create chore: %w", err)
	}
	return created, nil
}

func (s *ChoreStore) Update(c *model.Chore) (*model.Chore, error) {
	updated, err := s.s.Update(c, choreDefaults, s.completion, validated[model.Chore])
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return updated, nil
}

// Complete marks the stored chore with the given id completed on behalf of
// userID. The record is taken from storage, so a concurrent reassignment is
// never overwritten. It fails with CHORE_ALREADY_COMPLETED if the chore was
// completed first and with NOT_ASSIGNED_TO_CHORE if it no longer belongs to
// userID.
func (s *ChoreStore) Complete(id, userID int64) (*model.Chore, error) {
	once := func(_ []model.Chore, current, next *model.Chore) error {
		if current.IsCompleted {
			return fault.Rule("CHORE_ALREADY_COMPLETED", "this chore has already been completed")
		}
		if current.AssignedToUserID != userID {
			return fault.Rule("NOT_ASSIGNED_TO_CHORE", "you are not assigned to complete this chore")
		}
		adopt(current, next)
		next.IsCompleted = true
		return nil
	}
	done, err := s.s.Update(&model.Chore{ID: id}, once, s.completion, validated[model.Chore])
	if err != nil {
		return nil, fmt.Errorf("complete chore: %w", err)
	}
	return done, nil
}

// Reassign hands the stored chore with the given id to userID, leaving every
// other field as stored.
func (s *ChoreStore) Reassign(id, userID int64) (*model.Chore, error) {
	assign := func(_ []model.Chore, current, next *model.Chore) error {
		adopt(current, next)
		next.AssignedToUserID = userID
		return nil
	}
	updated, err := s.s.Update(&model.Chore{ID: id}, assign, s.completion, validated[model.Chore])
	if err != nil {
		return nil, fmt.Errorf("reassign chore: %w", err)
	}
	return updated, nil
}

// adopt copies the stored record into next, keeping the modification stamp
// the store already set. current is a private copy made for this update.
func adopt(current, next *model.Chore) {
	modified := next.ModifiedDate
	*next = *current
	next.ModifiedDate = modified
}

func (s *ChoreStore) Delete(id int64) (bool, error) {
	ok, err := s.s.Delete(id)
	if err != nil {
		return false, fmt.Errorf("delete chore: %w", err)
	}
	return ok, nil
}

func (s *ChoreStore) completion(_ []model.Chore, current, next *model.Chore) error {
	var wasDone bool
	var prev *time.Time
	if current != nil {
		wasDone, prev = current.IsCompleted, current.CompletedDate
	} else {
		// A record inserted as already completed keeps a supplied date.
		wasDone, prev = next.IsCompleted, next.CompletedDate
	}
	next.CompletedDate = transitionDate(wasDone, prev, next.IsCompleted, s.s.Now())
	return nil
}

func choreDefaults(_ []model.Chore, _ *model.Chore, next *model.Chore) error {
	next.Title = strings.TrimSpace(next.Title)
	next.Description = strings.TrimSpace(next.Description)
	if next.PointsValue <= 0 {
		next.PointsValue = model.DefaultChorePoints
	}
	if next.Urgency == "" {
		next.Urgency = model.UrgencyMedium
	}
	return nil
}

// transitionDate derives a completion or purchase date: cleared when the
// flag is off, kept while it stays on, set to now when it turns on.
func transitionDate(wasOn bool, prev *time.Time, on bool, now time.Time) *time.Time {
	switch {
	case !on:
		return nil
	case wasOn && prev != nil:
		t := *prev
		return &t
	default:
		return &now
	}
}

func byDue(a, b model.Chore) int {
	return a.DueDate.Compare(b.DueDate)
}

func byCompletionThenDue(a, b model.Chore) int {
	if a.IsCompleted != b.IsCompleted {
		if a.IsCompleted {
			return 1
		}
		return -1
	}
	return cmp.Or(byDue(a, b), cmp.Compare(a.ID, b.ID))
}
