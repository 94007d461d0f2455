package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/model"
)

type UserStore struct {
	s *jsonstore.Store[model.User, *model.User]
}

func NewUserStore(dir string, opts ...jsonstore.Option) *UserStore {
	return &UserStore{s: jsonstore.New[model.User](dir, "users", opts...)}
}

func (s *UserStore) Load() error { return s.s.Load() }

func (s *UserStore) Save() error {
	if err := s.s.Persist(); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (s *UserStore) List() ([]model.User, error) {
	users, err := s.s.List()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	u, err := s.s.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByUsername matches username case-insensitively. It returns nil when no
// user has that name.
func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	key := foldKey(username)
	users, err := s.s.Filter(func(u model.User) bool { return foldKey(u.Username) == key })
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// IsUsernameUnique reports whether no user other than excludeID holds
// username. Pass 0 to check against everyone.
func (s *UserStore) IsUsernameUnique(username string, excludeID int64) (bool, error) {
	key := foldKey(username)
	taken, err := s.s.Filter(func(u model.User) bool {
		return u.ID != excludeID && foldKey(u.Username) == key
	})
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return len(taken) == 0, nil
}

// ListByHousehold returns the members of a household ordered by name.
func (s *UserStore) ListByHousehold(householdID int64) ([]model.User, error) {
	users, err := s.s.Filter(func(u model.User) bool { return u.HouseholdID == householdID })
	if err != nil {
		return nil, fmt.Errorf("list users by household: %w", err)
	}
	slices.SortStableFunc(users, func(a, b model.User) int {
		return strings.Compare(foldKey(a.Name), foldKey(b.Name))
	})
	return users, nil
}

func (s *UserStore) Create(u *model.User) (*model.User, error) {
	created, err := s.s.Insert(u, trimUsername, s.stampJoined, uniqueUsername, validated[model.User])
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserStore) Update(u *model.User) (*model.User, error) {
	updated, err := s.s.Update(u, trimUsername, uniqueUsername, validated[model.User])
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (s *UserStore) Delete(id int64) (bool, error) {
	ok, err := s.s.Delete(id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return ok, nil
}

func (s *UserStore) stampJoined(_ []model.User, _ *model.User, next *model.User) error {
	if next.JoinedDate.IsZero() {
		next.JoinedDate = next.CreatedDate
	}
	return nil
}

func trimUsername(_ []model.User, _ *model.User, next *model.User) error {
	next.Username = strings.TrimSpace(next.Username)
	return nil
}

func uniqueUsername(all []model.User, _ *model.User, next *model.User) error {
	key := foldKey(next.Username)
	for i := range all {
		if all[i].ID != next.ID && foldKey(all[i].Username) == key {
			return fault.Duplicate("USERNAME_EXISTS", fmt.Sprintf("username %q is already taken", next.Username))
		}
	}
	return nil
}

// UpdateMembership moves the stored user with the given id into
// householdID with the given admin flag. Every other field is taken from
// storage. It fails with HOUSEHOLD_FULL when the household already has
// capacity other members, and with ALREADY_IN_HOUSEHOLD when the user
// belongs to a different household. Counting and writing happen under the
// same lock, so concurrent joins cannot overfill.
func (s *UserStore) UpdateMembership(id, householdID int64, isAdmin bool, capacity int) (*model.User, error) {
	join := func(all []model.User, current *model.User, next *model.User) error {
		if householdID != 0 && current.HouseholdID != 0 && current.HouseholdID != householdID {
			return fault.Rule("ALREADY_IN_HOUSEHOLD", "leave your current household before joining another")
		}
		modified := next.ModifiedDate
		*next = *current
		next.ModifiedDate = modified
		next.HouseholdID = householdID
		next.IsAdmin = isAdmin
		if householdID == 0 {
			return nil
		}
		members := 0
		for i := range all {
			if all[i].ID != id && all[i].HouseholdID == householdID {
				members++
			}
		}
		if members >= capacity {
			return fault.Rule("HOUSEHOLD_FULL", "household has reached its maximum number of members")
		}
		return nil
	}
	updated, err := s.s.Update(&model.User{ID: id}, join, validated[model.User])
	if err != nil {
		return nil, fmt.Errorf("update membership: %w", err)
	}
	return updated, nil
}

// AddPoints credits delta points to the stored user with the given id. The
// rest of the record is taken from storage, not from the caller.
func (s *UserStore) AddPoints(id int64, delta int) (*model.User, error) {
	credit := func(_ []model.User, current *model.User, next *model.User) error {
		// current is a private copy made for this update, so it can be
		// adopted wholesale.
		modified := next.ModifiedDate
		*next = *current
		next.ModifiedDate = modified
		next.Points += delta
		if next.Points < 0 {
			next.Points = 0
		}
		return nil
	}
	updated, err := s.s.Update(&model.User{ID: id}, credit)
	if err != nil {
		return nil, fmt.Errorf("add points: %w", err)
	}
	return updated, nil
}
