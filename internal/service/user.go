package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/session"
)

type UserService struct {
	d Deps
}

func NewUserService(d Deps) *UserService {
	return &UserService{d: d.withDefaults()}
}

// Get returns a user visible to the session: the user themself or someone
// in the same household.
func (s *UserService) Get(sess *session.Session, userID int64) (*model.User, error) {
	me, err := s.d.user(sess)
	if err != nil {
		return nil, err
	}
	if userID == me.ID {
		return me, nil
	}
	return s.householdMember(userID, me.HouseholdID)
}

// Delete removes a member account. Admins only; the last admin of a
// household cannot be deleted.
func (s *UserService) Delete(sess *session.Session, userID int64) error {
	admin, err := s.d.admin(sess, "delete users")
	if err != nil {
		return err
	}
	target, err := s.householdMember(userID, admin.HouseholdID)
	if err != nil {
		return err
	}
	if target.IsAdmin {
		members, err := s.d.Users.ListByHousehold(admin.HouseholdID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		admins := 0
		for _, m := range members {
			if m.IsAdmin {
				admins++
			}
		}
		if admins <= 1 {
			return fault.Rule("LAST_ADMIN", "cannot delete the last admin of the household")
		}
	}

	if _, err := s.d.Users.Delete(userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.d.log(sess).Info("user deleted", "target_id", userID)
	return nil
}

// RemoveFromHousehold detaches a regular member from the household without
// deleting the account.
func (s *UserService) RemoveFromHousehold(sess *session.Session, userID int64) error {
	admin, err := s.d.admin(sess, "remove members")
	if err != nil {
		return err
	}
	target, err := s.householdMember(userID, admin.HouseholdID)
	if err != nil {
		return err
	}
	if target.IsAdmin {
		return fault.Rule("CANNOT_REMOVE_ADMIN", "admins cannot be removed from the household")
	}

	target.HouseholdID = 0
	target.IsAdmin = false
	if _, err := s.d.Users.Update(target); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	s.d.log(sess).Info("member removed", "target_id", userID)
	return nil
}

type Stats struct {
	Points                int     `json:"points"`
	ChoresCompleted       int     `json:"chores_completed"`
	ChoresCreated         int     `json:"chores_created"`
	ItemsAdded            int     `json:"items_added"`
	AverageCompletionDays float64 `json:"average_completion_days"`
}

// Stats summarises a user's activity. userID 0 means the session user.
func (s *UserService) Stats(sess *session.Session, userID int64) (Stats, error) {
	if sess != nil && userID == 0 {
		userID = sess.UserID
	}
	u, err := s.Get(sess, userID)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Points: u.Points}

	assigned, err := s.d.Chores.ListByAssignee(u.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	var totalDays float64
	for _, c := range assigned {
		if c.IsCompleted && c.CompletedDate != nil {
			st.ChoresCompleted++
			totalDays += c.CompletedDate.Sub(c.CreatedDate).Hours() / 24
		}
	}
	if st.ChoresCompleted > 0 {
		st.AverageCompletionDays = totalDays / float64(st.ChoresCompleted)
	}

	created, err := s.d.Chores.ListByCreator(u.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	st.ChoresCreated = len(created)

	items, err := s.d.Shopping.ListByCreator(u.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	st.ItemsAdded = len(items)
	return st, nil
}

// Leaderboard ranks the household's members by points.
func (s *UserService) Leaderboard(sess *session.Session) ([]model.User, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	members, err := s.d.Users.ListByHousehold(u.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	slices.SortStableFunc(members, func(a, b model.User) int {
		return cmp.Or(cmp.Compare(b.Points, a.Points), strings.Compare(a.Name, b.Name))
	})
	return members, nil
}

func (s *UserService) householdMember(userID, householdID int64) (*model.User, error) {
	u, err := s.d.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || householdID == 0 || u.HouseholdID != householdID {
		return nil, fault.Missing("USER_NOT_FOUND", "user not found in your household")
	}
	return u, nil
}
