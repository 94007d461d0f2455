package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/session"
	"github.com/dukerupert/homedash/internal/validation"
)

type HouseholdService struct {
	d Deps
}

func NewHouseholdService(d Deps) *HouseholdService {
	return &HouseholdService{d: d.withDefaults()}
}

type CreateHouseholdInput struct {
	Name       string
	Password   string
	Address    string
	MaxMembers int
}

// Create makes a new household and turns its creator into the household's
// admin. The household and the creator are saved as two separate writes.
func (s *HouseholdService) Create(sess *session.Session, in CreateHouseholdInput) (*model.Household, error) {
	if err := validation.Length("name", in.Name, 3, 100); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fault.Validation("password", "household password is required")
	}
	if err := validation.Length("address", in.Address, 0, 500); err != nil {
		return nil, err
	}
	if in.MaxMembers == 0 {
		in.MaxMembers = model.DefaultMaxMembers
	}
	if err := validation.Range("max_members", in.MaxMembers, 2, 50); err != nil {
		return nil, err
	}

	creator, err := s.d.user(sess)
	if err != nil {
		return nil, err
	}
	if creator.HouseholdID != 0 {
		return nil, fault.Rule("ALREADY_IN_HOUSEHOLD", "you already belong to a household")
	}

	unique, err := s.d.Households.IsNameUnique(in.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	if !unique {
		return nil, fault.Duplicate("HOUSEHOLD_NAME_EXISTS", "a household with this name already exists")
	}

	hash, err := s.d.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	h, err := s.d.Households.Create(&model.Household{
		Name:         in.Name,
		Address:      in.Address,
		PasswordHash: hash,
		MaxMembers:   in.MaxMembers,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	if err := s.d.Households.Save(); err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}

	creator.HouseholdID = h.ID
	creator.IsAdmin = true
	updated, err := s.d.Users.Update(creator)
	if err != nil {
		return nil, fmt.Errorf("assign household creator: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return nil, fmt.Errorf("assign household creator: %w", err)
	}
	sess.Refresh(updated)

	s.d.log(sess).Info("household created", "household_id", h.ID, "name", h.Name)
	return h, nil
}

// Join adds the session's user to the named household as a regular member.
func (s *HouseholdService) Join(sess *session.Session, name, plaintext string) (*model.Household, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fault.Validation("name", "household name is required")
	}
	if plaintext == "" {
		return nil, fault.Validation("password", "household password is required")
	}

	u, err := s.d.user(sess)
	if err != nil {
		return nil, err
	}

	h, err := s.d.Households.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("join household: %w", err)
	}
	if h == nil {
		return nil, fault.Missing("HOUSEHOLD_NOT_FOUND", "household not found")
	}
	if !h.IsActive {
		return nil, fault.Rule("HOUSEHOLD_INACTIVE", "this household is no longer active")
	}
	if !s.d.Hasher.Verify(plaintext, h.PasswordHash) {
		s.d.log(sess).Warn("household join rejected", "household_id", h.ID, "reason", "password")
		return nil, fault.Domain(fault.Unauthorized, "INVALID_HOUSEHOLD_PASSWORD", "invalid household password")
	}
	switch u.HouseholdID {
	case 0:
	case h.ID:
		return nil, fault.Rule("ALREADY_MEMBER", "you are already a member of this household")
	default:
		return nil, fault.Rule("ALREADY_IN_HOUSEHOLD", "leave your current household before joining another")
	}

	updated, err := s.d.Users.UpdateMembership(u.ID, h.ID, false, h.MaxMembers)
	if err != nil {
		if errors.Is(err, fault.BusinessRuleViolation) {
			s.d.log(sess).Warn("household join rejected", "household_id", h.ID, "reason", "full", "max_members", h.MaxMembers)
		}
		return nil, fmt.Errorf("join household: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return nil, fmt.Errorf("join household: %w", err)
	}
	sess.Refresh(updated)

	s.d.log(sess).Info("household joined", "household_id", h.ID)
	return h, nil
}

// Get returns the session user's household.
func (s *HouseholdService) Get(sess *session.Session) (*model.Household, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	h, err := s.d.Households.GetByID(u.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	if h == nil {
		return nil, fault.Missing("HOUSEHOLD_NOT_FOUND", "household not found")
	}
	return h, nil
}

// Members lists the household's users, admins first, then by name.
func (s *HouseholdService) Members(sess *session.Session) ([]model.User, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	members, err := s.d.Users.ListByHousehold(u.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	slices.SortStableFunc(members, func(a, b model.User) int {
		switch {
		case a.IsAdmin == b.IsAdmin:
			return 0
		case a.IsAdmin:
			return -1
		default:
			return 1
		}
	})
	return members, nil
}

// IsAdmin reports whether userID administers householdID.
func (s *HouseholdService) IsAdmin(userID, householdID int64) (bool, error) {
	u, err := s.d.Users.GetByID(userID)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return u != nil && u.IsAdmin && u.HouseholdID == householdID, nil
}

type UpdateHouseholdInput struct {
	Name       string
	Address    string
	MaxMembers int
}

func (s *HouseholdService) Update(sess *session.Session, in UpdateHouseholdInput) (*model.Household, error) {
	if err := validation.Length("name", in.Name, 3, 100); err != nil {
		return nil, err
	}
	if err := validation.Length("address", in.Address, 0, 500); err != nil {
		return nil, err
	}
	if err := validation.Range("max_members", in.MaxMembers, 2, 50); err != nil {
		return nil, err
	}

	admin, err := s.d.admin(sess, "update the household")
	if err != nil {
		return nil, err
	}
	h, err := s.Get(sess)
	if err != nil {
		return nil, err
	}

	members, err := s.d.Users.ListByHousehold(admin.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	if in.MaxMembers < len(members) {
		return nil, fault.Rule("MAX_MEMBERS_BELOW_CURRENT",
			fmt.Sprintf("the household already has %d members", len(members)))
	}
	unique, err := s.d.Households.IsNameUnique(in.Name, h.ID)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	if !unique {
		return nil, fault.Duplicate("HOUSEHOLD_NAME_EXISTS", "a household with this name already exists")
	}

	h.Name = in.Name
	h.Address = in.Address
	h.MaxMembers = in.MaxMembers
	updated, err := s.d.Households.Update(h)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	if err := s.d.Households.Save(); err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}

	s.d.log(sess).Info("household updated", "household_id", h.ID)
	return updated, nil
}

// SetActive switches the household's active flag. Inactive households
// cannot be joined.
func (s *HouseholdService) SetActive(sess *session.Session, active bool) (*model.Household, error) {
	if _, err := s.d.admin(sess, "change the household status"); err != nil {
		return nil, err
	}
	h, err := s.Get(sess)
	if err != nil {
		return nil, err
	}

	h.IsActive = active
	updated, err := s.d.Households.Update(h)
	if err != nil {
		return nil, fmt.Errorf("set household active: %w", err)
	}
	if err := s.d.Households.Save(); err != nil {
		return nil, fmt.Errorf("set household active: %w", err)
	}

	s.d.log(sess).Info("household status changed", "household_id", h.ID, "active", active)
	return updated, nil
}
