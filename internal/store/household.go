package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/model"
)

type HouseholdStore struct {
	s *jsonstore.Store[model.Household, *model.Household]
}

func NewHouseholdStore(dir string, opts ...jsonstore.Option) *HouseholdStore {
	return &HouseholdStore{s: jsonstore.New[model.Household](dir, "households", opts...)}
}

func (s *HouseholdStore) Load() error { return s.s.Load() }

func (s *HouseholdStore) Save() error {
	if err := s.s.Persist(); err != nil {
		return fmt.Errorf("save households: %w", err)
	}
	return nil
}

func (s *HouseholdStore) List() ([]model.Household, error) {
	hs, err := s.s.List()
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	return hs, nil
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	h, err := s.s.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByName(name string) (*model.Household, error) {
	key := foldKey(name)
	hs, err := s.s.Filter(func(h model.Household) bool { return foldKey(h.Name) == key })
	if err != nil {
		return nil, fmt.Errorf("get household by name: %w", err)
	}
	if len(hs) == 0 {
		return nil, nil
	}
	return &hs[0], nil
}

func (s *HouseholdStore) IsNameUnique(name string, excludeID int64) (bool, error) {
	key := foldKey(name)
	taken, err := s.s.Filter(func(h model.Household) bool {
		return h.ID != excludeID && foldKey(h.Name) == key
	})
	if err != nil {
		return false, fmt.Errorf("check household name: %w", err)
	}
	return len(taken) == 0, nil
}

// ListActive returns active households ordered by name.
func (s *HouseholdStore) ListActive() ([]model.Household, error) {
	hs, err := s.s.Filter(func(h model.Household) bool { return h.IsActive })
	if err != nil {
		return nil, fmt.Errorf("list active households: %w", err)
	}
	slices.SortStableFunc(hs, func(a, b model.Household) int {
		return strings.Compare(foldKey(a.Name), foldKey(b.Name))
	})
	return hs, nil
}

func (s *HouseholdStore) Create(h *model.Household) (*model.Household, error) {
	created, err := s.s.Insert(h, householdDefaults, uniqueHouseholdName, validated[model.Household])
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	return created, nil
}

func (s *HouseholdStore) Update(h *model.Household) (*model.Household, error) {
	updated, err := s.s.Update(h, householdDefaults, uniqueHouseholdName, validated[model.Household])
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return updated, nil
}

func (s *HouseholdStore) Delete(id int64) (bool, error) {
	ok, err := s.s.Delete(id)
	if err != nil {
		return false, fmt.Errorf("delete household: %w", err)
	}
	return ok, nil
}

func householdDefaults(_ []model.Household, _ *model.Household, next *model.Household) error {
	next.Name = strings.TrimSpace(next.Name)
	next.Address = strings.TrimSpace(next.Address)
	if next.MaxMembers <= 0 {
		next.MaxMembers = model.DefaultMaxMembers
	}
	return nil
}

func uniqueHouseholdName(all []model.Household, _ *model.Household, next *model.Household) error {
	key := foldKey(next.Name)
	for i := range all {
		if all[i].ID != next.ID && foldKey(all[i].Name) == key {
			return fault.Duplicate("HOUSEHOLD_NAME_EXISTS", fmt.Sprintf("a household named %q already exists", next.Name))
		}
	}
	return nil
}
