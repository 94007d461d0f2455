package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/model"
)

type ShoppingStore struct {
	s *jsonstore.Store[model.ShoppingItem, *model.ShoppingItem]
}

func NewShoppingStore(dir string, opts ...jsonstore.Option) *ShoppingStore {
	return &ShoppingStore{s: jsonstore.New[model.ShoppingItem](dir, "shopping-items", opts...)}
}

func (s *ShoppingStore) Load() error { return s.s.Load() }

func (s *ShoppingStore) Save() error {
	if err := s.s.Persist(); err != nil {
		return fmt.Errorf("save shopping items: %w", err)
	}
	return nil
}

func (s *ShoppingStore) List() ([]model.ShoppingItem, error) {
	items, err := s.s.List()
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	return items, nil
}

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	item, err := s.s.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

// ListByHousehold returns a household's items: still to buy first, then by
// urgency, newest first within a level.
func (s *ShoppingStore) ListByHousehold(householdID int64) ([]model.ShoppingItem, error) {
	items, err := s.s.Filter(func(i model.ShoppingItem) bool { return i.HouseholdID == householdID })
	if err != nil {
		return nil, fmt.Errorf("list shopping items by household: %w", err)
	}
	slices.SortStableFunc(items, byPurchasedThenUrgency)
	return items, nil
}

func (s *ShoppingStore) ListUnpurchased(householdID int64) ([]model.ShoppingItem, error) {
	items, err := s.s.Filter(func(i model.ShoppingItem) bool {
		return i.HouseholdID == householdID && !i.IsPurchased
	})
	if err != nil {
		return nil, fmt.Errorf("list unpurchased items: %w", err)
	}
	slices.SortStableFunc(items, byUrgencyThenNewest)
	return items, nil
}

func (s *ShoppingStore) ListByUrgency(householdID int64, urgency model.Urgency) ([]model.ShoppingItem, error) {
	items, err := s.s.Filter(func(i model.ShoppingItem) bool {
		return i.HouseholdID == householdID && i.Urgency == urgency
	})
	if err != nil {
		return nil, fmt.Errorf("list items by urgency: %w", err)
	}
	slices.SortStableFunc(items, newestFirst)
	return items, nil
}

// ListByCategory matches the category case-insensitively.
func (s *ShoppingStore) ListByCategory(householdID int64, category string) ([]model.ShoppingItem, error) {
	key := foldKey(category)
	items, err := s.s.Filter(func(i model.ShoppingItem) bool {
		return i.HouseholdID == householdID && foldKey(i.Category) == key
	})
	if err != nil {
		return nil, fmt.Errorf("list items by category: %w", err)
	}
	slices.SortStableFunc(items, byUrgencyThenNewest)
	return items, nil
}

// Search returns items whose name or category contains term, ignoring case.
// A blank term matches nothing.
func (s *ShoppingStore) Search(householdID int64, term string) ([]model.ShoppingItem, error) {
	key := foldKey(term)
	if key == "" {
		return nil, nil
	}
	items, err := s.s.Filter(func(i model.ShoppingItem) bool {
		return i.HouseholdID == householdID &&
			(strings.Contains(foldKey(i.Name), key) || strings.Contains(foldKey(i.Category), key))
	})
	if err != nil {
		return nil, fmt.Errorf("search shopping items: %w", err)
	}
	slices.SortStableFunc(items, byPurchasedThenUrgency)
	return items, nil
}

func (s *ShoppingStore) ListByCreator(userID int64) ([]model.ShoppingItem, error) {
	items, err := s.s.Filter(func(i model.ShoppingItem) bool { return i.CreatedByUserID == userID })
	if err != nil {
		return nil, fmt.Errorf("list items by creator: %w", err)
	}
	slices.SortStableFunc(items, newestFirst)
	return items, nil
}

func (s *ShoppingStore) Create(item *model.ShoppingItem) (*model.ShoppingItem, error) {
	created, err := s.s.Insert(item, itemDefaults, s.purchase, validated[model.ShoppingItem])
	if err != nil {
		return nil, fmt.Errorf("create shopping item: %w", err)
	}
	return created, nil
}

func (s *ShoppingStore) Update(item *model.ShoppingItem) (*model.ShoppingItem, error) {
	updated, err := s.s.Update(item, itemDefaults, s.purchase, validated[model.ShoppingItem])
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return updated, nil
}

func (s *ShoppingStore) Delete(id int64) (bool, error) {
	ok, err := s.s.Delete(id)
	if err != nil {
		return false, fmt.Errorf("delete shopping item: %w", err)
	}
	return ok, nil
}

func (s *ShoppingStore) purchase(_ []model.ShoppingItem, current, next *model.ShoppingItem) error {
	var wasOn bool
	var prev *time.Time
	if current != nil {
		wasOn, prev = current.IsPurchased, current.PurchasedDate
	} else {
		wasOn, prev = next.IsPurchased, next.PurchasedDate
	}
	next.PurchasedDate = transitionDate(wasOn, prev, next.IsPurchased, s.s.Now())
	return nil
}

func itemDefaults(_ []model.ShoppingItem, _ *model.ShoppingItem, next *model.ShoppingItem) error {
	next.Name = strings.TrimSpace(next.Name)
	next.Category = normalizeCategory(next.Category)
	if next.Urgency == "" {
		next.Urgency = model.UrgencyMedium
	}
	return nil
}

func newestFirst(a, b model.ShoppingItem) int {
	return cmp.Or(b.CreatedDate.Compare(a.CreatedDate), cmp.Compare(b.ID, a.ID))
}

func byUrgencyThenNewest(a, b model.ShoppingItem) int {
	return cmp.Or(cmp.Compare(a.Urgency.Rank(), b.Urgency.Rank()), newestFirst(a, b))
}

func byPurchasedThenUrgency(a, b model.ShoppingItem) int {
	if a.IsPurchased != b.IsPurchased {
		if a.IsPurchased {
			return 1
		}
		return -1
	}
	return byUrgencyThenNewest(a, b)
}
