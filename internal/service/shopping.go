package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/grocery"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/session"
	"github.com/dukerupert/homedash/internal/validation"
)

// MaxPrice is the highest price accepted for a shopping item.
const MaxPrice = 10000

type ShoppingService struct {
	d Deps
}

func NewShoppingService(d Deps) *ShoppingService {
	return &ShoppingService{d: d.withDefaults()}
}

type AddItemInput struct {
	Name     string
	Category string
	Price    float64
	Urgency  model.Urgency
}

// Add puts an item on the household's list. A blank category is suggested
// from the item name.
func (s *ShoppingService) Add(sess *session.Session, in AddItemInput) (*model.ShoppingItem, error) {
	if err := validation.Length("name", in.Name, 1, 200); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = grocery.Categorize(in.Name)
	}
	if err := validation.Length("category", in.Category, 1, 50); err != nil {
		return nil, err
	}
	if in.Price < 0 || in.Price > MaxPrice {
		return nil, fault.Validation("price", fmt.Sprintf("must be between 0 and %d", MaxPrice))
	}
	urgency, err := parseUrgency(in.Urgency)
	if err != nil {
		return nil, err
	}

	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}

	item, err := s.d.Shopping.Create(&model.ShoppingItem{
		Name:            in.Name,
		Category:        in.Category,
		Price:           in.Price,
		Urgency:         urgency,
		CreatedByUserID: u.ID,
		HouseholdID:     u.HouseholdID,
	})
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	if err := s.d.Shopping.Save(); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	s.d.log(sess).Info("shopping item added", "item_id", item.ID, "category", item.Category, "urgency", item.Urgency)
	return item, nil
}

func (s *ShoppingService) MarkPurchased(sess *session.Session, itemID int64) (*model.ShoppingItem, error) {
	return s.setPurchased(sess, itemID, true)
}

func (s *ShoppingService) MarkUnpurchased(sess *session.Session, itemID int64) (*model.ShoppingItem, error) {
	return s.setPurchased(sess, itemID, false)
}

func (s *ShoppingService) setPurchased(sess *session.Session, itemID int64, purchased bool) (*model.ShoppingItem, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	item, err := s.get(itemID, u.HouseholdID)
	if err != nil {
		return nil, err
	}

	item.IsPurchased = purchased
	updated, err := s.d.Shopping.Update(item)
	if err != nil {
		return nil, fmt.Errorf("mark item: %w", err)
	}
	if err := s.d.Shopping.Save(); err != nil {
		return nil, fmt.Errorf("mark item: %w", err)
	}

	s.d.log(sess).Info("shopping item marked", "item_id", itemID, "purchased", purchased)
	return updated, nil
}

// Delete removes an item. Only its creator or a household admin may.
func (s *ShoppingService) Delete(sess *session.Session, itemID int64) error {
	u, err := s.d.member(sess)
	if err != nil {
		return err
	}
	item, err := s.get(itemID, u.HouseholdID)
	if err != nil {
		return err
	}
	if !u.IsAdmin && item.CreatedByUserID != u.ID {
		return fault.Forbidden("delete items added by someone else")
	}

	if _, err := s.d.Shopping.Delete(itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := s.d.Shopping.Save(); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.d.log(sess).Info("shopping item deleted", "item_id", itemID)
	return nil
}

func (s *ShoppingService) HouseholdItems(sess *session.Session) ([]model.ShoppingItem, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	return wrapList("household items")(s.d.Shopping.ListByHousehold(u.HouseholdID))
}

// ToBuy lists the items not yet purchased, most urgent first.
func (s *ShoppingService) ToBuy(sess *session.Session) ([]model.ShoppingItem, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	return wrapList("items to buy")(s.d.Shopping.ListUnpurchased(u.HouseholdID))
}

// Search matches term against item names and categories. A blank term
// returns nothing.
func (s *ShoppingService) Search(sess *session.Session, term string) ([]model.ShoppingItem, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	return wrapList("search items")(s.d.Shopping.Search(u.HouseholdID, term))
}

func (s *ShoppingService) ByUrgency(sess *session.Session, urgency model.Urgency) ([]model.ShoppingItem, error) {
	if !urgency.Valid() {
		return nil, fault.Validation("urgency", fmt.Sprintf("unknown urgency %q", urgency))
	}
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	return wrapList("items by urgency")(s.d.Shopping.ListByUrgency(u.HouseholdID, urgency))
}

func (s *ShoppingService) ByCategory(sess *session.Session, category string) ([]model.ShoppingItem, error) {
	if strings.TrimSpace(category) == "" {
		return nil, nil
	}
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	return wrapList("items by category")(s.d.Shopping.ListByCategory(u.HouseholdID, category))
}

type SpendingSummary struct {
	ToBuyCount     int     `json:"to_buy_count"`
	ToBuyCost      float64 `json:"to_buy_cost"`
	PurchasedCount int     `json:"purchased_count"`
	Spent          float64 `json:"spent"`
}

func (s *ShoppingService) Summary(sess *session.Session) (SpendingSummary, error) {
	items, err := s.HouseholdItems(sess)
	if err != nil {
		return SpendingSummary{}, err
	}
	var sum SpendingSummary
	for _, i := range items {
		if i.IsPurchased {
			sum.PurchasedCount++
			sum.Spent += i.Price
		} else {
			sum.ToBuyCount++
			sum.ToBuyCost += i.Price
		}
	}
	return sum, nil
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// CategoryBreakdown groups the household's items by category, largest
// total first.
func (s *ShoppingService) CategoryBreakdown(sess *session.Session) ([]CategoryTotal, error) {
	items, err := s.HouseholdItems(sess)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]*CategoryTotal)
	for _, i := range items {
		ct, ok := byCategory[i.Category]
		if !ok {
			ct = &CategoryTotal{Category: i.Category}
			byCategory[i.Category] = ct
		}
		ct.Count++
		ct.Total += i.Price
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		return cmp.Or(cmp.Compare(b.Total, a.Total), strings.Compare(a.Category, b.Category))
	})
	return out, nil
}

func (s *ShoppingService) get(id, householdID int64) (*model.ShoppingItem, error) {
	item, err := s.d.Shopping.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil || item.HouseholdID != householdID {
		return nil, fault.Missing("ITEM_NOT_FOUND", "shopping item not found")
	}
	return item, nil
}

func wrapList(op string) func([]model.ShoppingItem, error) ([]model.ShoppingItem, error) {
	return func(items []model.ShoppingItem, err error) ([]model.ShoppingItem, error) {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return items, nil
	}
}
