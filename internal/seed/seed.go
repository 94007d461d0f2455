// Package seed fills empty collections with demo households, members,
// chores and shopping items.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/service"
)

// Report counts the records inserted by Run. A zero count means the
// collection already had data and was left alone.
type Report struct {
	Households int `json:"households"`
	Users      int `json:"users"`
	Chores     int `json:"chores"`
	Items      int `json:"items"`
}

type household struct {
	name, address, password string
	maxMembers              int
	age                     int // days
}

type user struct {
	name, username, email, password string
	householdID                     int64
	admin                           bool
	points                          int
	age                             int // days
}

var households = []household{
	{"The Smith Family", "123 Main Street, Anytown, USA", "smith123", 10, 30},
	{"Johnson Household", "456 Oak Avenue, Springfield, USA", "johnson456", 8, 20},
	{"Demo Family", "789 Demo Lane, Example City, USA", "demo123", 15, 10},
}

var users = []user{
	{"John Smith", "johnsmith", "john.smith@example.com", "password123", 1, true, 150, 30},
	{"Jane Smith", "janesmith", "jane.smith@example.com", "password123", 1, false, 120, 28},
	{"Alex Smith", "alexsmith", "alex.smith@example.com", "password123", 1, false, 80, 25},
	{"Mike Johnson", "mikejohnson", "mike.johnson@example.com", "password456", 2, true, 200, 20},
	{"Sarah Johnson", "sarahjohnson", "sarah.johnson@example.com", "password456", 2, false, 180, 18},
	{"Demo Admin", "admin", "admin@demo.com", "admin123", 3, true, 500, 10},
	{"Demo User", "demo", "demo@demo.com", "demo123", 3, false, 250, 8},
}

// Run seeds every empty collection. Ids in the demo data refer to each other
// by position, so a partially seeded directory may end up with dangling
// references.
func Run(ctx context.Context, d service.Deps) (Report, error) {
	var r Report
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	now := d.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	logger := d.Logger.With("component", "seed")

	steps := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{"households", func(ctx context.Context) (int, error) { return seedHouseholds(ctx, d, now) }},
		{"users", func(ctx context.Context) (int, error) { return seedUsers(ctx, d, now) }},
		{"chores", func(context.Context) (int, error) { return seedChores(d, now, today) }},
		{"shopping items", func(context.Context) (int, error) { return seedItems(d, now) }},
	}
	counts := []*int{&r.Households, &r.Users, &r.Chores, &r.Items}
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		n, err := step.fn(ctx)
		if err != nil {
			return r, fmt.Errorf("seed %s: %w", step.name, err)
		}
		*counts[i] = n
		if n == 0 {
			logger.Info("collection already has data, skipping", "collection", step.name)
			continue
		}
		logger.Info("seeded collection", "collection", step.name, "records", n)
	}
	return r, nil
}

// hashAll hashes the given passwords concurrently; bcrypt dominates seeding time.
func hashAll(ctx context.Context, d service.Deps, plain []string) ([]string, error) {
	out := make([]string, len(plain))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range plain {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := d.Hasher.Hash(p)
			if err != nil {
				return err
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func seedHouseholds(ctx context.Context, d service.Deps, now time.Time) (int, error) {
	existing, err := d.Households.List()
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	plain := make([]string, len(households))
	for i, h := range households {
		plain[i] = h.password
	}
	hashes, err := hashAll(ctx, d, plain)
	if err != nil {
		return 0, err
	}
	for i, h := range households {
		_, err := d.Households.Create(&model.Household{
			Name:         h.name,
			Address:      h.address,
			PasswordHash: hashes[i],
			MaxMembers:   h.maxMembers,
			IsActive:     true,
			CreatedDate:  now.AddDate(0, 0, -h.age),
		})
		if err != nil {
			return 0, err
		}
	}
	return len(households), d.Households.Save()
}

func seedUsers(ctx context.Context, d service.Deps, now time.Time) (int, error) {
	existing, err := d.Users.List()
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	plain := make([]string, len(users))
	for i, u := range users {
		plain[i] = u.password
	}
	hashes, err := hashAll(ctx, d, plain)
	if err != nil {
		return 0, err
	}
	for i, u := range users {
		joined := now.AddDate(0, 0, -u.age)
		_, err := d.Users.Create(&model.User{
			Name:         u.name,
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hashes[i],
			HouseholdID:  u.householdID,
			IsAdmin:      u.admin,
			Points:       u.points,
			JoinedDate:   joined,
			CreatedDate:  joined,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(users), d.Users.Save()
}

func seedChores(d service.Deps, now, today time.Time) (int, error) {
	existing, err := d.Chores.List()
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	done := now.Add(-2 * time.Hour)
	chores := []model.Chore{
		{Title: "Take out the trash", Description: "Empty all trash bins and take bags to the curb",
			AssignedToUserID: 1, CreatedByUserID: 1, HouseholdID: 1, DueDate: today.AddDate(0, 0, 1),
			Urgency: model.UrgencyMedium, PointsValue: 10, CreatedDate: now.AddDate(0, 0, -2)},
		{Title: "Vacuum living room", Description: "Vacuum the entire living room and dining area",
			AssignedToUserID: 2, CreatedByUserID: 1, HouseholdID: 1, DueDate: today.AddDate(0, 0, -1),
			Urgency: model.UrgencyHigh, PointsValue: 15, CreatedDate: now.AddDate(0, 0, -3)},
		{Title: "Do the dishes", Description: "Wash, dry and put away all dishes",
			AssignedToUserID: 3, CreatedByUserID: 1, HouseholdID: 1, DueDate: today,
			Urgency: model.UrgencyCritical, PointsValue: 8, IsCompleted: true, CompletedDate: &done,
			CreatedDate: now.AddDate(0, 0, -1)},
		{Title: "Mow the lawn", Description: "Cut the grass in the front and back yard",
			AssignedToUserID: 4, CreatedByUserID: 4, HouseholdID: 2, DueDate: today.AddDate(0, 0, 3),
			Urgency: model.UrgencyLow, PointsValue: 25, CreatedDate: now.AddDate(0, 0, -1)},
		{Title: "Clean bathrooms", Description: "Deep clean all bathrooms including toilets, sinks, and showers",
			AssignedToUserID: 5, CreatedByUserID: 4, HouseholdID: 2, DueDate: today.AddDate(0, 0, 2),
			Urgency: model.UrgencyMedium, PointsValue: 20, CreatedDate: now.AddDate(0, 0, -1)},
		{Title: "Organize garage", Description: "Sort and organize items in the garage",
			AssignedToUserID: 6, CreatedByUserID: 6, HouseholdID: 3, DueDate: today.AddDate(0, 0, 7),
			Urgency: model.UrgencyLow, PointsValue: 30, CreatedDate: now.AddDate(0, 0, -2)},
	}
	for i := range chores {
		if _, err := d.Chores.Create(&chores[i]); err != nil {
			return 0, err
		}
	}
	return len(chores), d.Chores.Save()
}

func seedItems(d service.Deps, now time.Time) (int, error) {
	existing, err := d.Shopping.List()
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	bought := now.Add(-3 * time.Hour)
	items := []model.ShoppingItem{
		{Name: "Milk", Category: "Dairy", Price: 3.99, HouseholdID: 1, CreatedByUserID: 1,
			Urgency: model.UrgencyHigh, CreatedDate: now.AddDate(0, 0, -1)},
		{Name: "Bread", Category: "Bakery", Price: 2.49, HouseholdID: 1, CreatedByUserID: 2,
			Urgency: model.UrgencyMedium, CreatedDate: now.AddDate(0, 0, -1)},
		{Name: "Bananas", Category: "Produce", Price: 1.99, HouseholdID: 1, CreatedByUserID: 3,
			IsPurchased: true, PurchasedDate: &bought, Urgency: model.UrgencyLow, CreatedDate: now.AddDate(0, 0, -2)},
		{Name: "Chicken Breast", Category: "Meat", Price: 8.99, HouseholdID: 2, CreatedByUserID: 4,
			Urgency: model.UrgencyMedium, CreatedDate: now.Add(-6 * time.Hour)},
		{Name: "Pasta", Category: "Pantry", Price: 1.99, HouseholdID: 2, CreatedByUserID: 5,
			Urgency: model.UrgencyLow, CreatedDate: now.Add(-12 * time.Hour)},
		{Name: "Coffee", Category: "Beverages", Price: 12.99, HouseholdID: 3, CreatedByUserID: 6,
			Urgency: model.UrgencyCritical, CreatedDate: now.Add(-30 * time.Minute)},
		{Name: "Eggs", Category: "Dairy", Price: 4.49, HouseholdID: 3, CreatedByUserID: 7,
			Urgency: model.UrgencyHigh, CreatedDate: now.Add(-2 * time.Hour)},
	}
	for i := range items {
		if _, err := d.Shopping.Create(&items[i]); err != nil {
			return 0, err
		}
	}
	return len(items), d.Shopping.Save()
}
