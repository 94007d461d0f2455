package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
)

func setupUserTestStore(t *testing.T) (*UserStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewUserStore(dir, testOptions()...), dir
}

func newUser(username string) *model.User {
	return &model.User{
		Username:     username,
		PasswordHash: "hash",
		Name:         "Test " + username,
		Email:        username + "@example.com",
	}
}

func TestUserCreate(t *testing.T) {
	us, _ := setupUserTestStore(t)

	u, err := us.Create(newUser("alice"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID != 1 {
		t.Errorf("id = %d, want 1", u.ID)
	}
	if u.JoinedDate.IsZero() || !u.JoinedDate.Equal(u.CreatedDate) {
		t.Errorf("joined_date = %v, want created_date %v", u.JoinedDate, u.CreatedDate)
	}
	if u.HouseholdID != 0 {
		t.Errorf("household_id = %d, want 0", u.HouseholdID)
	}
}

func TestUserUsernameUniqueness(t *testing.T) {
	us, _ := setupUserTestStore(t)

	if _, err := us.Create(newUser("alice")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := us.Create(newUser("Alice"))
	if !errors.Is(err, fault.DuplicateKey) || fault.CodeOf(err) != "USERNAME_EXISTS" {
		t.Fatalf("err = %v, want USERNAME_EXISTS", err)
	}
	if !fault.IsDomain(err) {
		t.Error("expected a domain fault")
	}

	all, _ := us.List()
	if len(all) != 1 {
		t.Errorf("len = %d, want 1", len(all))
	}
}

func TestUserUpdateUniqueness(t *testing.T) {
	us, _ := setupUserTestStore(t)
	us.Create(newUser("alice"))
	bob, _ := us.Create(newUser("bob"))

	// Keeping one's own name, in any case, is fine.
	bob.Username = "BOB"
	if _, err := us.Update(bob); err != nil {
		t.Fatalf("update own username: %v", err)
	}

	bob.Username = "ALICE"
	if _, err := us.Update(bob); !errors.Is(err, fault.DuplicateKey) {
		t.Errorf("err = %v, want DuplicateKey", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	us, _ := setupUserTestStore(t)
	us.Create(newUser("johnsmith"))

	u, err := us.GetByUsername("JohnSmith")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if u == nil || u.Username != "johnsmith" {
		t.Fatalf("got %+v, want johnsmith", u)
	}

	missing, err := us.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil, got %+v", missing)
	}
}

func TestUserIsUsernameUnique(t *testing.T) {
	us, _ := setupUserTestStore(t)
	u, _ := us.Create(newUser("alice"))

	unique, err := us.IsUsernameUnique("ALICE", 0)
	if err != nil {
		t.Fatal(err)
	}
	if unique {
		t.Error("expected ALICE to be taken")
	}
	unique, _ = us.IsUsernameUnique("alice", u.ID)
	if !unique {
		t.Error("expected alice to be free when excluding its owner")
	}
}

func TestUserValidation(t *testing.T) {
	us, _ := setupUserTestStore(t)

	bad := newUser("carol")
	bad.Email = "not-an-email"
	_, err := us.Create(bad)
	if !errors.Is(err, fault.ValidationFailed) {
		t.Errorf("err = %v, want ValidationFailed", err)
	}

	neg := newUser("dave")
	neg.Points = -1
	if _, err := us.Create(neg); !errors.Is(err, fault.ValidationFailed) {
		t.Errorf("err = %v, want ValidationFailed", err)
	}
}

func TestUserListByHousehold(t *testing.T) {
	us, _ := setupUserTestStore(t)
	for _, n := range []string{"zed", "amy", "other"} {
		u := newUser(n)
		u.HouseholdID = 1
		if n == "other" {
			u.HouseholdID = 2
		}
		if _, err := us.Create(u); err != nil {
			t.Fatal(err)
		}
	}

	members, err := us.ListByHousehold(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("len = %d, want 2", len(members))
	}
	if members[0].Username != "amy" || members[1].Username != "zed" {
		t.Errorf("order = %s, %s; want amy, zed", members[0].Username, members[1].Username)
	}
}

func TestUserUpdateNotFound(t *testing.T) {
	us, _ := setupUserTestStore(t)

	u := newUser("ghost")
	u.ID = 12
	_, err := us.Update(u)
	if !errors.Is(err, fault.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if !fault.IsStore(err) {
		t.Error("expected a store fault")
	}
}

func TestUserSaveAndReload(t *testing.T) {
	us, dir := setupUserTestStore(t)
	created, _ := us.Create(newUser("alice"))
	if err := us.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened := NewUserStore(dir)
	u, err := reopened.GetByID(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.Username != "alice" || u.Email != "alice@example.com" {
		t.Errorf("reloaded = %+v", u)
	}

	removed, err := reopened.Delete(created.ID)
	if err != nil || !removed {
		t.Errorf("delete = %v, %v; want true, nil", removed, err)
	}
}

func TestUserUpdateMembershipCapacity(t *testing.T) {
	us, _ := setupUserTestStore(t)
	a, _ := us.Create(newUser("alice"))
	b, _ := us.Create(newUser("bob"))
	c, _ := us.Create(newUser("carol"))

	for _, u := range []*model.User{a, b} {
		if _, err := us.UpdateMembership(u.ID, 1, false, 2); err != nil {
			t.Fatalf("join %s: %v", u.Username, err)
		}
	}

	_, err := us.UpdateMembership(c.ID, 1, false, 2)
	if !errors.Is(err, fault.BusinessRuleViolation) || fault.CodeOf(err) != "HOUSEHOLD_FULL" {
		t.Fatalf("err = %v, want HOUSEHOLD_FULL", err)
	}

	// Rewriting an existing member does not count them twice.
	got, err := us.UpdateMembership(a.ID, 1, true, 2)
	if err != nil {
		t.Fatalf("update existing member: %v", err)
	}
	if !got.IsAdmin {
		t.Error("expected admin flag to be set")
	}

	_, err = us.UpdateMembership(a.ID, 2, false, 10)
	if fault.CodeOf(err) != "ALREADY_IN_HOUSEHOLD" {
		t.Errorf("err = %v, want ALREADY_IN_HOUSEHOLD", err)
	}
}

func TestUserUpdateMembershipKeepsStoredFields(t *testing.T) {
	us, _ := setupUserTestStore(t)
	_, _ = us.Create(newUser("alice"))
	bob, _ := us.Create(newUser("bob"))

	// A stale or tampered copy cannot smuggle other fields through.
	bob.Username = "ALICE"
	bob.Points = 999
	bob.HouseholdID = 1

	got, err := us.UpdateMembership(bob.ID, 1, false, 10)
	if err != nil {
		t.Fatalf("update membership: %v", err)
	}
	if got.Username != "bob" || got.Points != 0 || got.HouseholdID != 1 {
		t.Errorf("got = %+v, want bob with 0 points in household 1", got)
	}

	all, _ := us.List()
	seen := map[string]int{}
	for _, u := range all {
		seen[strings.ToLower(u.Username)]++
	}
	if seen["alice"] != 1 {
		t.Errorf("usernames = %v, want alice exactly once", seen)
	}
	if _, err := us.UpdateMembership(404, 1, false, 10); !errors.Is(err, fault.NotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestUserAddPoints(t *testing.T) {
	us, _ := setupUserTestStore(t)
	u, _ := us.Create(newUser("alice"))

	got, err := us.AddPoints(u.ID, 15)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if got.Points != 15 || got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("got = %+v, want alice with 15 points", got)
	}
	if got.ModifiedDate == nil {
		t.Error("expected modified_date to be set")
	}

	got, _ = us.AddPoints(u.ID, -100)
	if got.Points != 0 {
		t.Errorf("points = %d, want floor of 0", got.Points)
	}

	if _, err := us.AddPoints(99, 1); !errors.Is(err, fault.NotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}
