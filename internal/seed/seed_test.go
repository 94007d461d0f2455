package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homedash/internal/password"
	"github.com/dukerupert/homedash/internal/service"
	"github.com/dukerupert/homedash/internal/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDeps(dir string) service.Deps {
	return service.Deps{
		Users:      store.NewUserStore(dir),
		Households: store.NewHouseholdStore(dir),
		Chores:     store.NewChoreStore(dir),
		Shopping:   store.NewShoppingStore(dir),
		Hasher:     password.New(bcrypt.MinCost),
		Now:        func() time.Time { return now },
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	d := testDeps(dir)

	r, err := Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, Report{Households: 3, Users: 7, Chores: 6, Items: 7}, r)

	admin, err := d.Users.GetByUsername("ADMIN")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, int64(3), admin.HouseholdID)

	sess, err := service.NewAuthService(d).Login("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, int64(3), sess.HouseholdID)

	overdue, err := d.Chores.ListOverdue(1, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Vacuum living room", overdue[0].Title)

	items, err := d.Shopping.ListUnpurchased(1)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// A fresh set of stores reads what was persisted.
	again, err := Run(context.Background(), testDeps(dir))
	require.NoError(t, err)
	assert.Equal(t, Report{}, again)
}

func TestRunSkipsPopulatedCollections(t *testing.T) {
	d := testDeps(t.TempDir())
	_, err := service.NewAuthService(d).Register(service.RegisterInput{
		Username: "existing",
		Password: "Password1",
		Name:     "Existing",
		Email:    "existing@example.com",
	})
	require.NoError(t, err)

	r, err := Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Users)
	assert.Equal(t, 3, r.Households)

	all, err := d.Users.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testDeps(t.TempDir()))
	assert.ErrorIs(t, err, context.Canceled)
}
