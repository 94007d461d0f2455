package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homedash/internal/password"
	"github.com/dukerupert/homedash/internal/session"
	"github.com/dukerupert/homedash/internal/store"
)

const testPassword = "Password1"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	deps       Deps
	auth       *AuthService
	households *HouseholdService
	chores     *ChoreService
	shopping   *ShoppingService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	d := Deps{
		Users:      store.NewUserStore(dir),
		Households: store.NewHouseholdStore(dir),
		Chores:     store.NewChoreStore(dir),
		Shopping:   store.NewShoppingStore(dir),
		Hasher:     password.New(bcrypt.MinCost),
		Now:        func() time.Time { return fixedNow },
	}
	return &fixture{
		deps:       d,
		auth:       NewAuthService(d),
		households: NewHouseholdService(d),
		chores:     NewChoreService(d),
		shopping:   NewShoppingService(d),
		users:      NewUserService(d),
	}
}

// login registers username and returns a fresh session for it.
func (f *fixture) login(t *testing.T, username string) *session.Session {
	t.Helper()
	_, err := f.auth.Register(RegisterInput{
		Username: username,
		Password: testPassword,
		Name:     "Test " + username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	sess, err := f.auth.Login(username, testPassword)
	require.NoError(t, err)
	return sess
}

// household creates a household owned by a new admin and adds members.
func (f *fixture) household(t *testing.T, name string, members ...string) (*session.Session, []*session.Session) {
	t.Helper()
	admin := f.login(t, name+"admin")
	_, err := f.households.Create(admin, CreateHouseholdInput{Name: name, Password: "housepass"})
	require.NoError(t, err)

	var out []*session.Session
	for _, m := range members {
		sess := f.login(t, m)
		_, err := f.households.Join(sess, name, "housepass")
		require.NoError(t, err)
		out = append(out, sess)
	}
	return admin, out
}
