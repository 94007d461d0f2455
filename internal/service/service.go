// Package service implements the household use cases on top of the
// repositories: registration and login, household membership, chores,
// the shopping list and member statistics.
//
// Every call that acts on behalf of someone takes their *session.Session.
// Writes to different repositories are persisted one after the other and
// are not atomic as a group.
package service

import (
	"log/slog"
	"time"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/password"
	"github.com/dukerupert/homedash/internal/session"
	"github.com/dukerupert/homedash/internal/store"
)

// Deps are the collaborators shared by all services.
type Deps struct {
	Users      *store.UserStore
	Households *store.HouseholdStore
	Chores     *store.ChoreStore
	Shopping   *store.ShoppingStore
	Hasher     password.Hasher
	Logger     *slog.Logger
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) log(sess *session.Session) *slog.Logger {
	return sess.Logger(d.Logger)
}

// user loads the session's user and refreshes the session from it.
func (d Deps) user(sess *session.Session) (*model.User, error) {
	if sess == nil {
		return nil, fault.Domain(fault.Unauthorized, "NOT_LOGGED_IN", "you must be logged in")
	}
	u, err := d.Users.GetByID(sess.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fault.Missing("USER_NOT_FOUND", "user not found")
	}
	sess.Refresh(u)
	return u, nil
}

// member is user plus the requirement of belonging to a household.
func (d Deps) member(sess *session.Session) (*model.User, error) {
	u, err := d.user(sess)
	if err != nil {
		return nil, err
	}
	if !sess.InHousehold() {
		return nil, fault.Rule("NOT_IN_HOUSEHOLD", "you need to create or join a household first")
	}
	return u, nil
}

// admin is member plus the admin flag.
func (d Deps) admin(sess *session.Session, action string) (*model.User, error) {
	u, err := d.member(sess)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin {
		return nil, fault.Forbidden(action)
	}
	return u, nil
}

func parseUrgency(u model.Urgency) (model.Urgency, error) {
	parsed, err := model.ParseUrgency(string(u))
	if err != nil {
		return "", fault.Validation("urgency", err.Error())
	}
	return parsed, nil
}
