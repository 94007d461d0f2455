// Package session carries the identity of the person using homedash
// through the service calls they make.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/homedash/internal/model"
)

type Session struct {
	ID          uuid.UUID
	UserID      int64
	Username    string
	HouseholdID int64
	IsAdmin     bool
	StartedAt   time.Time
}

// New starts a session for u.
func New(u *model.User, now time.Time) *Session {
	s := &Session{ID: uuid.New(), StartedAt: now}
	s.Refresh(u)
	return s
}

// Refresh copies the membership fields of u, which must be the session's
// user, after a write changed them.
func (s *Session) Refresh(u *model.User) {
	s.UserID = u.ID
	s.Username = u.Username
	s.HouseholdID = u.HouseholdID
	s.IsAdmin = u.IsAdmin
}

func (s *Session) InHousehold() bool {
	return s != nil && s.HouseholdID != 0
}

// LogAttrs returns the attributes services attach to their log lines.
func (s *Session) LogAttrs() []any {
	if s == nil {
		return nil
	}
	return []any{"session_id", s.ID.String(), "user_id", s.UserID}
}

// Logger returns base annotated with the session.
func (s *Session) Logger(base *slog.Logger) *slog.Logger {
	return base.With(s.LogAttrs()...)
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
