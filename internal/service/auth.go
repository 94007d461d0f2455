package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/password"
	"github.com/dukerupert/homedash/internal/session"
	"github.com/dukerupert/homedash/internal/validation"
)

type AuthService struct {
	d Deps
}

func NewAuthService(d Deps) *AuthService {
	return &AuthService{d: d.withDefaults()}
}

type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

// Register creates an account outside any household.
func (s *AuthService) Register(in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := validation.Username(in.Username); err != nil {
		return nil, err
	}
	if err := validation.Email(in.Email); err != nil {
		return nil, err
	}
	if err := password.CheckStrength(in.Password); err != nil {
		return nil, err
	}
	if err := validation.Length("name", in.Name, 1, 100); err != nil {
		return nil, err
	}

	unique, err := s.d.Users.IsUsernameUnique(in.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if !unique {
		return nil, fault.Duplicate("USERNAME_EXISTS", "username already taken, choose another one")
	}

	hash, err := s.d.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	u, err := s.d.Users.Create(&model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		JoinedDate:   s.d.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.d.Logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies credentials and starts a session.
func (s *AuthService) Login(username, plaintext string) (*session.Session, error) {
	if strings.TrimSpace(username) == "" || plaintext == "" {
		return nil, fault.Domain(fault.Unauthorized, "INVALID_CREDENTIALS", "username and password are required")
	}

	u, err := s.d.Users.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil || !s.d.Hasher.Verify(plaintext, u.PasswordHash) {
		s.d.Logger.Warn("login rejected", "username", username)
		return nil, fault.Domain(fault.Unauthorized, "INVALID_CREDENTIALS", "invalid username or password")
	}

	sess := session.New(u, s.d.Now())
	s.d.log(sess).Info("user logged in", "username", u.Username)
	return sess, nil
}

func (s *AuthService) ChangePassword(sess *session.Session, current, next string) error {
	if current == "" || next == "" {
		return fault.Validation("password", "current and new passwords are required")
	}
	if err := password.CheckStrength(next); err != nil {
		return err
	}

	u, err := s.d.user(sess)
	if err != nil {
		return err
	}
	if !s.d.Hasher.Verify(current, u.PasswordHash) {
		return fault.Domain(fault.Unauthorized, "INVALID_CURRENT_PASSWORD", "current password is incorrect")
	}

	hash, err := s.d.Hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	u.PasswordHash = hash
	if _, err := s.d.Users.Update(u); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.d.log(sess).Info("password changed")
	return nil
}

// Current returns the up-to-date record of the session's user.
func (s *AuthService) Current(sess *session.Session) (*model.User, error) {
	return s.d.user(sess)
}

func (s *AuthService) Logout(sess *session.Session) {
	if sess == nil {
		return
	}
	s.d.log(sess).Info("user logged out", "duration", s.d.Now().Sub(sess.StartedAt).Round(time.Second).String())
}
