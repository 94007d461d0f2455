// Package password hashes and verifies user and household passwords.
package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homedash/internal/fault"
)

// MinLength is the shortest password IsStrong accepts.
const MinLength = 8

// Hasher is the opaque hash/verify capability services depend on.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type Bcrypt struct {
	cost int
}

// New returns a bcrypt hasher. A cost of 0 selects bcrypt.DefaultCost.
func New(cost int) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("hash password: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(plaintext, hash string) bool {
	if plaintext == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IsStrong reports whether p has at least MinLength characters including an
// uppercase letter, a lowercase letter and a digit.
func IsStrong(p string) bool {
	if len([]rune(p)) < MinLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// CheckStrength returns a ValidationFailed fault when p is not strong.
func CheckStrength(p string) error {
	if !IsStrong(p) {
		return fault.Validation("password", fmt.Sprintf("must be at least %d characters with an uppercase letter, a lowercase letter and a digit", MinLength))
	}
	return nil
}
