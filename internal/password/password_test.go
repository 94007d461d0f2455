package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homedash/internal/fault"
)

func TestHashAndVerify(t *testing.T) {
	h := New(bcrypt.MinCost)

	hash, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "Secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !h.Verify("Secret123", hash) {
		t.Error("expected correct password to verify")
	}
	if h.Verify("secret123", hash) {
		t.Error("expected wrong password to fail")
	}
	if h.Verify("", hash) {
		t.Error("expected empty password to fail")
	}
}

func TestHashEmpty(t *testing.T) {
	if _, err := New(bcrypt.MinCost).Hash(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestIsStrong(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Password1", true},
		{"password1", false},
		{"PASSWORD1", false},
		{"Password", false},
		{"Pass1", false},
		{"Ünïcode12", true},
	}
	for _, tt := range tests {
		if got := IsStrong(tt.in); got != tt.want {
			t.Errorf("IsStrong(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if err := CheckStrength("weak"); !errors.Is(err, fault.ValidationFailed) {
		t.Errorf("err = %v, want ValidationFailed", err)
	}
}
