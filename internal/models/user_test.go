// ABOUTME: Tests for User model.
// ABOUTME: Validates email normalization and name handling.

package models

import "testing"

func TestNewUser(t *testing.T) {
	user := NewUser("  Alice@Example.COM ", " Alice ", "", []byte("hash"))

	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.FullName() != "Alice" {
		t.Errorf("expected full name 'Alice', got %q", user.FullName())
	}
	if !user.IsActive {
		t.Error("expected new user to be active")
	}
}

func TestValidGender(t *testing.T) {
	for _, g := range []string{"", GenderMale, GenderFemale} {
		if !ValidGender(g) {
			t.Errorf("expected %q to be valid", g)
		}
	}
	for _, g := range []string{"m", "X", "Male"} {
		if ValidGender(g) {
			t.Errorf("expected %q to be rejected", g)
		}
	}
}
