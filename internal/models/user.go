// ABOUTME: User model for accounts that own notes.
// ABOUTME: Email is the unique login identifier and is normalized to lowercase.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender codes. The empty string means not given.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	Gender       string
	PasswordHash []byte
	IsActive     bool
	DateJoined   time.Time
}

func NewUser(email, firstName, lastName string, passwordHash []byte) *User {
	return &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: passwordHash,
		IsActive:     true,
		DateJoined:   time.Now(),
	}
}

// FullName joins first and last name, trimming the gap when either is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func ValidGender(g string) bool {
	return g == "" || g == GenderMale || g == GenderFemale
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
