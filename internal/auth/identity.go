// ABOUTME: Identity of the authenticated requester.
// ABOUTME: Passed by value from middleware into every note operation.

package auth

import (
	"errors"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
)

// ErrUnauthenticated is returned when an operation runs without a signed-in user.
var ErrUnauthenticated = errors.New("authentication required")

// Identity is who a request acts as. The zero value is anonymous.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// IdentityFor builds the identity of a stored user.
func IdentityFor(u *models.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Name: u.FullName()}
}

func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

// DisplayName is the full name, falling back to the email address.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}
