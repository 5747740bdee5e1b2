// ABOUTME: Database operations for user accounts.
// ABOUTME: Provides account creation and lookup by email or ID.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, first_name, last_name, gender, password_hash, is_active, date_joined`

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Email, user.FirstName, user.LastName, user.Gender,
		user.PasswordHash, user.IsActive, user.DateJoined.UnixNano(),
	)
	// The only constraint a well-formed insert can violate is the email
	// uniqueness; mask to the primary code in case extended codes are off.
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return ErrEmailTaken
	}
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, models.NormalizeEmail(email),
	)
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String(),
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var idStr string
	var joined int64
	err := row.Scan(&idStr, &user.Email, &user.FirstName, &user.LastName, &user.Gender, &user.PasswordHash, &user.IsActive, &joined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}
	user.DateJoined = time.Unix(0, joined)
	return user, nil
}
