// ABOUTME: Identity provider: registration, login, logout and request authentication.
// ABOUTME: Sessions are signed tokens carried in a cookie or a Bearer header.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/db"
	"github.com/harper/notely/internal/models"
	"go.uber.org/zap"
)

// CookieName holds the access token for browser sessions.
const CookieName = "access_token"

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

// Users is the account storage the provider needs.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Options struct {
	SecretKey    string
	TokenTTL     time.Duration
	BcryptCost   int
	CookieSecure bool
}

type Provider struct {
	users   Users
	tokens  *Tokens
	revoker Revoker
	opts    Options
	logger  *zap.Logger
}

func NewProvider(users Users, revoker Revoker, opts Options, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &Provider{
		users:   users,
		tokens:  NewTokens(opts.SecretKey, opts.TokenTTL),
		revoker: revoker,
		opts:    opts,
		logger:  logger,
	}
}

// Session is a freshly issued token and when it stops being valid.
type Session struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

func (p *Provider) issue(u *models.User) (*Session, error) {
	id := IdentityFor(u)
	token, claims, err := p.tokens.Issue(id)
	if err != nil {
		return nil, err
	}
	return &Session{Identity: id, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// TokenFromRequest returns the Bearer token, or the session cookie when no
// Authorization header is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Current authenticates r. It fails with ErrUnauthenticated for missing,
// invalid, expired or revoked tokens and for inactive accounts.
func (p *Provider) Current(r *http.Request) (Identity, error) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}
	return p.Verify(r.Context(), raw)
}

// Verify checks a raw token and resolves it to an active account.
func (p *Provider) Verify(ctx context.Context, raw string) (Identity, error) {
	claims, err := p.tokens.Parse(raw)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}

	revoked, err := p.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		p.logger.Error("revocation check failed", zap.Error(err))
		return Identity{}, ErrUnauthenticated
	}
	if revoked {
		return Identity{}, ErrUnauthenticated
	}

	id, err := claims.Identity()
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	user, err := p.users.GetByID(ctx, id.UserID)
	if err != nil {
		if !errors.Is(err, db.ErrUserNotFound) {
			p.logger.Error("load user for token", zap.Stringer("user_id", id.UserID), zap.Error(err))
		}
		return Identity{}, ErrUnauthenticated
	}
	if !user.IsActive {
		return Identity{}, ErrUnauthenticated
	}
	return IdentityFor(user), nil
}

// Login checks credentials and issues a session.
func (p *Provider) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive || !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	p.logger.Info("user logged in", zap.Stringer("user_id", user.ID))
	return p.issue(user)
}

// Logout revokes raw until it would have expired. Unparseable tokens are
// ignored since they grant nothing.
func (p *Provider) Logout(ctx context.Context, raw string) error {
	claims, err := p.tokens.Parse(raw)
	if err != nil {
		return nil
	}
	if err := p.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	p.logger.Info("user logged out", zap.String("user_id", claims.Subject))
	return nil
}

// Registration is the sign-up form.
type Registration struct {
	Email           string `form:"email" json:"email"`
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Gender          string `form:"gender" json:"gender"`
	Password        string `form:"password1" json:"password1"`
	PasswordConfirm string `form:"password2" json:"password2"`
}

// FieldErrors maps form field names to messages.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return "invalid registration: " + strings.Join(parts, "; ")
}

func (reg Registration) validate() FieldErrors {
	errs := FieldErrors{}
	email := strings.TrimSpace(reg.Email)
	if email == "" {
		errs.add("email", "This field is required.")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.add("email", "Enter a valid email address.")
	}

	switch {
	case reg.Password == "":
		errs.add("password1", "This field is required.")
	case len(reg.Password) < minPasswordLength:
		errs.add("password1", fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", minPasswordLength))
	case len(reg.Password) > maxPasswordBytes:
		errs.add("password1", "This password is too long.")
	}
	if reg.PasswordConfirm != reg.Password {
		errs.add("password2", "The two password fields didn't match.")
	}
	if !models.ValidGender(reg.Gender) {
		errs.add("gender", fmt.Sprintf(
			"Select a valid choice. %s is not one of the available choices.", reg.Gender))
	}
	return errs
}

// Register creates an active account and signs it in. Invalid input is
// reported as FieldErrors.
func (p *Provider) Register(ctx context.Context, reg Registration) (*Session, error) {
	if errs := reg.validate(); len(errs) > 0 {
		return nil, errs
	}

	hash, err := HashPassword(reg.Password, p.opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := models.NewUser(reg.Email, reg.FirstName, reg.LastName, hash)
	user.Gender = reg.Gender
	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return nil, FieldErrors{"email": {"User with this Email already exists."}}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	p.logger.Info("user registered", zap.Stringer("user_id", user.ID))
	return p.issue(user)
}

// Lookup resolves an account by email without a password, for local tools
// that already have access to the database.
func (p *Provider) Lookup(ctx context.Context, email string) (Identity, error) {
	user, err := p.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return Identity{}, err
	}
	return IdentityFor(user), nil
}
