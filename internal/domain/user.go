package domain

import (
	"context"
	"strings"
	"time"
)

// AnonymousName is shown when a user has neither a display name nor an email.
const AnonymousName = "Anonymous"

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, displayName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Name returns the display name, falling back to the email and then to AnonymousName.
func (u *User) Name() string {
	if u == nil {
		return AnonymousName
	}
	if n := strings.TrimSpace(u.DisplayName); n != "" {
		return n
	}
	if e := strings.TrimSpace(u.Email); e != "" {
		return e
	}
	return AnonymousName
}

// Principal is the authenticated identity behind a request or a live connection.
type Principal struct {
	UserID    string
	Email     string
	SessionID string
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, sessionID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the principal it was issued for.
// Expired or malformed tokens yield ErrSessionEnded.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	Update(ctx context.Context, user *User) error
	// EnsureExists inserts the user with its given ID unless a user with that ID exists.
	EnsureExists(ctx context.Context, user *User) error
}

// SessionRepository records signed-out sessions so their tokens stop working before expiry.
type SessionRepository interface {
	Revoke(ctx context.Context, sessionID, userID string, revokedAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// SubscriptionReleaser cancels every live subscription held by a session.
type SubscriptionReleaser interface {
	Release(sessionID string) int
}

// AuthService is the identity provider: sign-up, sign-in, sign-out and token authentication.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*User, error)
	SignIn(ctx context.Context, email, password string) (token string, user *User, err error)
	SignOut(ctx context.Context, principal *Principal) error
	Authenticate(ctx context.Context, token string) (*Principal, error)
	// CheckSession returns ErrSessionEnded when the session was signed out.
	CheckSession(ctx context.Context, principal *Principal) error
	Me(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID, displayName string) (*User, error)
}
