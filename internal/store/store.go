package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrUserNotFound is returned when no record exists for an email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when a create collides with an existing record.
var ErrEmailTaken = errors.New("email already registered")

// User is the user record persisted by the store.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr" json:"-"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Name         string     `bun:"name,notnull" json:"name"`
	Email        string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash string     `bun:"password_hash,notnull" json:"password_hash"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserStore is the durable mapping from email to user record. Emails are
// normalized with NormalizeEmail before they are used as keys.
type UserStore interface {
	// All returns every persisted record. A store with no persisted
	// state yet returns an empty slice, not an error.
	All(ctx context.Context) ([]User, error)
	// FindByEmail resolves a normalized email to its record or
	// ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create appends a record, rejecting duplicate emails with
	// ErrEmailTaken. The stored record is returned with its ID and
	// CreatedAt populated.
	Create(ctx context.Context, user *User) (*User, error)
}

// NormalizeEmail trims whitespace and lowercases, so lookups and uniqueness
// are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
