package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpetrov/facelike/internal/logger"
	"github.com/mpetrov/facelike/internal/store"
)

// Authenticator ties the user store, password hasher, and token codec
// together into the register/login/session flows.
type Authenticator struct {
	users  store.UserStore
	tokens *TokenService
	hasher *Hasher
	logger *logger.Logger
}

// NewAuthenticator returns a new Authenticator.
func NewAuthenticator(users store.UserStore, tokens *TokenService, hasher *Hasher, l *logger.Logger) *Authenticator {
	return &Authenticator{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: l,
	}
}

// Tokens exposes the token service, used by the HTTP layer for cookie
// lifetimes.
func (a *Authenticator) Tokens() *TokenService {
	return a.tokens
}

// Register creates a new user and returns a session token for it. A
// duplicate normalized email surfaces as store.ErrEmailTaken.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (string, error) {
	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.Create(ctx, &store.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if !errors.Is(err, store.ErrEmailTaken) {
			a.logger.Error("register: create user failed", "error", err)
		}
		return "", err
	}

	a.logger.Info("registered user", "email", user.Email)

	return a.tokens.Issue(user.Email)
}

// Login verifies the credentials and returns a session token. Unknown
// emails and wrong passwords both map to ErrInvalidCredentials so callers
// cannot probe for accounts.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		a.logger.Error("login: find user failed", "error", err)
		return "", err
	}

	if err := a.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	a.logger.Info("logged in user", "email", user.Email)

	return a.tokens.Issue(user.Email)
}

// SessionFromToken decodes and validates a raw bearer token into a Session.
func (a *Authenticator) SessionFromToken(raw string) (*Session, error) {
	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	return sessionFromClaims(claims), nil
}

// IdentityFromSession resolves the session subject to its user record.
func (a *Authenticator) IdentityFromSession(ctx context.Context, session *Session) (*store.User, error) {
	return a.users.FindByEmail(ctx, session.GetUserEmail())
}
