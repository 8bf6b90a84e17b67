package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mpetrov/facelike/internal/logger"
	"github.com/mpetrov/facelike/internal/store"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	users := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	tokens := newTestTokenService(time.Hour)

	return NewAuthenticator(users, tokens, NewHasher(bcrypt.MinCost), logger.New(8))
}

func TestAuthenticator_RegisterThenLogin(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, err := a.Register(ctx, "Ann", "a@x.com", "p")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := a.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", session.GetUserEmail())

	loginToken, err := a.Login(ctx, "a@x.com", "p")
	require.NoError(t, err)

	session, err = a.SessionFromToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", session.GetUserEmail())
}

func TestAuthenticator_Register_DuplicateEmail(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "Ann", "a@x.com", "p")
	require.NoError(t, err)

	_, err = a.Register(ctx, "Other Ann", " A@X.COM ", "q")
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestAuthenticator_Register_NeverStoresPlaintext(t *testing.T) {
	users := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	a := NewAuthenticator(users, newTestTokenService(time.Hour), NewHasher(bcrypt.MinCost), logger.New(8))
	ctx := context.Background()

	_, err := a.Register(ctx, "Ann", "a@x.com", "sup3rSecret")
	require.NoError(t, err)

	user, err := users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotContains(t, user.PasswordHash, "sup3rSecret")
	assert.NoError(t, NewHasher(bcrypt.MinCost).ComparePasswordAndHash("sup3rSecret", user.PasswordHash))
}

func TestAuthenticator_Login_InvalidCredentials(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "Ann", "a@x.com", "p")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Login(ctx, "a@x.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := a.Login(ctx, "nobody@x.com", "p")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticator_Login_NormalizedEmail(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "Ann", "Ann@X.Com", "p")
	require.NoError(t, err)

	token, err := a.Login(ctx, "  ann@x.com  ", "p")
	require.NoError(t, err)

	session, err := a.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", session.GetUserEmail())
}

func TestAuthenticator_IdentityFromSession(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, err := a.Register(ctx, "Ann", "a@x.com", "p")
	require.NoError(t, err)

	session, err := a.SessionFromToken(token)
	require.NoError(t, err)

	user, err := a.IdentityFromSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestAuthenticator_IdentityFromSession_DeletedUser(t *testing.T) {
	a := newTestAuthenticator(t)

	// Token for a subject that never existed in the store.
	token, err := a.Tokens().Issue("ghost@x.com")
	require.NoError(t, err)

	session, err := a.SessionFromToken(token)
	require.NoError(t, err)

	_, err = a.IdentityFromSession(context.Background(), session)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
