package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mpetrov/facelike/internal/logger"
)

// SessionClaims is the identity assertion carried inside a bearer token.
// The subject is the normalized email of the authenticated user.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenService encodes session claims into signed bearer strings and
// verifies them on the way back in.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	logger     *logger.Logger
}

// NewTokenService creates a TokenService signing with the given key. Tokens
// expire after ttl.
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, l *logger.Logger) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		logger:     l,
	}
}

// TTL returns the configured token lifetime, which also bounds the session
// cookie.
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token asserting the given subject.
func (ts *TokenService) Issue(subject string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a raw token. Any structural defect, signature
// mismatch, or unexpected signing algorithm (including "none") maps to
// ErrTokenMalformed; expiry maps to ErrTokenExpired. It never panics.
func (ts *TokenService) Verify(raw string) (*SessionClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token verify: unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.RegisteredClaims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
