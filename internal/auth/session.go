package auth

import "time"

// Session holds the attributes of an authenticated session decoded from a
// bearer token.
type Session struct {
	UserEmail string     `json:"user_email,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GetUserEmail returns the subject email of the session.
func (s *Session) GetUserEmail() string {
	return s.UserEmail
}

func sessionFromClaims(claims *SessionClaims) *Session {
	s := &Session{
		UserEmail: claims.Subject,
		Issuer:    claims.Issuer,
	}

	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		s.IssuedAt = &iat
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		s.ExpiresAt = &exp
	}

	return s
}
