package domain

import "time"

// User is the stored account record. PasswordHash must never cross the
// serialization boundary; client-facing projections live in the dto package.
type User struct {
	ID           string
	Email        string
	PasswordHash string

	// RefreshTokenVersion is a monotonic counter. A refresh token is only
	// honored while the version it carries equals this value, so bumping it
	// revokes every outstanding refresh token without a blocklist.
	RefreshTokenVersion int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenPair is one issuance: a short-lived access token and a long-lived
// refresh token, signed with distinct secrets.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
