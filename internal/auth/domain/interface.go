package domain

import "context"

// UserStore is the credential store. Create must be atomic insert-if-absent:
// two concurrent calls for the same email yield exactly one record and one
// ErrEmailAlreadyInUse. Lookups return (nil, nil) when no record exists.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	// BumpRefreshTokenVersion increments the user's version counter and
	// returns the new value, revoking all previously issued refresh tokens.
	BumpRefreshTokenVersion(ctx context.Context, id string) (int, error)
}
