package dto

import "github.com/crystalafinch/authentication/internal/auth/domain"

// UserOutput is the client-facing projection of a user record. The password
// hash is stripped here, at the serialization boundary, never at call sites.
type UserOutput struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewUserOutput(u *domain.User) *UserOutput {
	if u == nil {
		return nil
	}
	return &UserOutput{ID: u.ID, Email: u.Email}
}
