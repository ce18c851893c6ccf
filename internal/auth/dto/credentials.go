package dto

// CredentialsInput is the request body shared by signin and create-account.
type CredentialsInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
