package domain

import "time"

// Roles a user can sign up with. "client" is the default when none is given.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// User is the credential record: the source of truth for login and the
// email_verified flag. The Profile document mirrors a subset of it.
type User struct {
	UserID        string    `json:"uid" dynamodbav:"user_id"`
	Email         string    `json:"email" dynamodbav:"email"`
	Name          string    `json:"name" dynamodbav:"name"`
	Role          string    `json:"role" dynamodbav:"role"`
	PasswordHash  string    `json:"-" dynamodbav:"password_hash"`
	EmailVerified bool      `json:"emailVerified" dynamodbav:"email_verified"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
