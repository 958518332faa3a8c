package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	// Used for login and for addressing group invitations.
	Email string

	// Name is the display name of the user.
	Name string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a User with a fresh UUID and creation timestamp.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
