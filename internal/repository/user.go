package repository

import (
	"context"

	"github.com/RajeshPuri/VaultFlow/internal/model"
)

// UserRepository defines data access for accounts using SQL queries only.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by their ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by their unique email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// SetEmailVerified marks the account's email as verified.
	SetEmailVerified(ctx context.Context, id string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
