package repository

import (
	"context"

	"infolock/internal/model"
)

// UserRepository defines data access for user accounts using SQL queries only.
// No business logic here, strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by their ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by their unique email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByUsername reports whether a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
