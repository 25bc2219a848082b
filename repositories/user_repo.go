package repositories

import (
	"context"
	"time"

	"storefinder/models"
)

// UserRepository defines persistence for user accounts, reset-token state and
// hearted stores. Implementations must treat email comparisons as exact; the
// service layer is responsible for case-normalizing emails before calls.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByResetToken finds the user holding the token with a reset expiry
	// strictly after now. A missing user and an expired token are the same
	// result on purpose.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error

	// SetPassword stores the new hash and clears any reset-token state in the
	// same update.
	SetPassword(ctx context.Context, id, passwordHash string) error

	UpdateAccount(ctx context.Context, id, name, email string) (*models.User, error)

	// ToggleHeart adds the store id to the user's hearts when add is true and
	// removes it otherwise, with set semantics either way. Returns the updated
	// user.
	ToggleHeart(ctx context.Context, id, storeID string, add bool) (*models.User, error)
}
