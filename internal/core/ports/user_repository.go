package ports

import (
	"context"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs resolves many ids in one round trip. Unknown ids are absent
	// from the returned map rather than reported as errors.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Count returns the number of users with the given role, or all users when
	// role is empty.
	Count(ctx context.Context, role string) (int64, error)
}
