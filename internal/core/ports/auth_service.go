package ports

import (
	"context"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// RegisterInput carries the self-service sign-up fields.
type RegisterInput struct {
	Name       string `validate:"required,max=100"`
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=6,maxbytes=72"`
	Department string `validate:"max=100"`
}

// ProfileUpdate carries optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	Name       *string `validate:"omitempty,min=1,max=100"`
	Department *string `validate:"omitempty,max=100"`
	Password   *string `validate:"omitempty,min=6,maxbytes=72"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, requester domain.Requester) (*domain.User, error)
	UpdateProfile(ctx context.Context, requester domain.Requester, update ProfileUpdate) (*domain.User, error)
}
