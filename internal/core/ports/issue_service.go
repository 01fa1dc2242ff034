package ports

import (
	"context"
	"time"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// LocationInput holds where on campus the issue is.
type LocationInput struct {
	Building    string `validate:"required"`
	Floor       string
	Room        string
	Description string
}

// CreateIssueInput carries all data needed to report a new issue.
type CreateIssueInput struct {
	Title       string        `validate:"required,max=100"`
	Description string        `validate:"required,max=1000"`
	Category    string        `validate:"required,oneof=infrastructure cleanliness network equipment other"`
	Priority    string        `validate:"omitempty,oneof=low medium high urgent"`
	Location    LocationInput
	Images      []string      `validate:"max=5,dive,required"`
	// IdempotencyKey, when set, makes a retried submission return the issue
	// created by the first attempt.
	IdempotencyKey string
}

// UpdateIssueInput is a partial update. A nil field is left unchanged; a
// non-nil field replaces the stored value, so an empty image list clears the
// images and an empty floor/room clears them.
type UpdateIssueInput struct {
	Title       *string        `validate:"omitempty,min=1,max=100"`
	Description *string        `validate:"omitempty,min=1,max=1000"`
	Category    *string        `validate:"omitempty,oneof=infrastructure cleanliness network equipment other"`
	Priority    *string        `validate:"omitempty,oneof=low medium high urgent"`
	Location    *LocationInput `validate:"omitempty"`
	Images      *[]string      `validate:"omitempty,max=5,dive,required"`
}

// ChangeStatusInput carries an admin status transition.
type ChangeStatusInput struct {
	Status string
	Note   string
}

// UserRef is the denormalized view of a user embedded in responses. Which
// fields are filled depends on where the reference appears; credentials are
// never part of it.
type UserRef struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Department string
}

// StatusChangeView is a history entry with its actor expanded.
type StatusChangeView struct {
	Status    string
	ChangedBy *UserRef
	ChangedAt time.Time
	Note      string
}

// IssueView is an issue with its user references expanded.
type IssueView struct {
	ID            string
	Title         string
	Description   string
	Category      string
	Status        string
	Priority      string
	Location      LocationInput
	Images        []string
	ReportedBy    *UserRef
	AssignedTo    *UserRef
	StatusHistory []StatusChangeView
	ResolvedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	ID             string
	Text           string
	IssueID        string
	Author         *UserRef
	IsStatusUpdate bool
	CreatedAt      time.Time
}

// IssueService defines the lifecycle operations on issues.
type IssueService interface {
	Create(ctx context.Context, requester domain.Requester, input CreateIssueInput) (*IssueView, error)
	Edit(ctx context.Context, requester domain.Requester, issueID string, input UpdateIssueInput) (*IssueView, error)
	ChangeStatus(ctx context.Context, requester domain.Requester, issueID string, input ChangeStatusInput) (*IssueView, error)
	Delete(ctx context.Context, requester domain.Requester, issueID string) error
	AddComment(ctx context.Context, requester domain.Requester, issueID, text string) (*CommentView, error)
}
