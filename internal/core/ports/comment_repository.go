package ports

import (
	"context"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// CommentRepository handles persistence of issue comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// ListByIssue returns the comments of an issue, oldest first.
	ListByIssue(ctx context.Context, issueID string) ([]*domain.Comment, error)
	// DeleteByIssue removes every comment referencing issueID and reports how
	// many were removed.
	DeleteByIssue(ctx context.Context, issueID string) (int64, error)
	// DeleteOrphans removes comments whose issue no longer exists.
	DeleteOrphans(ctx context.Context) (int64, error)
}

// Transactor runs fn as a single unit of work. Implementations without
// transaction support run fn directly, so callers must keep their writes
// safe to retry.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
