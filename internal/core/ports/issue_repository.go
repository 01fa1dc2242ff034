package ports

import (
	"context"
	"time"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// IssueFilter carries the query parameters for listing issues. Empty string
// fields are not applied.
type IssueFilter struct {
	ReportedBy string
	Status     string
	Category   string
	Priority   string
	Search     string // case-insensitive substring of title or description
	Page       int    // 1-based
	Limit      int
}

// IssueRepository defines persistence operations for issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	FindByID(ctx context.Context, id string) (*domain.Issue, error)
	// Update writes the editable fields (title, description, category,
	// priority, location, images) and bumps updatedAt.
	Update(ctx context.Context, issue *domain.Issue) error
	// AppendStatus sets the issue's status, pushes change onto its history and,
	// when resolvedAt is non-nil, stamps the resolution time. It returns the
	// issue as stored after the write.
	AppendStatus(ctx context.Context, id string, change domain.StatusChange, resolvedAt *time.Time) (*domain.Issue, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of issues matching filter, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter IssueFilter) ([]*domain.Issue, int64, error)
}

// IssueScope restricts aggregations to one reporter. Empty means all issues.
type IssueScope struct {
	ReportedBy string
}

// GroupField names an issue attribute that can be grouped on.
type GroupField string

const (
	GroupByStatus   GroupField = "status"
	GroupByCategory GroupField = "category"
	GroupByPriority GroupField = "priority"
	GroupByBuilding GroupField = "location.building"
)

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	Key   string
	Count int64
}

// MonthCount is the number of issues created in one calendar month.
type MonthCount struct {
	Year  int
	Month int
	Count int64
}

// ResolutionSpan holds the two timestamps needed to compute resolution time.
type ResolutionSpan struct {
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// ReporterCount is a user together with the number of issues they reported.
type ReporterCount struct {
	UserID string
	Name   string
	Email  string
	Count  int64
}

// IssueStatsRepository exposes the aggregations behind the dashboards.
type IssueStatsRepository interface {
	// CountBy groups issues in scope by field, sorted by count descending.
	CountBy(ctx context.Context, scope IssueScope, field GroupField) ([]GroupCount, error)
	Recent(ctx context.Context, scope IssueScope, limit int) ([]*domain.Issue, error)
	// ResolutionSpans returns createdAt/resolvedAt for every issue in scope
	// that has a resolvedAt timestamp.
	ResolutionSpans(ctx context.Context, scope IssueScope) ([]ResolutionSpan, error)
	// MonthlyCounts groups issues created at or after since by year and month,
	// in chronological order.
	MonthlyCounts(ctx context.Context, scope IssueScope, since time.Time) ([]MonthCount, error)
	// CountUrgentPending counts pending issues with high or urgent priority.
	CountUrgentPending(ctx context.Context) (int64, error)
	TopReporters(ctx context.Context, limit int) ([]ReporterCount, error)
}
