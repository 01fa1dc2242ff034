package ports

import (
	"context"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

// ListIssuesInput carries all parameters for the list endpoint. Status,
// Category and Priority accept "all" as an alias for no filter.
type ListIssuesInput struct {
	Status   string
	Category string
	Priority string
	Mine     bool
	Search   string
	Page     int
	Limit    int
}

// ListIssuesResult is one page of issues.
type ListIssuesResult struct {
	Items []IssueView
	Page  int
	Pages int
	Total int64
}

// IssueDetail is a single issue together with its comment thread.
type IssueDetail struct {
	Issue    IssueView
	Comments []CommentView
}

// StatusCounts holds the number of issues in each status.
type StatusCounts struct {
	Pending    int64
	InProgress int64
	Resolved   int64
	Closed     int64
	Total      int64
}

// DashboardStats is the summary shown on a user's dashboard. It is scoped to
// the requester's own issues unless the requester is an admin.
type DashboardStats struct {
	StatusCounts       StatusCounts
	CategoryStats      map[string]int64
	PriorityStats      map[string]int64
	RecentIssues       []IssueView
	AvgResolutionHours int64
	MonthlyTrend       []MonthCount
}

// AdminStats holds the campus-wide figures shown on the admin panel.
type AdminStats struct {
	TotalUsers    int64
	TotalStudents int64
	UrgentIssues  int64
	TopReporters  []ReporterCount
	LocationStats []GroupCount
}

// QueryService defines the read side: listings, detail and statistics.
type QueryService interface {
	ListIssues(ctx context.Context, requester domain.Requester, input ListIssuesInput) (*ListIssuesResult, error)
	GetIssue(ctx context.Context, issueID string) (*IssueDetail, error)
	DashboardStats(ctx context.Context, requester domain.Requester) (*DashboardStats, error)
	AdminStats(ctx context.Context, requester domain.Requester) (*AdminStats, error)
}
