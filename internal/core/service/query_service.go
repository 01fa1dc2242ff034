package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

const (
	defaultPageSize   = 10
	maxPageSize       = 100
	maxPage           = 100000
	recentIssuesLimit = 5
	topReportersLimit = 5
	trendMonths       = 6
)

// QueryService implements listings, issue detail and dashboard statistics.
type QueryService struct {
	issues   ports.IssueRepository
	stats    ports.IssueStatsRepository
	comments ports.CommentRepository
	users    ports.UserRepository
	dir      directory
	log      zerolog.Logger
	now      func() time.Time
}

func NewQueryService(
	issues ports.IssueRepository,
	stats ports.IssueStatsRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	log zerolog.Logger,
) *QueryService {
	return &QueryService{
		issues:   issues,
		stats:    stats,
		comments: comments,
		users:    users,
		dir:      directory{users: users},
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListIssues returns one page of issues, newest first. The "mine" flag is a
// convenience filter, not an access boundary: any authenticated caller may
// list every issue.
func (s *QueryService) ListIssues(ctx context.Context, requester domain.Requester, input ports.ListIssuesInput) (*ports.ListIssuesResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := ports.IssueFilter{
		Status:   filterValue(input.Status),
		Category: filterValue(input.Category),
		Priority: filterValue(input.Priority),
		Search:   strings.TrimSpace(input.Search),
		Page:     page,
		Limit:    limit,
	}
	if input.Mine {
		filter.ReportedBy = requester.ID
	}

	issues, total, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	views, err := s.dir.expandIssues(ctx, listRefs, issues...)
	if err != nil {
		return nil, err
	}

	return &ports.ListIssuesResult{
		Items: views,
		Page:  page,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
		Total: total,
	}, nil
}

// filterValue maps the UI's "all" sentinel to no filter.
func filterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// GetIssue returns an issue with its comment thread, oldest comment first.
func (s *QueryService) GetIssue(ctx context.Context, issueID string) (*ports.IssueDetail, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := issueUserIDs(detailRefs, issue)
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	users, err := s.dir.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	detail := &ports.IssueDetail{
		Issue:    toIssueView(issue, users, detailRefs),
		Comments: make([]ports.CommentView, len(comments)),
	}
	for i, c := range comments {
		detail.Comments[i] = toCommentView(c, users)
	}
	return detail, nil
}

// DashboardStats computes the dashboard summary. Students see their own
// issues only; admins see every issue.
func (s *QueryService) DashboardStats(ctx context.Context, requester domain.Requester) (*ports.DashboardStats, error) {
	var scope ports.IssueScope
	if !requester.IsAdmin() {
		scope.ReportedBy = requester.ID
	}

	var (
		byStatus, byCategory, byPriority []ports.GroupCount
		recent                           []*domain.Issue
		spans                            []ports.ResolutionSpan
		trend                            []ports.MonthCount
	)
	since := s.now().AddDate(0, -trendMonths, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = s.stats.CountBy(gctx, scope, ports.GroupByStatus)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = s.stats.CountBy(gctx, scope, ports.GroupByCategory)
		return err
	})
	g.Go(func() (err error) {
		byPriority, err = s.stats.CountBy(gctx, scope, ports.GroupByPriority)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.stats.Recent(gctx, scope, recentIssuesLimit)
		return err
	})
	g.Go(func() (err error) {
		spans, err = s.stats.ResolutionSpans(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		trend, err = s.stats.MonthlyCounts(gctx, scope, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	recentViews, err := s.dir.expandIssues(ctx, recentRefs, recent...)
	if err != nil {
		return nil, err
	}
	if trend == nil {
		trend = []ports.MonthCount{}
	}

	return &ports.DashboardStats{
		StatusCounts:       statusCounts(byStatus),
		CategoryStats:      countMap(byCategory),
		PriorityStats:      countMap(byPriority),
		RecentIssues:       recentViews,
		AvgResolutionHours: averageResolutionHours(spans),
		MonthlyTrend:       trend,
	}, nil
}

// AdminStats computes campus-wide figures for the admin panel.
func (s *QueryService) AdminStats(ctx context.Context, requester domain.Requester) (*ports.AdminStats, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	out := &ports.AdminStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalUsers, err = s.users.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		out.TotalStudents, err = s.users.Count(gctx, domain.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		out.UrgentIssues, err = s.stats.CountUrgentPending(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TopReporters, err = s.stats.TopReporters(gctx, topReportersLimit)
		return err
	})
	g.Go(func() (err error) {
		out.LocationStats, err = s.stats.CountBy(gctx, ports.IssueScope{}, ports.GroupByBuilding)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}

	if out.TopReporters == nil {
		out.TopReporters = []ports.ReporterCount{}
	}
	if out.LocationStats == nil {
		out.LocationStats = []ports.GroupCount{}
	}
	return out, nil
}

func statusCounts(groups []ports.GroupCount) ports.StatusCounts {
	var c ports.StatusCounts
	for _, g := range groups {
		switch domain.IssueStatus(g.Key) {
		case domain.StatusPending:
			c.Pending = g.Count
		case domain.StatusInProgress:
			c.InProgress = g.Count
		case domain.StatusResolved:
			c.Resolved = g.Count
		case domain.StatusClosed:
			c.Closed = g.Count
		}
	}
	c.Total = c.Pending + c.InProgress + c.Resolved + c.Closed
	return c
}

func countMap(groups []ports.GroupCount) map[string]int64 {
	m := make(map[string]int64, len(groups))
	for _, g := range groups {
		m[g.Key] = g.Count
	}
	return m
}

// averageResolutionHours is the mean of resolvedAt-createdAt, rounded to the
// nearest whole hour. Zero resolved issues yield 0.
func averageResolutionHours(spans []ports.ResolutionSpan) int64 {
	if len(spans) == 0 {
		return 0
	}
	var totalMillis int64
	for _, sp := range spans {
		totalMillis += sp.ResolvedAt.Sub(sp.CreatedAt).Milliseconds()
	}
	hours := float64(totalMillis) / float64(len(spans)) / float64(time.Hour/time.Millisecond)
	return int64(math.Round(hours))
}
