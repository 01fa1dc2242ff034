package handler

import (
	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// --- Request → Service input ---

func toLocationInput(l locationRequest) ports.LocationInput {
	return ports.LocationInput{
		Building:    l.Building,
		Floor:       l.Floor,
		Room:        l.Room,
		Description: l.Description,
	}
}

func toCreateInput(req createIssueRequest, idempotencyKey string) ports.CreateIssueInput {
	return ports.CreateIssueInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       req.Priority,
		Location:       toLocationInput(req.Location),
		Images:         req.Images,
		IdempotencyKey: idempotencyKey,
	}
}

func toUpdateInput(req updateIssueRequest) ports.UpdateIssueInput {
	in := ports.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Images:      req.Images,
	}
	if req.Location != nil {
		loc := toLocationInput(*req.Location)
		in.Location = &loc
	}
	return in
}

func toListInput(q listIssuesQuery) ports.ListIssuesInput {
	return ports.ListIssuesInput{
		Status:   q.Status,
		Category: q.Category,
		Priority: q.Priority,
		Mine:     q.My,
		Search:   q.Search,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt.UTC(),
	}
}

func toUserRefResponse(r *ports.UserRef) *userRefResponse {
	if r == nil {
		return nil
	}
	return &userRefResponse{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		Department: r.Department,
	}
}

func toIssueResponse(v ports.IssueView) issueResponse {
	history := make([]statusChangeResponse, 0, len(v.StatusHistory))
	for _, h := range v.StatusHistory {
		history = append(history, statusChangeResponse{
			Status:    h.Status,
			ChangedBy: toUserRefResponse(h.ChangedBy),
			ChangedAt: h.ChangedAt.UTC(),
			Note:      h.Note,
		})
	}
	images := v.Images
	if images == nil {
		images = []string{}
	}
	resp := issueResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Category:    v.Category,
		Status:      v.Status,
		Priority:    v.Priority,
		Location: locationResponse{
			Building:    v.Location.Building,
			Floor:       v.Location.Floor,
			Room:        v.Location.Room,
			Description: v.Location.Description,
		},
		Images:        images,
		ReportedBy:    toUserRefResponse(v.ReportedBy),
		AssignedTo:    toUserRefResponse(v.AssignedTo),
		StatusHistory: history,
		CreatedAt:     v.CreatedAt.UTC(),
		UpdatedAt:     v.UpdatedAt.UTC(),
	}
	if v.ResolvedAt != nil {
		t := v.ResolvedAt.UTC()
		resp.ResolvedAt = &t
	}
	return resp
}

func toIssueResponses(views []ports.IssueView) []issueResponse {
	out := make([]issueResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toIssueResponse(v))
	}
	return out
}

func toCommentResponse(v ports.CommentView) commentResponse {
	return commentResponse{
		ID:             v.ID,
		Text:           v.Text,
		Issue:          v.IssueID,
		Author:         toUserRefResponse(v.Author),
		IsStatusUpdate: v.IsStatusUpdate,
		CreatedAt:      v.CreatedAt.UTC(),
	}
}

func toDetailResponse(d *ports.IssueDetail) issueDetailResponse {
	comments := make([]commentResponse, 0, len(d.Comments))
	for _, c := range d.Comments {
		comments = append(comments, toCommentResponse(c))
	}
	return issueDetailResponse{
		Issue:    toIssueResponse(d.Issue),
		Comments: comments,
	}
}

func toListResponse(r *ports.ListIssuesResult) listIssuesResponse {
	return listIssuesResponse{
		Issues: toIssueResponses(r.Items),
		Page:   r.Page,
		Pages:  r.Pages,
		Total:  r.Total,
	}
}

func toDashboardResponse(s *ports.DashboardStats) dashboardResponse {
	trend := make([]monthlyTrendResponse, 0, len(s.MonthlyTrend))
	for _, m := range s.MonthlyTrend {
		trend = append(trend, monthlyTrendResponse{
			ID:    monthKey{Year: m.Year, Month: m.Month},
			Count: m.Count,
		})
	}
	return dashboardResponse{
		StatusCounts: statusCountsResponse{
			Pending:    s.StatusCounts.Pending,
			InProgress: s.StatusCounts.InProgress,
			Resolved:   s.StatusCounts.Resolved,
			Closed:     s.StatusCounts.Closed,
			Total:      s.StatusCounts.Total,
		},
		CategoryStats:     nonNilCounts(s.CategoryStats),
		PriorityStats:     nonNilCounts(s.PriorityStats),
		RecentIssues:      toIssueResponses(s.RecentIssues),
		AvgResolutionTime: s.AvgResolutionHours,
		MonthlyTrend:      trend,
	}
}

func toAdminStatsResponse(s *ports.AdminStats) adminStatsResponse {
	reporters := make([]topReporterResponse, 0, len(s.TopReporters))
	for _, r := range s.TopReporters {
		reporters = append(reporters, topReporterResponse{
			ID:    r.UserID,
			Name:  r.Name,
			Email: r.Email,
			Count: r.Count,
		})
	}
	locations := make([]locationStatResponse, 0, len(s.LocationStats))
	for _, l := range s.LocationStats {
		locations = append(locations, locationStatResponse{ID: l.Key, Count: l.Count})
	}
	return adminStatsResponse{
		TotalUsers:    s.TotalUsers,
		TotalStudents: s.TotalStudents,
		UrgentIssues:  s.UrgentIssues,
		TopReporters:  reporters,
		LocationStats: locations,
	}
}

func nonNilCounts(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}
