package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

func TestStatsHandler_Dashboard(t *testing.T) {
	query := &stubQueryService{
		dashboardFn: func(ctx context.Context, requester domain.Requester) (*ports.DashboardStats, error) {
			return &ports.DashboardStats{
				StatusCounts:       ports.StatusCounts{Pending: 2, InProgress: 1, Resolved: 1, Total: 4},
				CategoryStats:      map[string]int64{"network": 3, "other": 1},
				AvgResolutionHours: 3,
				MonthlyTrend:       []ports.MonthCount{{Year: 2024, Month: 3, Count: 4}},
			}, nil
		},
	}
	h := NewStatsHandler(query)

	c, rec := newContext(http.MethodGet, "/api/stats", nil, student)
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		StatusCounts      map[string]int64 `json:"statusCounts"`
		CategoryStats     map[string]int64 `json:"categoryStats"`
		PriorityStats     map[string]int64 `json:"priorityStats"`
		RecentIssues      []any            `json:"recentIssues"`
		AvgResolutionTime int64            `json:"avgResolutionTime"`
		MonthlyTrend      []struct {
			ID struct {
				Year  int `json:"year"`
				Month int `json:"month"`
			} `json:"_id"`
			Count int64 `json:"count"`
		} `json:"monthlyTrend"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.StatusCounts["inProgress"] != 1 || resp.StatusCounts["total"] != 4 {
		t.Errorf("unexpected status counts %v", resp.StatusCounts)
	}
	if resp.CategoryStats["network"] != 3 || resp.PriorityStats == nil || resp.RecentIssues == nil {
		t.Errorf("unexpected breakdowns %+v", resp)
	}
	if resp.AvgResolutionTime != 3 {
		t.Errorf("expected 3h average, got %d", resp.AvgResolutionTime)
	}
	if len(resp.MonthlyTrend) != 1 || resp.MonthlyTrend[0].ID.Month != 3 || resp.MonthlyTrend[0].Count != 4 {
		t.Errorf("unexpected trend %+v", resp.MonthlyTrend)
	}
}

func TestStatsHandler_Admin(t *testing.T) {
	query := &stubQueryService{
		adminFn: func(ctx context.Context, requester domain.Requester) (*ports.AdminStats, error) {
			if !requester.IsAdmin() {
				return nil, domain.ErrForbidden
			}
			return &ports.AdminStats{
				TotalUsers:    10,
				TotalStudents: 9,
				UrgentIssues:  2,
				TopReporters:  []ports.ReporterCount{{UserID: "u-1", Name: "Alice", Email: "alice@campus.edu", Count: 5}},
				LocationStats: []ports.GroupCount{{Key: "Library", Count: 4}},
			}, nil
		},
	}
	h := NewStatsHandler(query)

	c, rec := newContext(http.MethodGet, "/api/stats/admin", nil, admin)
	if err := h.Admin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp adminStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.TotalUsers != 10 || resp.UrgentIssues != 2 {
		t.Errorf("unexpected totals %+v", resp)
	}
	if len(resp.TopReporters) != 1 || resp.TopReporters[0].ID != "u-1" || resp.LocationStats[0].ID != "Library" {
		t.Errorf("unexpected breakdowns %+v", resp)
	}

	c, _ = newContext(http.MethodGet, "/api/stats/admin", nil, student)
	if err := h.Admin(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
