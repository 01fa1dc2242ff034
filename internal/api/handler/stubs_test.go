package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

var (
	student = domain.Requester{ID: "u-student", Role: domain.RoleStudent}
	admin   = domain.Requester{ID: "u-admin", Role: domain.RoleAdmin}
)

// newContext builds an Echo context for a JSON request. A zero requester
// leaves the context unauthenticated.
func newContext(method, target string, body io.Reader, who domain.Requester) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if who.ID != "" {
		c.Set("user_id", who.ID)
		c.Set("role", who.Role)
	}
	return c, rec
}

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	meFn       func(ctx context.Context, requester domain.Requester) (*domain.User, error)
	profileFn  func(ctx context.Context, requester domain.Requester, update ports.ProfileUpdate) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, requester domain.Requester) (*domain.User, error) {
	return s.meFn(ctx, requester)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, requester domain.Requester, update ports.ProfileUpdate) (*domain.User, error) {
	return s.profileFn(ctx, requester, update)
}

type stubIssueService struct {
	createFn       func(ctx context.Context, requester domain.Requester, input ports.CreateIssueInput) (*ports.IssueView, error)
	editFn         func(ctx context.Context, requester domain.Requester, issueID string, input ports.UpdateIssueInput) (*ports.IssueView, error)
	changeStatusFn func(ctx context.Context, requester domain.Requester, issueID string, input ports.ChangeStatusInput) (*ports.IssueView, error)
	deleteFn       func(ctx context.Context, requester domain.Requester, issueID string) error
	addCommentFn   func(ctx context.Context, requester domain.Requester, issueID, text string) (*ports.CommentView, error)
}

func (s *stubIssueService) Create(ctx context.Context, requester domain.Requester, input ports.CreateIssueInput) (*ports.IssueView, error) {
	return s.createFn(ctx, requester, input)
}

func (s *stubIssueService) Edit(ctx context.Context, requester domain.Requester, issueID string, input ports.UpdateIssueInput) (*ports.IssueView, error) {
	return s.editFn(ctx, requester, issueID, input)
}

func (s *stubIssueService) ChangeStatus(ctx context.Context, requester domain.Requester, issueID string, input ports.ChangeStatusInput) (*ports.IssueView, error) {
	return s.changeStatusFn(ctx, requester, issueID, input)
}

func (s *stubIssueService) Delete(ctx context.Context, requester domain.Requester, issueID string) error {
	return s.deleteFn(ctx, requester, issueID)
}

func (s *stubIssueService) AddComment(ctx context.Context, requester domain.Requester, issueID, text string) (*ports.CommentView, error) {
	return s.addCommentFn(ctx, requester, issueID, text)
}

type stubQueryService struct {
	listFn      func(ctx context.Context, requester domain.Requester, input ports.ListIssuesInput) (*ports.ListIssuesResult, error)
	getFn       func(ctx context.Context, issueID string) (*ports.IssueDetail, error)
	dashboardFn func(ctx context.Context, requester domain.Requester) (*ports.DashboardStats, error)
	adminFn     func(ctx context.Context, requester domain.Requester) (*ports.AdminStats, error)
}

func (s *stubQueryService) ListIssues(ctx context.Context, requester domain.Requester, input ports.ListIssuesInput) (*ports.ListIssuesResult, error) {
	return s.listFn(ctx, requester, input)
}

func (s *stubQueryService) GetIssue(ctx context.Context, issueID string) (*ports.IssueDetail, error) {
	return s.getFn(ctx, issueID)
}

func (s *stubQueryService) DashboardStats(ctx context.Context, requester domain.Requester) (*ports.DashboardStats, error) {
	return s.dashboardFn(ctx, requester)
}

func (s *stubQueryService) AdminStats(ctx context.Context, requester domain.Requester) (*ports.AdminStats, error) {
	return s.adminFn(ctx, requester)
}

type stubUploadService struct {
	uploadFn func(ctx context.Context, input ports.UploadInput) (*ports.UploadResult, error)
	deleteFn func(ctx context.Context, publicID string) error
}

func (s *stubUploadService) Upload(ctx context.Context, input ports.UploadInput) (*ports.UploadResult, error) {
	return s.uploadFn(ctx, input)
}

func (s *stubUploadService) Delete(ctx context.Context, publicID string) error {
	return s.deleteFn(ctx, publicID)
}
