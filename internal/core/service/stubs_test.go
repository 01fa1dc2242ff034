package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubUserRepo struct {
	byID map[string]*domain.User
	seq  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) add(name, email, role string) *domain.User {
	u, err := r.Create(context.Background(), &domain.User{Name: name, Email: email, Role: role, Department: "Physics"})
	if err != nil {
		panic(err)
	}
	return u
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.byID[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.byID {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}

// stubIssueRepo implements both IssueRepository and IssueStatsRepository,
// applying the same filters the Mongo queries do.
type stubIssueRepo struct {
	byID      map[string]*domain.Issue
	users     *stubUserRepo
	seq       int
	createErr error
	appendErr error
}

func newStubIssueRepo(users *stubUserRepo) *stubIssueRepo {
	return &stubIssueRepo{byID: make(map[string]*domain.Issue), users: users}
}

func cloneIssue(i *domain.Issue) *domain.Issue {
	clone := *i
	clone.Images = append([]string(nil), i.Images...)
	clone.StatusHistory = append([]domain.StatusChange(nil), i.StatusHistory...)
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		clone.ResolvedAt = &t
	}
	return &clone
}

func (r *stubIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	issue.ID = fmt.Sprintf("issue-%03d", r.seq)
	r.byID[issue.ID] = cloneIssue(issue)
	return nil
}

func (r *stubIssueRepo) FindByID(_ context.Context, id string) (*domain.Issue, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	return cloneIssue(i), nil
}

func (r *stubIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	stored, ok := r.byID[issue.ID]
	if !ok {
		return domain.ErrIssueNotFound
	}
	stored.Title = issue.Title
	stored.Description = issue.Description
	stored.Category = issue.Category
	stored.Priority = issue.Priority
	stored.Location = issue.Location
	stored.Images = append([]string(nil), issue.Images...)
	stored.UpdatedAt = issue.UpdatedAt
	return nil
}

func (r *stubIssueRepo) AppendStatus(_ context.Context, id string, change domain.StatusChange, resolvedAt *time.Time) (*domain.Issue, error) {
	if r.appendErr != nil {
		return nil, r.appendErr
	}
	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	stored.Status = change.Status
	stored.StatusHistory = append(stored.StatusHistory, change)
	if resolvedAt != nil {
		t := *resolvedAt
		stored.ResolvedAt = &t
	}
	stored.UpdatedAt = change.ChangedAt
	return cloneIssue(stored), nil
}

func (r *stubIssueRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubIssueRepo) inScope(i *domain.Issue, reportedBy string) bool {
	return reportedBy == "" || i.ReportedBy == reportedBy
}

// newestFirst returns clones of the stored issues sorted by createdAt desc.
func (r *stubIssueRepo) newestFirst(keep func(*domain.Issue) bool) []*domain.Issue {
	var out []*domain.Issue
	for _, i := range r.byID {
		if keep(i) {
			out = append(out, cloneIssue(i))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

func (r *stubIssueRepo) List(_ context.Context, f ports.IssueFilter) ([]*domain.Issue, int64, error) {
	search := strings.ToLower(f.Search)
	matched := r.newestFirst(func(i *domain.Issue) bool {
		if !r.inScope(i, f.ReportedBy) {
			return false
		}
		if f.Status != "" && string(i.Status) != f.Status {
			return false
		}
		if f.Category != "" && string(i.Category) != f.Category {
			return false
		}
		if f.Priority != "" && string(i.Priority) != f.Priority {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(i.Title), search) &&
			!strings.Contains(strings.ToLower(i.Description), search) {
			return false
		}
		return true
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		return nil, 0, fmt.Errorf("invalid skip %d", skip)
	}
	if skip > len(matched) {
		return []*domain.Issue{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubIssueRepo) CountBy(_ context.Context, scope ports.IssueScope, field ports.GroupField) ([]ports.GroupCount, error) {
	counts := map[string]int64{}
	for _, i := range r.byID {
		if !r.inScope(i, scope.ReportedBy) {
			continue
		}
		var key string
		switch field {
		case ports.GroupByStatus:
			key = string(i.Status)
		case ports.GroupByCategory:
			key = string(i.Category)
		case ports.GroupByPriority:
			key = string(i.Priority)
		case ports.GroupByBuilding:
			key = i.Location.Building
		}
		counts[key]++
	}
	out := make([]ports.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ports.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count == out[b].Count {
			return out[a].Key < out[b].Key
		}
		return out[a].Count > out[b].Count
	})
	return out, nil
}

func (r *stubIssueRepo) Recent(_ context.Context, scope ports.IssueScope, limit int) ([]*domain.Issue, error) {
	all := r.newestFirst(func(i *domain.Issue) bool { return r.inScope(i, scope.ReportedBy) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *stubIssueRepo) ResolutionSpans(_ context.Context, scope ports.IssueScope) ([]ports.ResolutionSpan, error) {
	var out []ports.ResolutionSpan
	for _, i := range r.byID {
		if r.inScope(i, scope.ReportedBy) && i.ResolvedAt != nil {
			out = append(out, ports.ResolutionSpan{CreatedAt: i.CreatedAt, ResolvedAt: *i.ResolvedAt})
		}
	}
	return out, nil
}

func (r *stubIssueRepo) MonthlyCounts(_ context.Context, scope ports.IssueScope, since time.Time) ([]ports.MonthCount, error) {
	counts := map[[2]int]int64{}
	for _, i := range r.byID {
		if r.inScope(i, scope.ReportedBy) && !i.CreatedAt.Before(since) {
			counts[[2]int{i.CreatedAt.Year(), int(i.CreatedAt.Month())}]++
		}
	}
	out := make([]ports.MonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ports.MonthCount{Year: k[0], Month: k[1], Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Year != out[b].Year {
			return out[a].Year < out[b].Year
		}
		return out[a].Month < out[b].Month
	})
	return out, nil
}

func (r *stubIssueRepo) CountUrgentPending(_ context.Context) (int64, error) {
	var n int64
	for _, i := range r.byID {
		if i.Status == domain.StatusPending && (i.Priority == domain.PriorityHigh || i.Priority == domain.PriorityUrgent) {
			n++
		}
	}
	return n, nil
}

func (r *stubIssueRepo) TopReporters(_ context.Context, limit int) ([]ports.ReporterCount, error) {
	counts := map[string]int64{}
	for _, i := range r.byID {
		counts[i.ReportedBy]++
	}
	var out []ports.ReporterCount
	for id, n := range counts {
		u, ok := r.users.byID[id]
		if !ok {
			continue
		}
		out = append(out, ports.ReporterCount{UserID: id, Name: u.Name, Email: u.Email, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count == out[b].Count {
			return out[a].UserID < out[b].UserID
		}
		return out[a].Count > out[b].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubCommentRepo struct {
	comments  []*domain.Comment
	issues    *stubIssueRepo
	seq       int
	createErr error
}

func newStubCommentRepo(issues *stubIssueRepo) *stubCommentRepo {
	return &stubCommentRepo{issues: issues}
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	c.ID = fmt.Sprintf("comment-%03d", r.seq)
	clone := *c
	r.comments = append(r.comments, &clone)
	return nil
}

func (r *stubCommentRepo) ListByIssue(_ context.Context, issueID string) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.IssueID == issueID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

func (r *stubCommentRepo) DeleteByIssue(_ context.Context, issueID string) (int64, error) {
	kept := r.comments[:0]
	var removed int64
	for _, c := range r.comments {
		if c.IssueID == issueID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return removed, nil
}

func (r *stubCommentRepo) DeleteOrphans(_ context.Context) (int64, error) {
	kept := r.comments[:0]
	var removed int64
	for _, c := range r.comments {
		if _, ok := r.issues.byID[c.IssueID]; !ok {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return removed, nil
}

func (r *stubCommentRepo) countFor(issueID string) int {
	n := 0
	for _, c := range r.comments {
		if c.IssueID == issueID {
			n++
		}
	}
	return n
}

// passthroughTx runs the unit of work directly, like the non-transactional
// Mongo configuration.
type passthroughTx struct {
	calls int
}

func (t *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[scope+"/"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key, issueID string) error {
	s.keys[scope+"/"+key] = issueID
	return nil
}

type stubReleaser struct {
	released map[string][]string
}

func (r *stubReleaser) Release(issueID string, urls []string) {
	if r.released == nil {
		r.released = make(map[string][]string)
	}
	r.released[issueID] = append([]string(nil), urls...)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	users     *stubUserRepo
	issues    *stubIssueRepo
	comments  *stubCommentRepo
	tx        *passthroughTx
	idem      *stubIdempotency
	released  *stubReleaser
	lifecycle *IssueService
	query     *QueryService

	student domain.Requester
	other   domain.Requester
	admin   domain.Requester
}

func newFixture() *fixture {
	users := newStubUserRepo()
	issues := newStubIssueRepo(users)
	comments := newStubCommentRepo(issues)
	tx := &passthroughTx{}
	idem := newStubIdempotency()
	released := &stubReleaser{}

	student := users.add("Sam Student", "sam@campus.edu", domain.RoleStudent)
	other := users.add("Olive Other", "olive@campus.edu", domain.RoleStudent)
	admin := users.add("Ada Admin", "ada@campus.edu", domain.RoleAdmin)

	return &fixture{
		users:     users,
		issues:    issues,
		comments:  comments,
		tx:        tx,
		idem:      idem,
		released:  released,
		lifecycle: NewIssueService(issues, comments, users, tx, idem, released, discardLogger),
		query:     NewQueryService(issues, issues, comments, users, discardLogger),
		student:   domain.Requester{ID: student.ID, Role: student.Role},
		other:     domain.Requester{ID: other.ID, Role: other.Role},
		admin:     domain.Requester{ID: admin.ID, Role: admin.Role},
	}
}

func validCreateInput() ports.CreateIssueInput {
	return ports.CreateIssueInput{
		Title:       "Broken projector",
		Description: "The projector in the lecture hall flickers constantly.",
		Category:    string(domain.CategoryEquipment),
		Location:    ports.LocationInput{Building: "Science Block", Floor: "2", Room: "204"},
	}
}

func ptr[T any](v T) *T { return &v }
