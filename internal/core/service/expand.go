package service

import (
	"context"
	"fmt"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// refFunc projects a user onto the fields a given reference exposes.
type refFunc func(u *domain.User) *ports.UserRef

func nameRef(u *domain.User) *ports.UserRef {
	return &ports.UserRef{ID: u.ID, Name: u.Name}
}

func contactRef(u *domain.User) *ports.UserRef {
	return &ports.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ownerRef(u *domain.User) *ports.UserRef {
	return &ports.UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department}
}

func authorRef(u *domain.User) *ports.UserRef {
	return &ports.UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// issueRefs chooses the projection of each user reference in an issue. A nil
// projection leaves the reference as a bare id.
type issueRefs struct {
	owner    refFunc
	assignee refFunc
	changer  refFunc
}

var (
	listRefs   = issueRefs{owner: contactRef, assignee: contactRef}
	detailRefs = issueRefs{owner: ownerRef, assignee: contactRef, changer: nameRef}
	recentRefs = issueRefs{owner: nameRef}
)

// directory resolves user ids into denormalized references with a single
// repository round trip per response.
type directory struct {
	users ports.UserRepository
}

func (d directory) lookup(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[string]*domain.User{}, nil
	}
	users, err := d.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	return users, nil
}

// expandIssues converts issues to views, resolving the references refs asks for.
func (d directory) expandIssues(ctx context.Context, refs issueRefs, issues ...*domain.Issue) ([]ports.IssueView, error) {
	users, err := d.lookup(ctx, issueUserIDs(refs, issues...))
	if err != nil {
		return nil, err
	}
	views := make([]ports.IssueView, len(issues))
	for i, issue := range issues {
		views[i] = toIssueView(issue, users, refs)
	}
	return views, nil
}

func (d directory) expandIssue(ctx context.Context, refs issueRefs, issue *domain.Issue) (*ports.IssueView, error) {
	views, err := d.expandIssues(ctx, refs, issue)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func issueUserIDs(refs issueRefs, issues ...*domain.Issue) []string {
	var ids []string
	for _, issue := range issues {
		if refs.owner != nil {
			ids = append(ids, issue.ReportedBy)
		}
		if refs.assignee != nil {
			ids = append(ids, issue.AssignedTo)
		}
		if refs.changer != nil {
			for _, h := range issue.StatusHistory {
				ids = append(ids, h.ChangedBy)
			}
		}
	}
	return ids
}

func resolveRef(id string, users map[string]*domain.User, project refFunc) *ports.UserRef {
	if id == "" {
		return nil
	}
	u, ok := users[id]
	if project == nil || !ok {
		return &ports.UserRef{ID: id}
	}
	return project(u)
}

func toIssueView(issue *domain.Issue, users map[string]*domain.User, refs issueRefs) ports.IssueView {
	history := make([]ports.StatusChangeView, len(issue.StatusHistory))
	for i, h := range issue.StatusHistory {
		history[i] = ports.StatusChangeView{
			Status:    string(h.Status),
			ChangedBy: resolveRef(h.ChangedBy, users, refs.changer),
			ChangedAt: h.ChangedAt,
			Note:      h.Note,
		}
	}
	images := issue.Images
	if images == nil {
		images = []string{}
	}
	return ports.IssueView{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Category:    string(issue.Category),
		Status:      string(issue.Status),
		Priority:    string(issue.Priority),
		Location: ports.LocationInput{
			Building:    issue.Location.Building,
			Floor:       issue.Location.Floor,
			Room:        issue.Location.Room,
			Description: issue.Location.Description,
		},
		Images:        images,
		ReportedBy:    resolveRef(issue.ReportedBy, users, refs.owner),
		AssignedTo:    resolveRef(issue.AssignedTo, users, refs.assignee),
		StatusHistory: history,
		ResolvedAt:    issue.ResolvedAt,
		CreatedAt:     issue.CreatedAt,
		UpdatedAt:     issue.UpdatedAt,
	}
}

func toCommentView(c *domain.Comment, users map[string]*domain.User) ports.CommentView {
	return ports.CommentView{
		ID:             c.ID,
		Text:           c.Text,
		IssueID:        c.IssueID,
		Author:         resolveRef(c.AuthorID, users, authorRef),
		IsStatusUpdate: c.IsStatusUpdate,
		CreatedAt:      c.CreatedAt,
	}
}
