package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
	"github.com/campus-issues/issue-tracker/internal/pkg/validate"
)

const initialStatusNote = "Issue reported"

// IdempotencyStore remembers which issue a client-supplied key produced (Redis).
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, issueID string) error
}

// IssueService implements the issue lifecycle: reporting, editing, status
// changes, deletion and comments.
type IssueService struct {
	issues   ports.IssueRepository
	comments ports.CommentRepository
	dir      directory
	tx       ports.Transactor
	idem     IdempotencyStore
	images   ports.ImageReleaser
	validate *validate.Validator
	log      zerolog.Logger
	now      func() time.Time
}

// NewIssueService wires the lifecycle service. idem may be nil, in which case
// Idempotency-Key headers are ignored; images may be nil, in which case the
// images of deleted issues are left on the host.
func NewIssueService(
	issues ports.IssueRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	tx ports.Transactor,
	idem IdempotencyStore,
	images ports.ImageReleaser,
	log zerolog.Logger,
) *IssueService {
	return &IssueService{
		issues:   issues,
		comments: comments,
		dir:      directory{users: users},
		tx:       tx,
		idem:     idem,
		images:   images,
		validate: validate.New(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create reports a new issue owned by the requester. The issue starts in
// pending with a single history entry recording the report.
func (s *IssueService) Create(ctx context.Context, requester domain.Requester, input ports.CreateIssueInput) (*ports.IssueView, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location.Building = strings.TrimSpace(input.Location.Building)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	if replay := s.replay(ctx, requester, input.IdempotencyKey); replay != nil {
		return s.dir.expandIssue(ctx, listRefs, replay)
	}

	priority := domain.IssuePriority(input.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	images := input.Images
	if images == nil {
		images = []string{}
	}

	now := s.now()
	issue := &domain.Issue{
		Title:       input.Title,
		Description: input.Description,
		Category:    domain.IssueCategory(input.Category),
		Status:      domain.StatusPending,
		Priority:    priority,
		Location: domain.Location{
			Building:    input.Location.Building,
			Floor:       input.Location.Floor,
			Room:        input.Location.Room,
			Description: input.Location.Description,
		},
		Images:     images,
		ReportedBy: requester.ID,
		StatusHistory: []domain.StatusChange{{
			Status:    domain.StatusPending,
			ChangedBy: requester.ID,
			ChangedAt: now,
			Note:      initialStatusNote,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		logFor(ctx, &s.log).Error().Err(err).Str("reported_by", requester.ID).Msg("failed to create issue")
		return nil, fmt.Errorf("create issue: %w", err)
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, requester.ID, input.IdempotencyKey, issue.ID); err != nil {
			logFor(ctx, &s.log).Warn().Err(err).Str("issue_id", issue.ID).Msg("failed to store idempotency key")
		}
	}

	logFor(ctx, &s.log).Info().
		Str("issue_id", issue.ID).
		Str("category", string(issue.Category)).
		Str("reported_by", requester.ID).
		Msg("issue reported")

	return s.dir.expandIssue(ctx, listRefs, issue)
}

// replay returns the issue previously created with key, or nil. Store
// failures are logged and treated as a miss.
func (s *IssueService) replay(ctx context.Context, requester domain.Requester, key string) *domain.Issue {
	if key == "" || s.idem == nil {
		return nil
	}
	issueID, found, err := s.idem.Lookup(ctx, requester.ID, key)
	if err != nil {
		logFor(ctx, &s.log).Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	existing, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		// The remembered issue may have been deleted since.
		logFor(ctx, &s.log).Debug().Err(err).Str("issue_id", issueID).Msg("idempotent issue unavailable")
		return nil
	}
	logFor(ctx, &s.log).Info().Str("idempotency_key", key).Str("issue_id", existing.ID).Msg("idempotent replay")
	return existing
}

// Edit applies a partial update. Owners may edit only while the issue is
// pending; admins may edit at any time.
func (s *IssueService) Edit(ctx context.Context, requester domain.Requester, issueID string, input ports.UpdateIssueInput) (*ports.IssueView, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(issue, requester) {
		return nil, domain.NewError(domain.ErrForbidden, "Not authorized to update this issue")
	}
	if !requester.IsAdmin() && issue.Status != domain.StatusPending {
		return nil, domain.NewError(domain.ErrInvalidState, "Cannot edit issue after it has been processed")
	}

	trimPtr(input.Title)
	trimPtr(input.Description)
	if input.Location != nil {
		input.Location.Building = strings.TrimSpace(input.Location.Building)
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	if input.Title != nil {
		issue.Title = *input.Title
	}
	if input.Description != nil {
		issue.Description = *input.Description
	}
	if input.Category != nil {
		issue.Category = domain.IssueCategory(*input.Category)
	}
	if input.Priority != nil {
		issue.Priority = domain.IssuePriority(*input.Priority)
	}
	if input.Location != nil {
		issue.Location = domain.Location{
			Building:    input.Location.Building,
			Floor:       input.Location.Floor,
			Room:        input.Location.Room,
			Description: input.Location.Description,
		}
	}
	if input.Images != nil {
		issue.Images = append([]string{}, (*input.Images)...)
	}
	issue.UpdatedAt = s.now()

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("update issue: %w", err)
	}

	logFor(ctx, &s.log).Info().Str("issue_id", issue.ID).Str("by", requester.ID).Msg("issue edited")
	return s.dir.expandIssue(ctx, listRefs, issue)
}

// ChangeStatus moves an issue to any of the four statuses, appends the
// transition to its history, stamps resolvedAt on resolution and posts a
// system comment carrying the same note.
func (s *IssueService) ChangeStatus(ctx context.Context, requester domain.Requester, issueID string, input ports.ChangeStatusInput) (*ports.IssueView, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	status := domain.IssueStatus(strings.TrimSpace(input.Status))
	if !status.Valid() {
		return nil, domain.NewError(domain.ErrValidation, "Invalid status")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		note = domain.DefaultStatusNote(status)
	}
	if utf8.RuneCountInString(note) > domain.MaxCommentLength {
		return nil, domain.NewError(domain.ErrValidation,
			fmt.Sprintf("note cannot exceed %d characters", domain.MaxCommentLength))
	}

	now := s.now()
	change := domain.StatusChange{
		Status:    status,
		ChangedBy: requester.ID,
		ChangedAt: now,
		Note:      note,
	}
	var resolvedAt *time.Time
	if status == domain.StatusResolved {
		resolvedAt = &now
	}

	var updated *domain.Issue
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.issues.AppendStatus(ctx, issueID, change, resolvedAt)
		if err != nil {
			return err
		}
		return s.comments.Create(ctx, &domain.Comment{
			Text:           note,
			IssueID:        issueID,
			AuthorID:       requester.ID,
			IsStatusUpdate: true,
			CreatedAt:      now,
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrIssueNotFound) {
			logFor(ctx, &s.log).Error().Err(err).Str("issue_id", issueID).Msg("status change failed")
		}
		return nil, fmt.Errorf("change status: %w", err)
	}

	logFor(ctx, &s.log).Info().
		Str("issue_id", issueID).
		Str("status", string(status)).
		Str("by", requester.ID).
		Msg("issue status changed")

	return s.dir.expandIssue(ctx, detailRefs, updated)
}

// Delete removes an issue and its comment thread, then hands its images to
// the releaser. Comments are removed first; without transactions the orphan
// sweep finishes a delete that failed halfway.
func (s *IssueService) Delete(ctx context.Context, requester domain.Requester, issueID string) error {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return err
	}
	if !isOwnerOrAdmin(issue, requester) {
		return domain.NewError(domain.ErrForbidden, "Not authorized to delete this issue")
	}

	var removed int64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if removed, err = s.comments.DeleteByIssue(ctx, issueID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return s.issues.Delete(ctx, issueID)
	})
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if s.images != nil && len(issue.Images) > 0 {
		s.images.Release(issueID, issue.Images)
	}

	logFor(ctx, &s.log).Info().
		Str("issue_id", issueID).
		Int64("comments_removed", removed).
		Str("by", requester.ID).
		Msg("issue deleted")
	return nil
}

// AddComment posts a user comment on an existing issue.
func (s *IssueService) AddComment(ctx context.Context, requester domain.Requester, issueID, text string) (*ports.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewError(domain.ErrValidation, "Comment text is required")
	}
	if utf8.RuneCountInString(text) > domain.MaxCommentLength {
		return nil, domain.NewError(domain.ErrValidation,
			fmt.Sprintf("Comment cannot exceed %d characters", domain.MaxCommentLength))
	}

	if _, err := s.issues.FindByID(ctx, issueID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		Text:      text,
		IssueID:   issueID,
		AuthorID:  requester.ID,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	users, err := s.dir.lookup(ctx, []string{comment.AuthorID})
	if err != nil {
		return nil, err
	}
	view := toCommentView(comment, users)
	return &view, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
