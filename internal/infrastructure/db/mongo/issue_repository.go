package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

const issuesCollection = "issues"

// IssueRepository implements ports.IssueRepository and
// ports.IssueStatsRepository using MongoDB.
type IssueRepository struct {
	col *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{col: db.Collection(issuesCollection)}
}

type locationDoc struct {
	Building    string `bson:"building"`
	Floor       string `bson:"floor,omitempty"`
	Room        string `bson:"room,omitempty"`
	Description string `bson:"description,omitempty"`
}

type statusChangeDoc struct {
	Status    string             `bson:"status"`
	ChangedBy primitive.ObjectID `bson:"changed_by,omitempty"`
	ChangedAt time.Time          `bson:"changed_at"`
	Note      string             `bson:"note,omitempty"`
}

type issueDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	Status        string             `bson:"status"`
	Priority      string             `bson:"priority"`
	Location      locationDoc        `bson:"location"`
	Images        []string           `bson:"images"`
	ReportedBy    primitive.ObjectID `bson:"reported_by"`
	AssignedTo    primitive.ObjectID `bson:"assigned_to,omitempty"`
	StatusHistory []statusChangeDoc  `bson:"status_history"`
	ResolvedAt    *time.Time         `bson:"resolved_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func issueIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reported_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
}

func newIssueDoc(i *domain.Issue) issueDoc {
	history := make([]statusChangeDoc, len(i.StatusHistory))
	for n, h := range i.StatusHistory {
		history[n] = newStatusChangeDoc(h)
	}
	images := i.Images
	if images == nil {
		images = []string{}
	}
	return issueDoc{
		Title:         i.Title,
		Description:   i.Description,
		Category:      string(i.Category),
		Status:        string(i.Status),
		Priority:      string(i.Priority),
		Location:      locationDoc(i.Location),
		Images:        images,
		ReportedBy:    toRef(i.ReportedBy),
		AssignedTo:    toRef(i.AssignedTo),
		StatusHistory: history,
		ResolvedAt:    i.ResolvedAt,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func newStatusChangeDoc(h domain.StatusChange) statusChangeDoc {
	return statusChangeDoc{
		Status:    string(h.Status),
		ChangedBy: toRef(h.ChangedBy),
		ChangedAt: h.ChangedAt,
		Note:      h.Note,
	}
}

func (d issueDoc) toDomain() *domain.Issue {
	history := make([]domain.StatusChange, len(d.StatusHistory))
	for n, h := range d.StatusHistory {
		history[n] = domain.StatusChange{
			Status:    domain.IssueStatus(h.Status),
			ChangedBy: refID(h.ChangedBy),
			ChangedAt: h.ChangedAt.UTC(),
			Note:      h.Note,
		}
	}
	var resolvedAt *time.Time
	if d.ResolvedAt != nil {
		t := d.ResolvedAt.UTC()
		resolvedAt = &t
	}
	return &domain.Issue{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Category:      domain.IssueCategory(d.Category),
		Status:        domain.IssueStatus(d.Status),
		Priority:      domain.IssuePriority(d.Priority),
		Location:      domain.Location(d.Location),
		Images:        d.Images,
		ReportedBy:    refID(d.ReportedBy),
		AssignedTo:    refID(d.AssignedTo),
		StatusHistory: history,
		ResolvedAt:    resolvedAt,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

// Create inserts a new issue document and sets issue.ID.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newIssueDoc(issue))
	if err != nil {
		return err
	}
	issue.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc issueDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Update writes the editable fields only; status, history and ownership are
// never touched here.
func (r *IssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	oid, err := primitive.ObjectIDFromHex(issue.ID)
	if err != nil {
		return domain.ErrIssueNotFound
	}
	doc := newIssueDoc(issue)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"category":    doc.Category,
		"priority":    doc.Priority,
		"location":    doc.Location,
		"images":      doc.Images,
		"updated_at":  doc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// AppendStatus atomically sets the status and appends a history entry.
func (r *IssueRepository) AppendStatus(ctx context.Context, id string, change domain.StatusChange, resolvedAt *time.Time) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	set := bson.M{
		"status":     string(change.Status),
		"updated_at": change.ChangedAt,
	}
	if resolvedAt != nil {
		set["resolved_at"] = *resolvedAt
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": newStatusChangeDoc(change)},
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc issueDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// List returns one page of issues matching f, newest first.
func (r *IssueRepository) List(ctx context.Context, f ports.IssueFilter) ([]*domain.Issue, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := listFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Page-1) * int64(f.Limit)).
		SetLimit(int64(f.Limit))
	issues, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *IssueRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Issue, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	var docs []issueDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	out := make([]*domain.Issue, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// listFilter translates an IssueFilter into a Mongo query. The search term is
// matched literally, case-insensitively, against title and description.
func listFilter(f ports.IssueFilter) bson.M {
	filter := scopeFilter(ports.IssueScope{ReportedBy: f.ReportedBy})
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

func scopeFilter(scope ports.IssueScope) bson.M {
	filter := bson.M{}
	if scope.ReportedBy != "" {
		filter["reported_by"] = toRef(scope.ReportedBy)
	}
	return filter
}
