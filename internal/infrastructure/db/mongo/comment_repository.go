package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
)

const commentsCollection = "comments"

// CommentRepository implements ports.CommentRepository using MongoDB.
type CommentRepository struct {
	col    *mongo.Collection
	issues *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		col:    db.Collection(commentsCollection),
		issues: db.Collection(issuesCollection),
	}
}

type commentDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Text           string             `bson:"text"`
	IssueID        primitive.ObjectID `bson:"issue_id"`
	AuthorID       primitive.ObjectID `bson:"author_id"`
	IsStatusUpdate bool               `bson:"is_status_update"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func commentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "issue_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
}

// Create inserts a comment and sets its ID.
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, commentDoc{
		Text:           c.Text,
		IssueID:        toRef(c.IssueID),
		AuthorID:       toRef(c.AuthorID),
		IsStatusUpdate: c.IsStatusUpdate,
		CreatedAt:      c.CreatedAt,
	})
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *CommentRepository) ListByIssue(ctx context.Context, issueID string) ([]*domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return []*domain.Comment{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"issue_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	out := make([]*domain.Comment, len(docs))
	for i, d := range docs {
		out[i] = &domain.Comment{
			ID:             d.ID.Hex(),
			Text:           d.Text,
			IssueID:        refID(d.IssueID),
			AuthorID:       refID(d.AuthorID),
			IsStatusUpdate: d.IsStatusUpdate,
			CreatedAt:      d.CreatedAt.UTC(),
		}
	}
	return out, nil
}

func (r *CommentRepository) DeleteByIssue(ctx context.Context, issueID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"issue_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOrphans removes comments left behind by an issue delete that did not
// run inside a transaction.
func (r *CommentRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	referenced, err := r.col.Distinct(ctx, "issue_id", bson.M{})
	if err != nil {
		return 0, fmt.Errorf("distinct comment issues: %w", err)
	}
	if len(referenced) == 0 {
		return 0, nil
	}
	existing, err := r.issues.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": referenced}})
	if err != nil {
		return 0, fmt.Errorf("distinct issues: %w", err)
	}

	live := make(map[primitive.ObjectID]struct{}, len(existing))
	for _, v := range existing {
		if oid, ok := v.(primitive.ObjectID); ok {
			live[oid] = struct{}{}
		}
	}
	var orphaned bson.A
	for _, v := range referenced {
		oid, ok := v.(primitive.ObjectID)
		if !ok {
			continue
		}
		if _, ok := live[oid]; !ok {
			orphaned = append(orphaned, oid)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	res, err := r.col.DeleteMany(ctx, bson.M{"issue_id": bson.M{"$in": orphaned}})
	if err != nil {
		return 0, fmt.Errorf("delete orphaned comments: %w", err)
	}
	return res.DeletedCount, nil
}
