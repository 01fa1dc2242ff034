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
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// groupFields maps the groupable attributes onto document paths.
var groupFields = map[ports.GroupField]string{
	ports.GroupByStatus:   "$status",
	ports.GroupByCategory: "$category",
	ports.GroupByPriority: "$priority",
	ports.GroupByBuilding: "$location.building",
}

func (r *IssueRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// CountBy groups issues in scope by field, largest bucket first.
func (r *IssueRepository) CountBy(ctx context.Context, scope ports.IssueScope, field ports.GroupField) ([]ports.GroupCount, error) {
	path, ok := groupFields[field]
	if !ok {
		return nil, fmt.Errorf("unknown group field %q", field)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scopeFilter(scope)}},
		{{Key: "$group", Value: bson.M{"_id": path, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("count by %s: %w", field, err)
	}

	out := make([]ports.GroupCount, len(rows))
	for i, row := range rows {
		out[i] = ports.GroupCount{Key: row.Key, Count: row.Count}
	}
	return out, nil
}

func (r *IssueRepository) Recent(ctx context.Context, scope ports.IssueScope, limit int) ([]*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, scopeFilter(scope), opts)
}

func (r *IssueRepository) ResolutionSpans(ctx context.Context, scope ports.IssueScope) ([]ports.ResolutionSpan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := scopeFilter(scope)
	filter["resolved_at"] = bson.M{"$ne": nil}
	opts := options.Find().SetProjection(bson.M{"created_at": 1, "resolved_at": 1})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("resolution spans: %w", err)
	}
	var rows []struct {
		CreatedAt  time.Time `bson:"created_at"`
		ResolvedAt time.Time `bson:"resolved_at"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode resolution spans: %w", err)
	}

	out := make([]ports.ResolutionSpan, len(rows))
	for i, row := range rows {
		out[i] = ports.ResolutionSpan{CreatedAt: row.CreatedAt, ResolvedAt: row.ResolvedAt}
	}
	return out, nil
}

// MonthlyCounts buckets issues created since the given time by calendar month (UTC).
func (r *IssueRepository) MonthlyCounts(ctx context.Context, scope ports.IssueScope, since time.Time) ([]ports.MonthCount, error) {
	match := scopeFilter(scope)
	match["created_at"] = bson.M{"$gte": since}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$created_at"},
				"month": bson.M{"$month": "$created_at"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}

	out := make([]ports.MonthCount, len(rows))
	for i, row := range rows {
		out[i] = ports.MonthCount{Year: row.ID.Year, Month: row.ID.Month, Count: row.Count}
	}
	return out, nil
}

func (r *IssueRepository) CountUrgentPending(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"status":   string(domain.StatusPending),
		"priority": bson.M{"$in": bson.A{string(domain.PriorityHigh), string(domain.PriorityUrgent)}},
	})
	if err != nil {
		return 0, fmt.Errorf("count urgent issues: %w", err)
	}
	return n, nil
}

// TopReporters ranks users by number of issues reported, joining their name
// and email from the users collection. Reporters whose account no longer
// exists are dropped.
func (r *IssueRepository) TopReporters(ctx context.Context, limit int) ([]ports.ReporterCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$reported_by", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"count": 1,
			"name":  "$user.name",
			"email": "$user.email",
		}}},
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Name  string             `bson:"name"`
		Email string             `bson:"email"`
		Count int64              `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("top reporters: %w", err)
	}

	out := make([]ports.ReporterCount, len(rows))
	for i, row := range rows {
		out[i] = ports.ReporterCount{UserID: row.ID.Hex(), Name: row.Name, Email: row.Email, Count: row.Count}
	}
	return out, nil
}
