package tokenusage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dErrors "lingua/pkg/domain-errors"
)

const usageCollection = "token_usage"

// MongoStore persists usage in the token_usage collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(usageCollection)}
}

type usageDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	SessionID        string             `bson:"session_id,omitempty"`
	Model            string             `bson:"model"`
	PromptTokens     int                `bson:"prompt_tokens"`
	CompletionTokens int                `bson:"completion_tokens"`
	TotalTokens      int                `bson:"total_tokens"`
	Cost             float64            `bson:"cost"`
	Context          string             `bson:"context,omitempty"`
	Timestamp        time.Time          `bson:"timestamp"`
}

func (d *usageDoc) toUsage() *Usage {
	return &Usage{
		ID:               d.ID.Hex(),
		UserID:           d.UserID,
		SessionID:        d.SessionID,
		Model:            d.Model,
		PromptTokens:     d.PromptTokens,
		CompletionTokens: d.CompletionTokens,
		TotalTokens:      d.TotalTokens,
		Cost:             d.Cost,
		Context:          d.Context,
		Timestamp:        d.Timestamp,
	}
}

func (s *MongoStore) Record(ctx context.Context, u *Usage) error {
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}
	doc := usageDoc{
		ID:               primitive.NewObjectID(),
		UserID:           u.UserID,
		SessionID:        u.SessionID,
		Model:            u.Model,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
		Cost:             u.Cost,
		Context:          u.Context,
		Timestamp:        u.Timestamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert token usage")
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string, filter Filter) ([]*Usage, error) {
	query := bson.M{"user_id": userID}
	ts := bson.M{}
	if !filter.Start.IsZero() {
		ts["$gte"] = filter.Start
	}
	if !filter.End.IsZero() {
		ts["$lte"] = filter.End
	}
	if len(ts) > 0 {
		query["timestamp"] = ts
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list token usage")
	}
	var docs []usageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode token usage")
	}
	out := make([]*Usage, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toUsage())
	}
	return out, nil
}

func (s *MongoStore) TotalsSince(ctx context.Context, since time.Time) (int64, int64, error) {
	return s.totals(ctx, bson.M{"timestamp": bson.M{"$gte": since}})
}

func (s *MongoStore) TotalsForUserSince(ctx context.Context, userID string, since time.Time) (int64, int64, error) {
	return s.totals(ctx, bson.M{"user_id": userID, "timestamp": bson.M{"$gte": since}})
}

func (s *MongoStore) totals(ctx context.Context, match bson.M) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"tokens": bson.M{"$sum": "$total_tokens"},
			"count":  bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "aggregate token usage")
	}
	var rows []struct {
		Tokens int64 `bson:"tokens"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "decode token totals")
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Tokens, rows[0].Count, nil
}
