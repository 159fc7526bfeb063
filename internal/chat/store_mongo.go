package chat

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dErrors "lingua/pkg/domain-errors"
)

const (
	sessionsCollection = "chat_sessions"
	messagesCollection = "chat_messages"
)

// MongoSessionStore persists sessions in the chat_sessions collection.
type MongoSessionStore struct {
	coll *mongo.Collection
}

func NewMongoSessionStore(db *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{coll: db.Collection(sessionsCollection)}
}

type sessionDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Title     string             `bson:"title,omitempty"`
	Active    bool               `bson:"is_active"`
	Metadata  SessionMetadata    `bson:"metadata"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *sessionDoc) toSession() *Session {
	return &Session{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		Active:    d.Active,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *MongoSessionStore) Create(ctx context.Context, sess *Session) error {
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	doc := sessionDoc{
		ID:        primitive.NewObjectID(),
		UserID:    sess.UserID,
		Title:     sess.Title,
		Active:    sess.Active,
		Metadata:  sess.Metadata,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert session")
	}
	sess.ID = doc.ID.Hex()
	return nil
}

func (s *MongoSessionStore) Get(ctx context.Context, id, userID string) (*Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	var doc sessionDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find session")
	}
	return doc.toSession(), nil
}

func (s *MongoSessionStore) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID, "is_active": true}, opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list sessions")
	}
	var docs []sessionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode sessions")
	}
	out := make([]*Session, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toSession())
	}
	return out, nil
}

func (s *MongoSessionStore) Update(ctx context.Context, sess *Session) error {
	oid, err := primitive.ObjectIDFromHex(sess.ID)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	sess.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":      sess.Title,
		"is_active":  sess.Active,
		"metadata":   sess.Metadata,
		"updated_at": sess.UpdatedAt,
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update session")
	}
	if res.MatchedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return nil
}

func (s *MongoSessionStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete session")
	}
	if res.DeletedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return nil
}

func (s *MongoSessionStore) Touch(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "touch session")
	}
	return nil
}

func (s *MongoSessionStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count sessions")
	}
	return n, nil
}

func (s *MongoSessionStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count user sessions")
	}
	return n, nil
}

// MongoMessageStore persists messages in the chat_messages collection.
type MongoMessageStore struct {
	coll *mongo.Collection
}

func NewMongoMessageStore(db *mongo.Database) *MongoMessageStore {
	return &MongoMessageStore{coll: db.Collection(messagesCollection)}
}

type messageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SessionID  string             `bson:"session_id"`
	Role       string             `bson:"role"`
	Content    string             `bson:"content"`
	TokenCount int                `bson:"token_count,omitempty"`
	Metadata   map[string]string  `bson:"metadata,omitempty"`
	Timestamp  time.Time          `bson:"timestamp"`
}

func (s *MongoMessageStore) Append(ctx context.Context, m *Message) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	doc := messageDoc{
		ID:         primitive.NewObjectID(),
		SessionID:  m.SessionID,
		Role:       m.Role,
		Content:    m.Content,
		TokenCount: m.TokenCount,
		Metadata:   m.Metadata,
		Timestamp:  m.Timestamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert message")
	}
	m.ID = doc.ID.Hex()
	return nil
}

func (s *MongoMessageStore) ListBySession(ctx context.Context, sessionID string, skip, limit int) ([]*Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list messages")
	}
	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode messages")
	}
	out := make([]*Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, &Message{
			ID:         d.ID.Hex(),
			SessionID:  d.SessionID,
			Role:       d.Role,
			Content:    d.Content,
			TokenCount: d.TokenCount,
			Metadata:   d.Metadata,
			Timestamp:  d.Timestamp,
		})
	}
	return out, nil
}

func (s *MongoMessageStore) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete session messages")
	}
	return nil
}
