// Package mongo wraps the MongoDB driver with connection lifecycle and
// index bootstrap for the application's collections.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingua/internal/platform/config"
)

// Client wraps a connected driver client and the application database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the application database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Health checks the connection.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on. Creation is
// idempotent so it runs at every startup.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"languages": {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		"chat_sessions": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
		"chat_messages": {
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		"token_usage": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		"lessons": {
			{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "is_public", Value: 1}}},
			{Keys: bson.D{{Key: "language_code", Value: 1}, {Key: "is_public", Value: 1}}},
		},
		"quizzes": {
			{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "is_public", Value: 1}}},
			{Keys: bson.D{{Key: "language_code", Value: 1}, {Key: "is_public", Value: 1}}},
		},
		"user_progress": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "lesson_id", Value: 1}}},
		},
		"conversation_feedback": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"meeting_analyses": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"meeting_response_suggestions": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "analysis_id", Value: 1}}},
		},
		"user_activity_logs": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		"user_streaks": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		"practice_scenarios": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range specs {
		if _, err := c.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}
	return nil
}
