package user

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

const usersCollection = "users"

// MongoStore persists users in the users collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Username          string             `bson:"username"`
	Email             string             `bson:"email"`
	FullName          string             `bson:"full_name,omitempty"`
	HashedPassword    string             `bson:"hashed_password"`
	Active            bool               `bson:"is_active"`
	Superuser         bool               `bson:"is_superuser"`
	PreferredLanguage string             `bson:"preferred_language,omitempty"`
	LearningLanguages []string           `bson:"learning_languages"`
	ProfilePicture    string             `bson:"profile_picture,omitempty"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func toUserDoc(u *User) (*userDoc, error) {
	doc := &userDoc{
		Username:          u.Username,
		Email:             u.Email,
		FullName:          u.FullName,
		HashedPassword:    u.HashedPassword,
		Active:            u.Active,
		Superuser:         u.Superuser,
		PreferredLanguage: u.PreferredLanguage,
		LearningLanguages: u.LearningLanguages,
		ProfilePicture:    u.ProfilePicture,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d *userDoc) toUser() *User {
	return &User{
		ID:                d.ID.Hex(),
		Username:          d.Username,
		Email:             d.Email,
		FullName:          d.FullName,
		HashedPassword:    d.HashedPassword,
		Active:            d.Active,
		Superuser:         d.Superuser,
		PreferredLanguage: d.PreferredLanguage,
		LearningLanguages: d.LearningLanguages,
		ProfilePicture:    d.ProfilePicture,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (s *MongoStore) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	doc, err := toUserDoc(u)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dErrors.New(dErrors.CodeConflict, "username or email already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert user")
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}
	return doc.toUser(), nil
}

func (s *MongoStore) Search(ctx context.Context, query string, skip, limit int) ([]*User, int64, error) {
	filter := bson.M{}
	if query != "" {
		pattern := primitive.Regex{Pattern: query, Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
			bson.M{"full_name": pattern},
		}}
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "count users")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list users")
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "decode users")
	}

	users := make([]*User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toUser())
	}
	return users, total, nil
}

func (s *MongoStore) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	doc, err := toUserDoc(u)
	if err != nil {
		return err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dErrors.New(dErrors.CodeConflict, "username or email already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "update user")
	}
	if res.MatchedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete user")
	}
	if res.DeletedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *MongoStore) Stats(ctx context.Context) (Stats, error) {
	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "count users")
	}
	active, err := s.coll.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "count active users")
	}
	admins, err := s.coll.CountDocuments(ctx, bson.M{"is_superuser": true})
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "count admins")
	}
	return Stats{Total: total, Active: active, Admins: admins, Inactive: total - active}, nil
}

func (s *MongoStore) LearningLanguageCounts(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$learning_languages"}},
		{{Key: "$group", Value: bson.M{"_id": "$learning_languages", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "aggregate learning languages")
	}
	var rows []struct {
		Code  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode language counts")
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Code] = row.Count
	}
	return counts, nil
}

func (s *MongoStore) CountUsingLanguage(ctx context.Context, code string) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"preferred_language": code},
		bson.M{"learning_languages": code},
	}}
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count language users")
	}
	return n, nil
}
