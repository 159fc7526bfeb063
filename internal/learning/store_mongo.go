package learning

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
	languagesCollection  = "languages"
	lessonsCollection    = "lessons"
	quizzesCollection    = "quizzes"
	progressCollection   = "user_progress"
	activitiesCollection = "user_activity_logs"
	streaksCollection    = "user_streaks"
	scenariosCollection  = "practice_scenarios"
)

// MongoLanguageStore persists languages in the languages collection.
type MongoLanguageStore struct {
	coll *mongo.Collection
}

func NewMongoLanguageStore(db *mongo.Database) *MongoLanguageStore {
	return &MongoLanguageStore{coll: db.Collection(languagesCollection)}
}

type languageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Code       string             `bson:"code"`
	Name       string             `bson:"name"`
	NativeName string             `bson:"native_name"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *languageDoc) toLanguage() *Language {
	return &Language{
		ID:         d.ID.Hex(),
		Code:       d.Code,
		Name:       d.Name,
		NativeName: d.NativeName,
		CreatedAt:  d.CreatedAt,
	}
}

func (s *MongoLanguageStore) Create(ctx context.Context, l *Language) error {
	l.CreatedAt = time.Now().UTC()
	doc := languageDoc{
		ID:         primitive.NewObjectID(),
		Code:       l.Code,
		Name:       l.Name,
		NativeName: l.NativeName,
		CreatedAt:  l.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dErrors.New(dErrors.CodeConflict, "language code already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert language")
	}
	l.ID = doc.ID.Hex()
	return nil
}

func (s *MongoLanguageStore) GetByID(ctx context.Context, id string) (*Language, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	var doc languageDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find language")
	}
	return doc.toLanguage(), nil
}

func (s *MongoLanguageStore) GetByCode(ctx context.Context, code string) (*Language, error) {
	var doc languageDoc
	err := s.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find language")
	}
	return doc.toLanguage(), nil
}

func (s *MongoLanguageStore) List(ctx context.Context) ([]*Language, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list languages")
	}
	var docs []languageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode languages")
	}
	out := make([]*Language, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toLanguage())
	}
	return out, nil
}

func (s *MongoLanguageStore) Update(ctx context.Context, l *Language) error {
	oid, err := primitive.ObjectIDFromHex(l.ID)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	update := bson.M{"$set": bson.M{
		"code":        l.Code,
		"name":        l.Name,
		"native_name": l.NativeName,
	}}
	res, err := s.coll.UpdateByID(ctx, oid, update)
	if mongo.IsDuplicateKeyError(err) {
		return dErrors.New(dErrors.CodeConflict, "language code already exists")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update language")
	}
	if res.MatchedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	return nil
}

func (s *MongoLanguageStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete language")
	}
	if res.DeletedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	return nil
}

// MongoLessonStore persists lessons in the lessons collection.
type MongoLessonStore struct {
	coll *mongo.Collection
}

func NewMongoLessonStore(db *mongo.Database) *MongoLessonStore {
	return &MongoLessonStore{coll: db.Collection(lessonsCollection)}
}

type lessonDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Description      string             `bson:"description"`
	LanguageCode     string             `bson:"language_code"`
	Level            string             `bson:"level"`
	Order            int                `bson:"order"`
	Content          map[string]any     `bson:"content"`
	Vocabulary       []VocabularyItem   `bson:"vocabulary"`
	GrammarPoints    []string           `bson:"grammar_points"`
	Exercises        []map[string]any   `bson:"exercises"`
	EstimatedMinutes int                `bson:"estimated_time_minutes"`
	CreatedBy        string             `bson:"created_by,omitempty"`
	Public           bool               `bson:"is_public"`
	Tags             []string           `bson:"tags"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (d *lessonDoc) toLesson() *Lesson {
	return &Lesson{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		Description:      d.Description,
		LanguageCode:     d.LanguageCode,
		Level:            d.Level,
		Order:            d.Order,
		Content:          d.Content,
		Vocabulary:       d.Vocabulary,
		GrammarPoints:    d.GrammarPoints,
		Exercises:        d.Exercises,
		EstimatedMinutes: d.EstimatedMinutes,
		CreatedBy:        d.CreatedBy,
		Public:           d.Public,
		Tags:             d.Tags,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func lessonToDoc(l *Lesson) (lessonDoc, error) {
	doc := lessonDoc{
		Title:            l.Title,
		Description:      l.Description,
		LanguageCode:     l.LanguageCode,
		Level:            l.Level,
		Order:            l.Order,
		Content:          l.Content,
		Vocabulary:       l.Vocabulary,
		GrammarPoints:    l.GrammarPoints,
		Exercises:        l.Exercises,
		EstimatedMinutes: l.EstimatedMinutes,
		CreatedBy:        l.CreatedBy,
		Public:           l.Public,
		Tags:             l.Tags,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if l.ID != "" {
		oid, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return doc, dErrors.New(dErrors.CodeNotFound, "lesson not found")
		}
		doc.ID = oid
	}
	return doc, nil
}

func (s *MongoLessonStore) Create(ctx context.Context, l *Lesson) error {
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	doc, err := lessonToDoc(l)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert lesson")
	}
	l.ID = doc.ID.Hex()
	return nil
}

func (s *MongoLessonStore) GetByID(ctx context.Context, id string) (*Lesson, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	var doc lessonDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find lesson")
	}
	return doc.toLesson(), nil
}

func lessonFilterQuery(filter LessonFilter) bson.M {
	query := bson.M{}
	if filter.LanguageCode != "" {
		query["language_code"] = filter.LanguageCode
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}
	if filter.CreatedBy != "" {
		query["created_by"] = filter.CreatedBy
	}
	if filter.VisibleTo != "" {
		query["$or"] = bson.A{
			bson.M{"is_public": true},
			bson.M{"created_by": filter.VisibleTo},
		}
	}
	return query
}

func (s *MongoLessonStore) List(ctx context.Context, filter LessonFilter, skip, limit int) ([]*Lesson, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, lessonFilterQuery(filter), opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list lessons")
	}
	var docs []lessonDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode lessons")
	}
	out := make([]*Lesson, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toLesson())
	}
	return out, nil
}

func (s *MongoLessonStore) ListPublic(ctx context.Context, languageCode string) ([]*Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"language_code": languageCode, "is_public": true}, opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list public lessons")
	}
	var docs []lessonDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode lessons")
	}
	out := make([]*Lesson, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toLesson())
	}
	return out, nil
}

func (s *MongoLessonStore) Update(ctx context.Context, l *Lesson) error {
	l.UpdatedAt = time.Now().UTC()
	doc, err := lessonToDoc(l)
	if err != nil {
		return err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update lesson")
	}
	if res.MatchedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	return nil
}

func (s *MongoLessonStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete lesson")
	}
	if res.DeletedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	return nil
}

// MongoQuizStore persists quizzes in the quizzes collection.
type MongoQuizStore struct {
	coll *mongo.Collection
}

func NewMongoQuizStore(db *mongo.Database) *MongoQuizStore {
	return &MongoQuizStore{coll: db.Collection(quizzesCollection)}
}

type quizDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	LessonID     string             `bson:"lesson_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description,omitempty"`
	LanguageCode string             `bson:"language_code"`
	Level        string             `bson:"level"`
	Questions    []QuizQuestion     `bson:"questions"`
	PassingScore int                `bson:"passing_score"`
	TimeLimit    int                `bson:"time_limit_minutes,omitempty"`
	CreatedBy    string             `bson:"created_by,omitempty"`
	Public       bool               `bson:"is_public"`
	Tags         []string           `bson:"tags"`
	Attempts     int                `bson:"attempts_count"`
	AverageScore float64            `bson:"average_score"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *quizDoc) toQuiz() *Quiz {
	return &Quiz{
		ID:           d.ID.Hex(),
		LessonID:     d.LessonID,
		Title:        d.Title,
		Description:  d.Description,
		LanguageCode: d.LanguageCode,
		Level:        d.Level,
		Questions:    d.Questions,
		PassingScore: d.PassingScore,
		TimeLimit:    d.TimeLimit,
		CreatedBy:    d.CreatedBy,
		Public:       d.Public,
		Tags:         d.Tags,
		Attempts:     d.Attempts,
		AverageScore: d.AverageScore,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func quizToDoc(q *Quiz) (quizDoc, error) {
	doc := quizDoc{
		LessonID:     q.LessonID,
		Title:        q.Title,
		Description:  q.Description,
		LanguageCode: q.LanguageCode,
		Level:        q.Level,
		Questions:    q.Questions,
		PassingScore: q.PassingScore,
		TimeLimit:    q.TimeLimit,
		CreatedBy:    q.CreatedBy,
		Public:       q.Public,
		Tags:         q.Tags,
		Attempts:     q.Attempts,
		AverageScore: q.AverageScore,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
	if q.ID != "" {
		oid, err := primitive.ObjectIDFromHex(q.ID)
		if err != nil {
			return doc, dErrors.New(dErrors.CodeNotFound, "quiz not found")
		}
		doc.ID = oid
	}
	return doc, nil
}

func (s *MongoQuizStore) Create(ctx context.Context, q *Quiz) error {
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	doc, err := quizToDoc(q)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert quiz")
	}
	q.ID = doc.ID.Hex()
	return nil
}

func (s *MongoQuizStore) GetByID(ctx context.Context, id string) (*Quiz, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	var doc quizDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find quiz")
	}
	return doc.toQuiz(), nil
}

func (s *MongoQuizStore) GetByLessonID(ctx context.Context, lessonID string) (*Quiz, error) {
	var doc quizDoc
	err := s.coll.FindOne(ctx, bson.M{"lesson_id": lessonID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find quiz")
	}
	return doc.toQuiz(), nil
}

func quizFilterQuery(filter QuizFilter) bson.M {
	query := bson.M{}
	if filter.LanguageCode != "" {
		query["language_code"] = filter.LanguageCode
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}
	if filter.LessonID != "" {
		query["lesson_id"] = filter.LessonID
	}
	if filter.CreatedBy != "" {
		query["created_by"] = filter.CreatedBy
	}
	if filter.VisibleTo != "" {
		query["$or"] = bson.A{
			bson.M{"is_public": true},
			bson.M{"created_by": filter.VisibleTo},
		}
	}
	return query
}

func (s *MongoQuizStore) List(ctx context.Context, filter QuizFilter, skip, limit int) ([]*Quiz, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, quizFilterQuery(filter), opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list quizzes")
	}
	var docs []quizDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode quizzes")
	}
	out := make([]*Quiz, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toQuiz())
	}
	return out, nil
}

func (s *MongoQuizStore) Update(ctx context.Context, q *Quiz) error {
	q.UpdatedAt = time.Now().UTC()
	doc, err := quizToDoc(q)
	if err != nil {
		return err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update quiz")
	}
	if res.MatchedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	return nil
}

func (s *MongoQuizStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete quiz")
	}
	if res.DeletedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	return nil
}

func (s *MongoQuizStore) DeleteByLessonID(ctx context.Context, lessonID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"lesson_id": lessonID}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete lesson quizzes")
	}
	return nil
}

// MongoProgressStore persists lesson progress in the user_progress
// collection.
type MongoProgressStore struct {
	coll *mongo.Collection
}

func NewMongoProgressStore(db *mongo.Database) *MongoProgressStore {
	return &MongoProgressStore{coll: db.Collection(progressCollection)}
}

type progressDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	LessonID       string             `bson:"lesson_id"`
	Completed      bool               `bson:"completed"`
	CompletionDate *time.Time         `bson:"completion_date,omitempty"`
	QuizScores     []QuizScore        `bson:"quiz_scores"`
	TimeSpent      int                `bson:"time_spent_minutes"`
	LastAccessed   time.Time          `bson:"last_accessed"`
}

func (d *progressDoc) toProgress() *Progress {
	return &Progress{
		ID:             d.ID.Hex(),
		UserID:         d.UserID,
		LessonID:       d.LessonID,
		Completed:      d.Completed,
		CompletionDate: d.CompletionDate,
		QuizScores:     d.QuizScores,
		TimeSpent:      d.TimeSpent,
		LastAccessed:   d.LastAccessed,
	}
}

func (s *MongoProgressStore) Upsert(ctx context.Context, p *Progress) error {
	p.LastAccessed = time.Now().UTC()
	filter := bson.M{"user_id": p.UserID, "lesson_id": p.LessonID}
	update := bson.M{"$set": bson.M{
		"completed":          p.Completed,
		"completion_date":    p.CompletionDate,
		"quiz_scores":        p.QuizScores,
		"time_spent_minutes": p.TimeSpent,
		"last_accessed":      p.LastAccessed,
	}}
	res, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "upsert progress")
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (s *MongoProgressStore) Get(ctx context.Context, userID, lessonID string) (*Progress, error) {
	var doc progressDoc
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "lesson_id": lessonID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "progress not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find progress")
	}
	return doc.toProgress(), nil
}

func (s *MongoProgressStore) ListByUser(ctx context.Context, userID string, lessonIDs []string) ([]*Progress, error) {
	filter := bson.M{"user_id": userID}
	if len(lessonIDs) > 0 {
		filter["lesson_id"] = bson.M{"$in": lessonIDs}
	}
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list progress")
	}
	var docs []progressDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode progress")
	}
	out := make([]*Progress, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toProgress())
	}
	return out, nil
}

func (s *MongoProgressStore) DeleteByLessonID(ctx context.Context, lessonID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"lesson_id": lessonID}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete lesson progress")
	}
	return nil
}

// MongoActivityStore persists activity logs and streaks.
type MongoActivityStore struct {
	activities *mongo.Collection
	streaks    *mongo.Collection
}

func NewMongoActivityStore(db *mongo.Database) *MongoActivityStore {
	return &MongoActivityStore{
		activities: db.Collection(activitiesCollection),
		streaks:    db.Collection(streaksCollection),
	}
}

type activityDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Type         string             `bson:"activity_type"`
	ActivityID   string             `bson:"activity_id,omitempty"`
	Duration     int                `bson:"duration_minutes"`
	LanguageCode string             `bson:"language_code,omitempty"`
	Completed    bool               `bson:"completed"`
	Score        *int               `bson:"score,omitempty"`
	Date         string             `bson:"date"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *activityDoc) toEntry() *ActivityEntry {
	return &ActivityEntry{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Type:         d.Type,
		ActivityID:   d.ActivityID,
		Duration:     d.Duration,
		LanguageCode: d.LanguageCode,
		Completed:    d.Completed,
		Score:        d.Score,
		Date:         d.Date,
		CreatedAt:    d.CreatedAt,
	}
}

func (s *MongoActivityStore) LogActivity(ctx context.Context, e *ActivityEntry) error {
	e.CreatedAt = time.Now().UTC()
	doc := activityDoc{
		ID:           primitive.NewObjectID(),
		UserID:       e.UserID,
		Type:         e.Type,
		ActivityID:   e.ActivityID,
		Duration:     e.Duration,
		LanguageCode: e.LanguageCode,
		Completed:    e.Completed,
		Score:        e.Score,
		Date:         e.Date,
		CreatedAt:    e.CreatedAt,
	}
	if _, err := s.activities.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert activity")
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (s *MongoActivityStore) ListActivities(ctx context.Context, userID string, filter ActivityFilter) ([]*ActivityEntry, error) {
	query := bson.M{"user_id": userID}
	if !filter.Since.IsZero() {
		query["created_at"] = bson.M{"$gte": filter.Since}
	}
	cursor, err := s.activities.Find(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list activities")
	}
	var docs []activityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode activities")
	}
	out := make([]*ActivityEntry, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntry())
	}
	return out, nil
}

type streakDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	CurrentStreak    int                `bson:"current_streak"`
	LongestStreak    int                `bson:"longest_streak"`
	LastActivityDate string             `bson:"last_activity_date"`
	StreakDates      []string           `bson:"streak_dates"`
	TotalDaysActive  int                `bson:"total_days_active"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (d *streakDoc) toStreak() *Streak {
	return &Streak{
		ID:               d.ID.Hex(),
		UserID:           d.UserID,
		CurrentStreak:    d.CurrentStreak,
		LongestStreak:    d.LongestStreak,
		LastActivityDate: d.LastActivityDate,
		StreakDates:      d.StreakDates,
		TotalDaysActive:  d.TotalDaysActive,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (s *MongoActivityStore) GetStreak(ctx context.Context, userID string) (*Streak, error) {
	var doc streakDoc
	err := s.streaks.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "streak not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find streak")
	}
	return doc.toStreak(), nil
}

func (s *MongoActivityStore) UpsertStreak(ctx context.Context, st *Streak) error {
	st.UpdatedAt = time.Now().UTC()
	filter := bson.M{"user_id": st.UserID}
	update := bson.M{"$set": bson.M{
		"current_streak":     st.CurrentStreak,
		"longest_streak":     st.LongestStreak,
		"last_activity_date": st.LastActivityDate,
		"streak_dates":       st.StreakDates,
		"total_days_active":  st.TotalDaysActive,
		"updated_at":         st.UpdatedAt,
	}}
	res, err := s.streaks.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "upsert streak")
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		st.ID = oid.Hex()
	}
	return nil
}

// MongoScenarioStore persists practice scenarios.
type MongoScenarioStore struct {
	coll *mongo.Collection
}

func NewMongoScenarioStore(db *mongo.Database) *MongoScenarioStore {
	return &MongoScenarioStore{coll: db.Collection(scenariosCollection)}
}

type scenarioDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Role         string             `bson:"role"`
	LanguageCode string             `bson:"language_code"`
	Type         string             `bson:"scenario_type"`
	SourceID     string             `bson:"source_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *scenarioDoc) toScenario() *Scenario {
	return &Scenario{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Title:        d.Title,
		Description:  d.Description,
		Role:         d.Role,
		LanguageCode: d.LanguageCode,
		Type:         d.Type,
		SourceID:     d.SourceID,
		CreatedAt:    d.CreatedAt,
	}
}

func (s *MongoScenarioStore) Create(ctx context.Context, sc *Scenario) error {
	sc.CreatedAt = time.Now().UTC()
	doc := scenarioDoc{
		ID:           primitive.NewObjectID(),
		UserID:       sc.UserID,
		Title:        sc.Title,
		Description:  sc.Description,
		Role:         sc.Role,
		LanguageCode: sc.LanguageCode,
		Type:         sc.Type,
		SourceID:     sc.SourceID,
		CreatedAt:    sc.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert scenario")
	}
	sc.ID = doc.ID.Hex()
	return nil
}

func (s *MongoScenarioStore) GetByID(ctx context.Context, id string) (*Scenario, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "scenario not found")
	}
	var doc scenarioDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "scenario not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find scenario")
	}
	return doc.toScenario(), nil
}

func (s *MongoScenarioStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Scenario, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list scenarios")
	}
	var docs []scenarioDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode scenarios")
	}
	out := make([]*Scenario, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toScenario())
	}
	return out, nil
}
