package analysis

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
	feedbackCollection    = "conversation_feedback"
	meetingsCollection    = "meeting_analyses"
	suggestionsCollection = "meeting_response_suggestions"
)

// MongoFeedbackStore persists conversation feedback.
type MongoFeedbackStore struct {
	coll *mongo.Collection
}

func NewMongoFeedbackStore(db *mongo.Database) *MongoFeedbackStore {
	return &MongoFeedbackStore{coll: db.Collection(feedbackCollection)}
}

type feedbackDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             string             `bson:"user_id"`
	SessionID          string             `bson:"session_id"`
	LanguageCode       string             `bson:"language_code"`
	Transcript         string             `bson:"transcript"`
	Analysis           map[string]any     `bson:"analysis"`
	Strengths          []string           `bson:"strengths"`
	Suggestions        []string           `bson:"suggestions"`
	OverallScore       int                `bson:"overall_score"`
	FluencyScore       int                `bson:"fluency_score"`
	GrammarScore       int                `bson:"grammar_score"`
	VocabularyScore    int                `bson:"vocabulary_score"`
	PronunciationScore int                `bson:"pronunciation_score"`
	CreatedAt          time.Time          `bson:"created_at"`
}

func (d *feedbackDoc) toFeedback() *ConversationFeedback {
	return &ConversationFeedback{
		ID:                 d.ID.Hex(),
		UserID:             d.UserID,
		SessionID:          d.SessionID,
		LanguageCode:       d.LanguageCode,
		Transcript:         d.Transcript,
		Analysis:           d.Analysis,
		Strengths:          d.Strengths,
		Suggestions:        d.Suggestions,
		OverallScore:       d.OverallScore,
		FluencyScore:       d.FluencyScore,
		GrammarScore:       d.GrammarScore,
		VocabularyScore:    d.VocabularyScore,
		PronunciationScore: d.PronunciationScore,
		CreatedAt:          d.CreatedAt,
	}
}

func (s *MongoFeedbackStore) Create(ctx context.Context, f *ConversationFeedback) error {
	f.CreatedAt = time.Now().UTC()
	doc := feedbackDoc{
		ID:                 primitive.NewObjectID(),
		UserID:             f.UserID,
		SessionID:          f.SessionID,
		LanguageCode:       f.LanguageCode,
		Transcript:         f.Transcript,
		Analysis:           f.Analysis,
		Strengths:          f.Strengths,
		Suggestions:        f.Suggestions,
		OverallScore:       f.OverallScore,
		FluencyScore:       f.FluencyScore,
		GrammarScore:       f.GrammarScore,
		VocabularyScore:    f.VocabularyScore,
		PronunciationScore: f.PronunciationScore,
		CreatedAt:          f.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert feedback")
	}
	f.ID = doc.ID.Hex()
	return nil
}

func (s *MongoFeedbackStore) LatestBySession(ctx context.Context, userID, sessionID string) (*ConversationFeedback, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc feedbackDoc
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "session_id": sessionID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "analysis not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find feedback")
	}
	return doc.toFeedback(), nil
}

// MongoMeetingStore persists meeting analyses.
type MongoMeetingStore struct {
	coll *mongo.Collection
}

func NewMongoMeetingStore(db *mongo.Database) *MongoMeetingStore {
	return &MongoMeetingStore{coll: db.Collection(meetingsCollection)}
}

type meetingDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"user_id"`
	LanguageCode    string             `bson:"language_code"`
	MeetingName     string             `bson:"meeting_name"`
	Transcription   string             `bson:"transcription"`
	CustomContext   string             `bson:"custom_context,omitempty"`
	Analysis        map[string]any     `bson:"analysis"`
	OverallScore    int                `bson:"overall_score"`
	GrammarScore    int                `bson:"grammar_score"`
	FluencyScore    int                `bson:"fluency_score"`
	VocabularyScore int                `bson:"vocabulary_score"`
	AccuracyScore   int                `bson:"accuracy_score"`
	Feedback        []string           `bson:"feedback"`
	Suggestions     []string           `bson:"suggestions"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d *meetingDoc) toAnalysis() *MeetingAnalysis {
	return &MeetingAnalysis{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		LanguageCode:    d.LanguageCode,
		MeetingName:     d.MeetingName,
		Transcription:   d.Transcription,
		CustomContext:   d.CustomContext,
		Analysis:        d.Analysis,
		OverallScore:    d.OverallScore,
		GrammarScore:    d.GrammarScore,
		FluencyScore:    d.FluencyScore,
		VocabularyScore: d.VocabularyScore,
		AccuracyScore:   d.AccuracyScore,
		Feedback:        d.Feedback,
		Suggestions:     d.Suggestions,
		CreatedAt:       d.CreatedAt,
	}
}

func (s *MongoMeetingStore) Create(ctx context.Context, a *MeetingAnalysis) error {
	a.CreatedAt = time.Now().UTC()
	doc := meetingDoc{
		ID:              primitive.NewObjectID(),
		UserID:          a.UserID,
		LanguageCode:    a.LanguageCode,
		MeetingName:     a.MeetingName,
		Transcription:   a.Transcription,
		CustomContext:   a.CustomContext,
		Analysis:        a.Analysis,
		OverallScore:    a.OverallScore,
		GrammarScore:    a.GrammarScore,
		FluencyScore:    a.FluencyScore,
		VocabularyScore: a.VocabularyScore,
		AccuracyScore:   a.AccuracyScore,
		Feedback:        a.Feedback,
		Suggestions:     a.Suggestions,
		CreatedAt:       a.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert meeting analysis")
	}
	a.ID = doc.ID.Hex()
	return nil
}

func (s *MongoMeetingStore) Get(ctx context.Context, id, userID string) (*MeetingAnalysis, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "meeting analysis not found")
	}
	var doc meetingDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "meeting analysis not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find meeting analysis")
	}
	return doc.toAnalysis(), nil
}

func (s *MongoMeetingStore) ListByUser(ctx context.Context, userID string, limit int) ([]*MeetingAnalysis, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list meeting analyses")
	}
	var docs []meetingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode meeting analyses")
	}
	out := make([]*MeetingAnalysis, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toAnalysis())
	}
	return out, nil
}

func (s *MongoMeetingStore) Delete(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "meeting analysis not found")
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete meeting analysis")
	}
	if res.DeletedCount == 0 {
		return dErrors.New(dErrors.CodeNotFound, "meeting analysis not found")
	}
	return nil
}

// MongoSuggestionStore persists response suggestions.
type MongoSuggestionStore struct {
	coll *mongo.Collection
}

func NewMongoSuggestionStore(db *mongo.Database) *MongoSuggestionStore {
	return &MongoSuggestionStore{coll: db.Collection(suggestionsCollection)}
}

type suggestionDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             string             `bson:"user_id"`
	AnalysisID         string             `bson:"analysis_id"`
	LanguageCode       string             `bson:"language_code"`
	OriginalResponses  []map[string]any   `bson:"original_responses"`
	SuggestedResponses []map[string]any   `bson:"suggested_responses"`
	CreatedAt          time.Time          `bson:"created_at"`
}

func (d *suggestionDoc) toSuggestion() *ResponseSuggestion {
	return &ResponseSuggestion{
		ID:                 d.ID.Hex(),
		UserID:             d.UserID,
		AnalysisID:         d.AnalysisID,
		LanguageCode:       d.LanguageCode,
		OriginalResponses:  d.OriginalResponses,
		SuggestedResponses: d.SuggestedResponses,
		CreatedAt:          d.CreatedAt,
	}
}

func (s *MongoSuggestionStore) Create(ctx context.Context, sg *ResponseSuggestion) error {
	sg.CreatedAt = time.Now().UTC()
	doc := suggestionDoc{
		ID:                 primitive.NewObjectID(),
		UserID:             sg.UserID,
		AnalysisID:         sg.AnalysisID,
		LanguageCode:       sg.LanguageCode,
		OriginalResponses:  sg.OriginalResponses,
		SuggestedResponses: sg.SuggestedResponses,
		CreatedAt:          sg.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert response suggestions")
	}
	sg.ID = doc.ID.Hex()
	return nil
}

func (s *MongoSuggestionStore) LatestByAnalysis(ctx context.Context, analysisID string) (*ResponseSuggestion, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc suggestionDoc
	err := s.coll.FindOne(ctx, bson.M{"analysis_id": analysisID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, dErrors.New(dErrors.CodeNotFound, "response suggestions not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find response suggestions")
	}
	return doc.toSuggestion(), nil
}
