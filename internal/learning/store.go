package learning

import (
	"context"
	"time"
)

// LessonFilter narrows lesson listings. CreatedBy scopes the "mine only"
// view; Visible scopes to public-or-owned when set.
type LessonFilter struct {
	LanguageCode string
	Level        string
	CreatedBy    string
	VisibleTo    string
}

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	LanguageCode string
	Level        string
	LessonID     string
	CreatedBy    string
	VisibleTo    string
}

// ActivityFilter bounds activity queries to a time range.
type ActivityFilter struct {
	Since time.Time
}

// LanguageStore persists configured languages.
type LanguageStore interface {
	Create(ctx context.Context, language *Language) error
	GetByID(ctx context.Context, id string) (*Language, error)
	GetByCode(ctx context.Context, code string) (*Language, error)
	List(ctx context.Context) ([]*Language, error)
	Update(ctx context.Context, language *Language) error
	Delete(ctx context.Context, id string) error
}

// LessonStore persists lesson content.
type LessonStore interface {
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id string) (*Lesson, error)
	List(ctx context.Context, filter LessonFilter, skip, limit int) ([]*Lesson, error)
	// ListPublic returns public lessons for a language sorted by order.
	ListPublic(ctx context.Context, languageCode string) ([]*Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	Delete(ctx context.Context, id string) error
}

// QuizStore persists quizzes.
type QuizStore interface {
	Create(ctx context.Context, quiz *Quiz) error
	GetByID(ctx context.Context, id string) (*Quiz, error)
	GetByLessonID(ctx context.Context, lessonID string) (*Quiz, error)
	List(ctx context.Context, filter QuizFilter, skip, limit int) ([]*Quiz, error)
	Update(ctx context.Context, quiz *Quiz) error
	Delete(ctx context.Context, id string) error
	DeleteByLessonID(ctx context.Context, lessonID string) error
}

// ProgressStore persists per-user lesson progress.
type ProgressStore interface {
	Upsert(ctx context.Context, progress *Progress) error
	Get(ctx context.Context, userID, lessonID string) (*Progress, error)
	ListByUser(ctx context.Context, userID string, lessonIDs []string) ([]*Progress, error)
	DeleteByLessonID(ctx context.Context, lessonID string) error
}

// ActivityStore persists activity logs and streaks.
type ActivityStore interface {
	LogActivity(ctx context.Context, entry *ActivityEntry) error
	ListActivities(ctx context.Context, userID string, filter ActivityFilter) ([]*ActivityEntry, error)
	GetStreak(ctx context.Context, userID string) (*Streak, error)
	UpsertStreak(ctx context.Context, streak *Streak) error
}

// ScenarioStore persists generated practice scenarios.
type ScenarioStore interface {
	Create(ctx context.Context, scenario *Scenario) error
	GetByID(ctx context.Context, id string) (*Scenario, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Scenario, error)
}
