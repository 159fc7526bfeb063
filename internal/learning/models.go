// Package learning covers lesson and quiz content, progress tracking,
// activity streaks and practice scenario generation.
package learning

import "time"

// Lesson levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Activity types recorded in the activity log.
const (
	ActivityLesson          = "lesson"
	ActivityQuiz            = "quiz"
	ActivityConversation    = "conversation"
	ActivityMeetingAnalysis = "meeting_analysis"
)

// Language is a configured target language. Lessons and quizzes reference it
// by code.
type Language struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	NativeName string    `json:"native_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// VocabularyItem is one entry of a lesson's vocabulary list.
type VocabularyItem struct {
	Word          string `json:"word" bson:"word"`
	Translation   string `json:"translation" bson:"translation"`
	Pronunciation string `json:"pronunciation,omitempty" bson:"pronunciation,omitempty"`
}

// Lesson is a unit of study content. Private lessons are visible to their
// creator only.
type Lesson struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	LanguageCode     string           `json:"language_code"`
	Level            string           `json:"level"`
	Order            int              `json:"order"`
	Content          map[string]any   `json:"content"`
	Vocabulary       []VocabularyItem `json:"vocabulary"`
	GrammarPoints    []string         `json:"grammar_points"`
	Exercises        []map[string]any `json:"exercises"`
	EstimatedMinutes int              `json:"estimated_time_minutes"`
	CreatedBy        string           `json:"created_by,omitempty"`
	Public           bool             `json:"is_public"`
	Tags             []string         `json:"tags"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// QuizQuestion is one question with its accepted answer.
type QuizQuestion struct {
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer string   `json:"correct_answer" bson:"correct_answer"`
	Type          string   `json:"type,omitempty" bson:"type,omitempty"`
}

// Quiz is a gradeable question set, optionally linked to a lesson.
type Quiz struct {
	ID           string         `json:"id"`
	LessonID     string         `json:"lesson_id,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	LanguageCode string         `json:"language_code"`
	Level        string         `json:"level"`
	Questions    []QuizQuestion `json:"questions"`
	PassingScore int            `json:"passing_score"`
	TimeLimit    int            `json:"time_limit_minutes,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty"`
	Public       bool           `json:"is_public"`
	Tags         []string       `json:"tags"`
	Attempts     int            `json:"attempts_count"`
	AverageScore float64        `json:"average_score"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// QuizScore is one graded attempt recorded in progress.
type QuizScore struct {
	QuizID string    `json:"quiz_id" bson:"quiz_id"`
	Score  int       `json:"score" bson:"score"`
	Date   time.Time `json:"date" bson:"date"`
}

// Progress tracks one user's standing on one lesson.
type Progress struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	LessonID       string      `json:"lesson_id"`
	Completed      bool        `json:"completed"`
	CompletionDate *time.Time  `json:"completion_date,omitempty"`
	QuizScores     []QuizScore `json:"quiz_scores"`
	TimeSpent      int         `json:"time_spent_minutes"`
	LastAccessed   time.Time   `json:"last_accessed"`
}

// ActivityEntry is one logged practice activity. Date is the yyyy-mm-dd day
// bucket used by streaks and stats.
type ActivityEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"activity_type"`
	ActivityID   string    `json:"activity_id,omitempty"`
	Duration     int       `json:"duration_minutes"`
	LanguageCode string    `json:"language_code,omitempty"`
	Completed    bool      `json:"completed"`
	Score        *int      `json:"score,omitempty"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Streak is the consecutive-day record per user.
type Streak struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate string    `json:"last_activity_date"`
	StreakDates      []string  `json:"streak_dates"`
	TotalDaysActive  int       `json:"total_days_active"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Scenario is a stored practice scenario, usually AI-generated.
type Scenario struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Role         string    `json:"role"`
	LanguageCode string    `json:"language_code"`
	Type         string    `json:"scenario_type"`
	SourceID     string    `json:"source_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DashboardStats is the trailing-window activity rollup.
type DashboardStats struct {
	TotalPracticeTime int `json:"total_practice_time"`
	LessonsCompleted  int `json:"lessons_completed"`
	QuizzesCompleted  int `json:"quizzes_completed"`
	Conversations     int `json:"conversations"`
	MeetingsAnalyzed  int `json:"meetings_analyzed"`
	AverageScore      int `json:"average_score"`
	CurrentStreak     int `json:"current_streak"`
	LongestStreak     int `json:"longest_streak"`
	TotalDaysActive   int `json:"total_days_active"`
}

// LessonCreateRequest is the creation payload for lessons.
type LessonCreateRequest struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	LanguageCode     string           `json:"language_code"`
	Level            string           `json:"level"`
	Order            int              `json:"order"`
	Content          map[string]any   `json:"content"`
	Vocabulary       []VocabularyItem `json:"vocabulary"`
	GrammarPoints    []string         `json:"grammar_points"`
	Exercises        []map[string]any `json:"exercises"`
	EstimatedMinutes int              `json:"estimated_time_minutes"`
	Public           bool             `json:"is_public"`
	Tags             []string         `json:"tags"`
}

// LessonUpdateRequest carries optional lesson changes.
type LessonUpdateRequest struct {
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	Level            *string           `json:"level"`
	Order            *int              `json:"order"`
	Content          *map[string]any   `json:"content"`
	Vocabulary       *[]VocabularyItem `json:"vocabulary"`
	GrammarPoints    *[]string         `json:"grammar_points"`
	Exercises        *[]map[string]any `json:"exercises"`
	EstimatedMinutes *int              `json:"estimated_time_minutes"`
	Public           *bool             `json:"is_public"`
	Tags             *[]string         `json:"tags"`
}

// QuizCreateRequest is the creation payload for quizzes.
type QuizCreateRequest struct {
	LessonID     string         `json:"lesson_id,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	LanguageCode string         `json:"language_code"`
	Level        string         `json:"level"`
	Questions    []QuizQuestion `json:"questions"`
	PassingScore int            `json:"passing_score"`
	TimeLimit    int            `json:"time_limit_minutes"`
	Public       bool           `json:"is_public"`
	Tags         []string       `json:"tags"`
}

// QuizUpdateRequest carries optional quiz changes.
type QuizUpdateRequest struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Level        *string         `json:"level"`
	Questions    *[]QuizQuestion `json:"questions"`
	PassingScore *int            `json:"passing_score"`
	TimeLimit    *int            `json:"time_limit_minutes"`
	Public       *bool           `json:"is_public"`
	Tags         *[]string       `json:"tags"`
}

// QuizAnswer is one submitted answer, matched positionally to questions.
type QuizAnswer struct {
	Answer string `json:"answer"`
}

// QuizSubmission is the payload for grading.
type QuizSubmission struct {
	Answers   []QuizAnswer `json:"answers"`
	TimeSpent int          `json:"time_spent_minutes"`
}

// QuestionFeedback is the graded outcome for one question.
type QuestionFeedback struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"is_correct"`
}

// QuizResult is the grading response.
type QuizResult struct {
	QuizID         string             `json:"quiz_id"`
	Score          int                `json:"score"`
	Passed         bool               `json:"passed"`
	CorrectAnswers int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	Feedback       []QuestionFeedback `json:"feedback"`
}

// DailyLesson bundles the rotated lesson with its quiz and the caller's
// progress.
type DailyLesson struct {
	Lesson    *Lesson   `json:"lesson"`
	Quiz      *Quiz     `json:"quiz,omitempty"`
	Progress  *Progress `json:"user_progress,omitempty"`
	Completed bool      `json:"is_completed"`
}

// ScenarioGenerateRequest asks for an AI-generated practice scenario.
type ScenarioGenerateRequest struct {
	Description string `json:"description"`
	Language    string `json:"language"`
}

// GeneratedScenario is the scenario payload returned to the client.
type GeneratedScenario struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Role        string `json:"role"`
}
