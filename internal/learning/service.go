package learning

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lingua/internal/audit"
	"lingua/internal/llm"
	"lingua/internal/platform/metrics"
	"lingua/internal/prompt"
	"lingua/internal/tokenusage"
	dErrors "lingua/pkg/domain-errors"
)

const (
	defaultPassingScore     = 70
	defaultStatsWindowDays  = 30
	scenarioTemperature     = 0.8
	scenarioHistoryLimit    = 20
	scenarioFallbackRole    = "conversation partner"
	scenarioFallbackTitle   = "Custom Practice Scenario"
	dayFormat               = "2006-01-02"
	scenarioDescriptionClip = 200
)

// Service implements the learning domain: content, grading, progress,
// streaks and scenario generation.
type Service struct {
	languages LanguageStore
	lessons   LessonStore
	quizzes   QuizStore
	progress  ProgressStore
	activity  ActivityStore
	scenarios ScenarioStore
	provider  llm.Provider
	usage     *tokenusage.Service
	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

type Stores struct {
	Languages LanguageStore
	Lessons   LessonStore
	Quizzes   QuizStore
	Progress  ProgressStore
	Activity  ActivityStore
	Scenarios ScenarioStore
}

func NewService(stores Stores, provider llm.Provider, usage *tokenusage.Service, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		languages: stores.Languages,
		lessons:   stores.Lessons,
		quizzes:   stores.Quizzes,
		progress:  stores.Progress,
		activity:  stores.Activity,
		scenarios: stores.Scenarios,
		provider:  provider,
		usage:     usage,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ListLanguages returns every configured language.
func (s *Service) ListLanguages(ctx context.Context) ([]*Language, error) {
	return s.languages.List(ctx)
}

// LanguageByCode resolves a language by its short code.
func (s *Service) LanguageByCode(ctx context.Context, code string) (*Language, error) {
	return s.languages.GetByCode(ctx, code)
}

// CreateLesson stores a new lesson owned by the caller.
func (s *Service) CreateLesson(ctx context.Context, userID string, req LessonCreateRequest) (*Lesson, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if !validLevel(req.Level) {
		return nil, dErrors.New(dErrors.CodeValidation, "level must be beginner, intermediate or advanced")
	}
	if _, err := s.languages.GetByCode(ctx, req.LanguageCode); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown language code")
	}

	lesson := &Lesson{
		Title:            req.Title,
		Description:      req.Description,
		LanguageCode:     req.LanguageCode,
		Level:            req.Level,
		Order:            req.Order,
		Content:          req.Content,
		Vocabulary:       req.Vocabulary,
		GrammarPoints:    req.GrammarPoints,
		Exercises:        req.Exercises,
		EstimatedMinutes: req.EstimatedMinutes,
		CreatedBy:        userID,
		Public:           req.Public,
		Tags:             req.Tags,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "lesson created", "lesson_id", lesson.ID, "user_id", userID)
	return lesson, nil
}

// GetLesson returns a lesson if it is public or owned by the caller.
func (s *Service) GetLesson(ctx context.Context, id, userID string) (*Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lesson.Public && lesson.CreatedBy != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	return lesson, nil
}

// ListLessons returns lessons visible to the caller, optionally restricted
// to their own.
func (s *Service) ListLessons(ctx context.Context, userID string, filter LessonFilter, skip, limit int) ([]*Lesson, error) {
	if filter.CreatedBy == "" {
		filter.VisibleTo = userID
	}
	return s.lessons.List(ctx, filter, skip, limit)
}

// UpdateLesson applies changes, owner only.
func (s *Service) UpdateLesson(ctx context.Context, id, userID string, req LessonUpdateRequest) (*Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.CreatedBy != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the lesson creator can modify it")
	}
	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = *req.Description
	}
	if req.Level != nil {
		if !validLevel(*req.Level) {
			return nil, dErrors.New(dErrors.CodeValidation, "level must be beginner, intermediate or advanced")
		}
		lesson.Level = *req.Level
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.Vocabulary != nil {
		lesson.Vocabulary = *req.Vocabulary
	}
	if req.GrammarPoints != nil {
		lesson.GrammarPoints = *req.GrammarPoints
	}
	if req.Exercises != nil {
		lesson.Exercises = *req.Exercises
	}
	if req.EstimatedMinutes != nil {
		lesson.EstimatedMinutes = *req.EstimatedMinutes
	}
	if req.Public != nil {
		lesson.Public = *req.Public
	}
	if req.Tags != nil {
		lesson.Tags = *req.Tags
	}
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes a lesson together with its quizzes and every user's
// progress on it. Owner only.
func (s *Service) DeleteLesson(ctx context.Context, id, userID string) error {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if lesson.CreatedBy != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the lesson creator can delete it")
	}
	if err := s.quizzes.DeleteByLessonID(ctx, id); err != nil {
		return err
	}
	if err := s.progress.DeleteByLessonID(ctx, id); err != nil {
		return err
	}
	return s.lessons.Delete(ctx, id)
}

// CreateQuiz stores a new quiz owned by the caller.
func (s *Service) CreateQuiz(ctx context.Context, userID string, req QuizCreateRequest) (*Quiz, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(req.Questions) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one question is required")
	}
	if !validLevel(req.Level) {
		return nil, dErrors.New(dErrors.CodeValidation, "level must be beginner, intermediate or advanced")
	}
	if _, err := s.languages.GetByCode(ctx, req.LanguageCode); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown language code")
	}
	if req.LessonID != "" {
		if _, err := s.lessons.GetByID(ctx, req.LessonID); err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown lesson id")
		}
	}
	passing := req.PassingScore
	if passing <= 0 {
		passing = defaultPassingScore
	}

	quiz := &Quiz{
		LessonID:     req.LessonID,
		Title:        req.Title,
		Description:  req.Description,
		LanguageCode: req.LanguageCode,
		Level:        req.Level,
		Questions:    req.Questions,
		PassingScore: passing,
		TimeLimit:    req.TimeLimit,
		CreatedBy:    userID,
		Public:       req.Public,
		Tags:         req.Tags,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "quiz created", "quiz_id", quiz.ID, "user_id", userID)
	return quiz, nil
}

// GetQuiz returns a quiz if it is public or owned by the caller.
func (s *Service) GetQuiz(ctx context.Context, id, userID string) (*Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quiz.Public && quiz.CreatedBy != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	return quiz, nil
}

// ListQuizzes returns quizzes visible to the caller.
func (s *Service) ListQuizzes(ctx context.Context, userID string, filter QuizFilter, skip, limit int) ([]*Quiz, error) {
	if filter.CreatedBy == "" {
		filter.VisibleTo = userID
	}
	return s.quizzes.List(ctx, filter, skip, limit)
}

// UpdateQuiz applies changes, owner only.
func (s *Service) UpdateQuiz(ctx context.Context, id, userID string, req QuizUpdateRequest) (*Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.CreatedBy != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the quiz creator can modify it")
	}
	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Level != nil {
		if !validLevel(*req.Level) {
			return nil, dErrors.New(dErrors.CodeValidation, "level must be beginner, intermediate or advanced")
		}
		quiz.Level = *req.Level
	}
	if req.Questions != nil {
		if len(*req.Questions) == 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "at least one question is required")
		}
		quiz.Questions = *req.Questions
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.Public != nil {
		quiz.Public = *req.Public
	}
	if req.Tags != nil {
		quiz.Tags = *req.Tags
	}
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz, owner only.
func (s *Service) DeleteQuiz(ctx context.Context, id, userID string) error {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if quiz.CreatedBy != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the quiz creator can delete it")
	}
	return s.quizzes.Delete(ctx, id)
}

// SubmitQuiz grades a submission, updates the quiz's running average, logs
// the activity and folds the result into lesson progress.
func (s *Service) SubmitQuiz(ctx context.Context, quizID, userID string, sub QuizSubmission) (*QuizResult, error) {
	quiz, err := s.GetQuiz(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if len(sub.Answers) != len(quiz.Questions) {
		return nil, dErrors.New(dErrors.CodeValidation, "answer count does not match question count")
	}

	correct := 0
	feedback := make([]QuestionFeedback, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		isCorrect := strings.TrimSpace(sub.Answers[i].Answer) == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		feedback = append(feedback, QuestionFeedback{
			Question:      q.Question,
			UserAnswer:    sub.Answers[i].Answer,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       isCorrect,
		})
	}
	score := int(float64(correct) / float64(len(quiz.Questions)) * 100)
	passed := score >= quiz.PassingScore

	quiz.Attempts++
	quiz.AverageScore = (quiz.AverageScore*float64(quiz.Attempts-1) + float64(score)) / float64(quiz.Attempts)
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		s.logger.WarnContext(ctx, "quiz stats update failed", "quiz_id", quiz.ID, "error", err)
	}

	if err := s.LogActivity(ctx, ActivityEntry{
		UserID:       userID,
		Type:         ActivityQuiz,
		ActivityID:   quiz.ID,
		Duration:     sub.TimeSpent,
		LanguageCode: quiz.LanguageCode,
		Completed:    passed,
		Score:        &score,
	}); err != nil {
		s.logger.WarnContext(ctx, "activity log failed", "user_id", userID, "error", err)
	}

	if quiz.LessonID != "" {
		s.recordLessonAttempt(ctx, userID, quiz.LessonID, quiz.ID, score, passed, sub.TimeSpent)
	}

	if s.publisher != nil {
		s.publisher.Emit(audit.Event{
			UserID:  userID,
			Action:  audit.ActionQuizCompleted,
			Subject: quiz.ID,
			Detail:  map[string]string{"score": strconv.Itoa(score)},
		})
	}

	return &QuizResult{
		QuizID:         quiz.ID,
		Score:          score,
		Passed:         passed,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		Feedback:       feedback,
	}, nil
}

func (s *Service) recordLessonAttempt(ctx context.Context, userID, lessonID, quizID string, score int, passed bool, timeSpent int) {
	p, err := s.progress.Get(ctx, userID, lessonID)
	if err != nil {
		p = &Progress{UserID: userID, LessonID: lessonID}
	}
	p.QuizScores = append(p.QuizScores, QuizScore{QuizID: quizID, Score: score, Date: time.Now().UTC()})
	p.TimeSpent += timeSpent
	if passed && !p.Completed {
		p.Completed = true
		now := time.Now().UTC()
		p.CompletionDate = &now
	}
	if err := s.progress.Upsert(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "progress update failed", "user_id", userID, "lesson_id", lessonID, "error", err)
	}
}

// DailyLesson rotates through a language's public lessons by day of year.
func (s *Service) DailyLesson(ctx context.Context, userID, languageCode string) (*DailyLesson, error) {
	if _, err := s.languages.GetByCode(ctx, languageCode); err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListPublic(ctx, languageCode)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no lessons available for this language")
	}
	lesson := lessons[time.Now().UTC().YearDay()%len(lessons)]

	daily := &DailyLesson{Lesson: lesson}
	if quiz, err := s.quizzes.GetByLessonID(ctx, lesson.ID); err == nil {
		daily.Quiz = quiz
	}
	if p, err := s.progress.Get(ctx, userID, lesson.ID); err == nil {
		daily.Progress = p
		daily.Completed = p.Completed
	}
	return daily, nil
}

// UserProgress returns the caller's progress across a language's visible
// lessons.
func (s *Service) UserProgress(ctx context.Context, userID, languageCode string) ([]*Progress, error) {
	lessons, err := s.lessons.List(ctx, LessonFilter{LanguageCode: languageCode, VisibleTo: userID}, 0, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.progress.ListByUser(ctx, userID, ids)
}

// LogActivity records a practice activity and advances the day streak.
func (s *Service) LogActivity(ctx context.Context, entry ActivityEntry) error {
	if entry.Date == "" {
		entry.Date = time.Now().UTC().Format(dayFormat)
	}
	if err := s.activity.LogActivity(ctx, &entry); err != nil {
		return err
	}
	return s.advanceStreak(ctx, entry.UserID, entry.Date)
}

func (s *Service) advanceStreak(ctx context.Context, userID, day string) error {
	st, err := s.activity.GetStreak(ctx, userID)
	if err != nil {
		st = &Streak{UserID: userID}
	}
	if st.LastActivityDate == day {
		return nil
	}

	dayTime, err := time.Parse(dayFormat, day)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "parse activity date")
	}
	prev := dayTime.AddDate(0, 0, -1).Format(dayFormat)

	if st.LastActivityDate == prev {
		st.CurrentStreak++
	} else {
		st.CurrentStreak = 1
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastActivityDate = day
	st.StreakDates = append(st.StreakDates, day)
	st.TotalDaysActive++
	return s.activity.UpsertStreak(ctx, st)
}

// DashboardStats summarises activity over a trailing window, 30 days when
// days is not positive.
func (s *Service) DashboardStats(ctx context.Context, userID string, days int) (*DashboardStats, error) {
	if days <= 0 {
		days = defaultStatsWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := s.activity.ListActivities(ctx, userID, ActivityFilter{Since: since})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	scoreSum, scoreCount := 0, 0
	for _, e := range entries {
		stats.TotalPracticeTime += e.Duration
		switch e.Type {
		case ActivityLesson:
			if e.Completed {
				stats.LessonsCompleted++
			}
		case ActivityQuiz:
			if e.Completed {
				stats.QuizzesCompleted++
			}
		case ActivityConversation:
			stats.Conversations++
		case ActivityMeetingAnalysis:
			stats.MeetingsAnalyzed++
		}
		if e.Score != nil {
			scoreSum += *e.Score
			scoreCount++
		}
	}
	if scoreCount > 0 {
		stats.AverageScore = int(float64(scoreSum)/float64(scoreCount) + 0.5)
	}

	if st, err := s.activity.GetStreak(ctx, userID); err == nil {
		stats.CurrentStreak = st.CurrentStreak
		stats.LongestStreak = st.LongestStreak
		stats.TotalDaysActive = st.TotalDaysActive
	}
	return stats, nil
}

// GenerateCustomScenario asks the model for a practice scenario built from a
// free-form description, falling back to a plain scenario when the model's
// answer is not parseable JSON.
func (s *Service) GenerateCustomScenario(ctx context.Context, userID string, req ScenarioGenerateRequest) (*Scenario, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	language := req.Language
	if language == "" {
		language = "English"
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.CustomScenario(language, description)},
	}
	resp, err := s.provider.Generate(ctx, messages, llm.Options{Temperature: scenarioTemperature})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scenario generation failed")
	}
	s.usage.Record(ctx, userID, "", resp.Model, tokenusage.ContextScenarioGeneration,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	var generated GeneratedScenario
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &generated); err != nil || generated.Title == "" {
		clip := description
		if len(clip) > scenarioDescriptionClip {
			clip = clip[:scenarioDescriptionClip]
		}
		generated = GeneratedScenario{
			Title:       scenarioFallbackTitle,
			Description: clip,
			Role:        scenarioFallbackRole,
		}
	}

	scenario := &Scenario{
		UserID:       userID,
		Title:        generated.Title,
		Description:  generated.Description,
		Role:         generated.Role,
		LanguageCode: language,
		Type:         prompt.ScenarioTypeCustom,
	}
	if err := s.scenarios.Create(ctx, scenario); err != nil {
		return nil, err
	}
	s.metrics.RecordAnalysis("scenario")
	s.logger.InfoContext(ctx, "custom scenario generated", "scenario_id", scenario.ID, "user_id", userID)
	return scenario, nil
}

// CustomScenarios lists the caller's generated scenarios, newest first.
func (s *Service) CustomScenarios(ctx context.Context, userID string) ([]*Scenario, error) {
	return s.scenarios.ListByUser(ctx, userID, scenarioHistoryLimit)
}

// ScenarioByID returns one stored scenario, owner only.
func (s *Service) ScenarioByID(ctx context.Context, id, userID string) (*Scenario, error) {
	sc, err := s.scenarios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "scenario not found")
	}
	return sc, nil
}
