package learning

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/internal/llm"
	"lingua/internal/llm/llmtest"
	"lingua/internal/tokenusage"
	dErrors "lingua/pkg/domain-errors"
)

type learningFixture struct {
	svc      *Service
	provider *llmtest.Fake
	usage    *tokenusage.MemoryStore
	activity *MemoryActivityStore
}

func newLearningFixture(t *testing.T, responses ...llm.Response) *learningFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := llmtest.New(responses...)
	usageStore := tokenusage.NewMemoryStore()
	activity := NewMemoryActivityStore()
	svc := NewService(
		Stores{
			Languages: NewMemoryLanguageStore(),
			Lessons:   NewMemoryLessonStore(),
			Quizzes:   NewMemoryQuizStore(),
			Progress:  NewMemoryProgressStore(),
			Activity:  activity,
			Scenarios: NewMemoryScenarioStore(),
		},
		provider,
		tokenusage.NewService(usageStore, nil, logger),
		logger,
	)
	return &learningFixture{svc: svc, provider: provider, usage: usageStore, activity: activity}
}

func (f *learningFixture) seedLanguage(t *testing.T, code, name string) {
	t.Helper()
	err := f.svc.languages.Create(context.Background(), &Language{Code: code, Name: name})
	require.NoError(t, err)
}

func (f *learningFixture) seedLesson(t *testing.T, owner string, public bool, order int) *Lesson {
	t.Helper()
	lesson := &Lesson{
		Title:        "Greetings",
		LanguageCode: "de",
		Level:        LevelBeginner,
		Order:        order,
		CreatedBy:    owner,
		Public:       public,
	}
	require.NoError(t, f.svc.lessons.Create(context.Background(), lesson))
	return lesson
}

func (f *learningFixture) seedQuiz(t *testing.T, owner, lessonID string, passing int) *Quiz {
	t.Helper()
	quiz := &Quiz{
		LessonID:     lessonID,
		Title:        "Greetings quiz",
		LanguageCode: "de",
		Level:        LevelBeginner,
		PassingScore: passing,
		CreatedBy:    owner,
		Public:       true,
		Questions: []QuizQuestion{
			{Question: "hello", CorrectAnswer: "hallo"},
			{Question: "thanks", CorrectAnswer: "danke"},
			{Question: "bye", CorrectAnswer: "tschuess"},
			{Question: "yes", CorrectAnswer: "ja"},
		},
	}
	require.NoError(t, f.svc.quizzes.Create(context.Background(), quiz))
	return quiz
}

func TestCreateLessonValidation(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	_, err := f.svc.CreateLesson(ctx, "u1", LessonCreateRequest{Title: "", LanguageCode: "de", Level: LevelBeginner})
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	_, err = f.svc.CreateLesson(ctx, "u1", LessonCreateRequest{Title: "T", LanguageCode: "de", Level: "expert"})
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	_, err = f.svc.CreateLesson(ctx, "u1", LessonCreateRequest{Title: "T", LanguageCode: "xx", Level: LevelBeginner})
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	lesson, err := f.svc.CreateLesson(ctx, "u1", LessonCreateRequest{Title: "T", LanguageCode: "de", Level: LevelBeginner, Public: true})
	require.NoError(t, err)
	assert.Equal(t, "u1", lesson.CreatedBy)
}

func TestPrivateLessonHiddenFromOthers(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	private := f.seedLesson(t, "owner", false, 1)

	_, err := f.svc.GetLesson(ctx, private.ID, "stranger")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))

	got, err := f.svc.GetLesson(ctx, private.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	visible, err := f.svc.ListLessons(ctx, "stranger", LessonFilter{LanguageCode: "de"}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestUpdateLessonOwnerOnly(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	lesson := f.seedLesson(t, "owner", true, 1)
	title := "Renamed"

	_, err := f.svc.UpdateLesson(ctx, lesson.ID, "stranger", LessonUpdateRequest{Title: &title})
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))

	updated, err := f.svc.UpdateLesson(ctx, lesson.ID, "owner", LessonUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestDeleteLessonCascades(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	lesson := f.seedLesson(t, "owner", true, 1)
	quiz := f.seedQuiz(t, "owner", lesson.ID, 70)
	require.NoError(t, f.svc.progress.Upsert(ctx, &Progress{UserID: "u1", LessonID: lesson.ID}))

	require.NoError(t, f.svc.DeleteLesson(ctx, lesson.ID, "owner"))

	_, err := f.svc.lessons.GetByID(ctx, lesson.ID)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	_, err = f.svc.quizzes.GetByID(ctx, quiz.ID)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	_, err = f.svc.progress.Get(ctx, "u1", lesson.ID)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestSubmitQuizGradesAndTracksProgress(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	lesson := f.seedLesson(t, "owner", true, 1)
	quiz := f.seedQuiz(t, "owner", lesson.ID, 70)

	result, err := f.svc.SubmitQuiz(ctx, quiz.ID, "u1", QuizSubmission{
		Answers: []QuizAnswer{
			{Answer: "hallo"}, {Answer: "danke"}, {Answer: "tschuess"}, {Answer: "nein"},
		},
		TimeSpent: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 75, result.Score)
	assert.True(t, result.Passed)
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.Equal(t, 4, result.TotalQuestions)
	require.Len(t, result.Feedback, 4)
	assert.False(t, result.Feedback[3].Correct)
	assert.Equal(t, "ja", result.Feedback[3].CorrectAnswer)

	p, err := f.svc.progress.Get(ctx, "u1", lesson.ID)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	require.Len(t, p.QuizScores, 1)
	assert.Equal(t, 75, p.QuizScores[0].Score)
	assert.Equal(t, 5, p.TimeSpent)

	updated, err := f.svc.quizzes.GetByID(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Attempts)
	assert.InDelta(t, 75.0, updated.AverageScore, 0.001)
}

func TestSubmitQuizRunningAverage(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	quiz := f.seedQuiz(t, "owner", "", 70)

	perfect := []QuizAnswer{{Answer: "hallo"}, {Answer: "danke"}, {Answer: "tschuess"}, {Answer: "ja"}}
	half := []QuizAnswer{{Answer: "hallo"}, {Answer: "danke"}, {Answer: "x"}, {Answer: "x"}}

	_, err := f.svc.SubmitQuiz(ctx, quiz.ID, "u1", QuizSubmission{Answers: perfect})
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(ctx, quiz.ID, "u1", QuizSubmission{Answers: half})
	require.NoError(t, err)

	updated, err := f.svc.quizzes.GetByID(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Attempts)
	assert.InDelta(t, 75.0, updated.AverageScore, 0.001)
}

func TestSubmitQuizAnswerCountMismatch(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")

	quiz := f.seedQuiz(t, "owner", "", 70)
	_, err := f.svc.SubmitQuiz(context.Background(), quiz.ID, "u1", QuizSubmission{Answers: []QuizAnswer{{Answer: "hallo"}}})
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestDailyLessonRotation(t *testing.T) {
	f := newLearningFixture(t)
	f.seedLanguage(t, "de", "German")
	ctx := context.Background()

	lesson := f.seedLesson(t, "owner", true, 1)
	quiz := f.seedQuiz(t, "owner", lesson.ID, 70)

	daily, err := f.svc.DailyLesson(ctx, "u1", "de")
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, daily.Lesson.ID)
	require.NotNil(t, daily.Quiz)
	assert.Equal(t, quiz.ID, daily.Quiz.ID)
	assert.False(t, daily.Completed)

	_, err = f.svc.DailyLesson(ctx, "u1", "fr")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestStreakAdvancement(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	day := func(offset int) string {
		return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset).Format(dayFormat)
	}

	log := func(d string) {
		require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "u1", Type: ActivityLesson, Date: d}))
	}

	log(day(0))
	st, err := f.activity.GetStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStreak)

	// same day is a no-op
	log(day(0))
	st, _ = f.activity.GetStreak(ctx, "u1")
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 1, st.TotalDaysActive)

	// next day extends
	log(day(1))
	log(day(2))
	st, _ = f.activity.GetStreak(ctx, "u1")
	assert.Equal(t, 3, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)

	// gap resets, longest survives
	log(day(5))
	st, _ = f.activity.GetStreak(ctx, "u1")
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
	assert.Equal(t, 4, st.TotalDaysActive)
	assert.Len(t, st.StreakDates, 4)
}

func TestDashboardStats(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	score1, score2 := 80, 61
	require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "u1", Type: ActivityQuiz, Completed: true, Duration: 10, Score: &score1}))
	require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "u1", Type: ActivityQuiz, Completed: false, Duration: 5, Score: &score2}))
	require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "u1", Type: ActivityLesson, Completed: true, Duration: 15}))
	require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "u1", Type: ActivityConversation, Duration: 20}))
	require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "u1", Type: ActivityMeetingAnalysis, Duration: 30}))
	require.NoError(t, f.svc.LogActivity(ctx, ActivityEntry{UserID: "other", Type: ActivityQuiz, Completed: true, Duration: 99}))

	stats, err := f.svc.DashboardStats(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 80, stats.TotalPracticeTime)
	assert.Equal(t, 1, stats.LessonsCompleted)
	assert.Equal(t, 1, stats.QuizzesCompleted)
	assert.Equal(t, 1, stats.Conversations)
	assert.Equal(t, 1, stats.MeetingsAnalyzed)
	assert.Equal(t, 71, stats.AverageScore)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestGenerateCustomScenarioParsesModelJSON(t *testing.T) {
	f := newLearningFixture(t, llmtest.Reply(`{"title":"At the Bakery","description":"Order bread and pastries.","role":"baker"}`))
	ctx := context.Background()

	scenario, err := f.svc.GenerateCustomScenario(ctx, "u1", ScenarioGenerateRequest{
		Description: "ordering at a bakery",
		Language:    "German",
	})
	require.NoError(t, err)

	assert.Equal(t, "At the Bakery", scenario.Title)
	assert.Equal(t, "baker", scenario.Role)
	assert.Equal(t, "custom", scenario.Type)

	usage, err := f.usage.ListByUser(ctx, "u1", tokenusage.Filter{})
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, tokenusage.ContextScenarioGeneration, usage[0].Context)

	listed, err := f.svc.CustomScenarios(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, scenario.ID, listed[0].ID)
}

func TestGenerateCustomScenarioFallsBackOnBadJSON(t *testing.T) {
	f := newLearningFixture(t, llmtest.Reply("sorry, I cannot help with that"))

	scenario, err := f.svc.GenerateCustomScenario(context.Background(), "u1", ScenarioGenerateRequest{
		Description: "ordering at a bakery",
	})
	require.NoError(t, err)

	assert.Equal(t, scenarioFallbackTitle, scenario.Title)
	assert.Equal(t, "ordering at a bakery", scenario.Description)
	assert.Equal(t, scenarioFallbackRole, scenario.Role)
}
