package learning

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	dErrors "lingua/pkg/domain-errors"
)

// MemoryLanguageStore keeps languages in a map. Used in tests and local
// development.
type MemoryLanguageStore struct {
	mu        sync.RWMutex
	languages map[string]*Language
}

func NewMemoryLanguageStore() *MemoryLanguageStore {
	return &MemoryLanguageStore{languages: make(map[string]*Language)}
}

func (s *MemoryLanguageStore) Create(_ context.Context, l *Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.languages {
		if existing.Code == l.Code {
			return dErrors.New(dErrors.CodeConflict, "language code already exists")
		}
	}
	if l.ID == "" {
		l.ID = primitive.NewObjectID().Hex()
	}
	l.CreatedAt = time.Now().UTC()

	clone := *l
	s.languages[l.ID] = &clone
	return nil
}

func (s *MemoryLanguageStore) GetByID(_ context.Context, id string) (*Language, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.languages[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	clone := *l
	return &clone, nil
}

func (s *MemoryLanguageStore) GetByCode(_ context.Context, code string) (*Language, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.languages {
		if l.Code == code {
			clone := *l
			return &clone, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "language not found")
}

func (s *MemoryLanguageStore) List(_ context.Context) ([]*Language, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Language, 0, len(s.languages))
	for _, l := range s.languages {
		clone := *l
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryLanguageStore) Update(_ context.Context, l *Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.languages[l.ID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	for id, existing := range s.languages {
		if id != l.ID && existing.Code == l.Code {
			return dErrors.New(dErrors.CodeConflict, "language code already exists")
		}
	}
	clone := *l
	s.languages[l.ID] = &clone
	return nil
}

func (s *MemoryLanguageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.languages[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "language not found")
	}
	delete(s.languages, id)
	return nil
}

// MemoryLessonStore keeps lessons in a map.
type MemoryLessonStore struct {
	mu      sync.RWMutex
	lessons map[string]*Lesson
}

func NewMemoryLessonStore() *MemoryLessonStore {
	return &MemoryLessonStore{lessons: make(map[string]*Lesson)}
}

func (s *MemoryLessonStore) Create(_ context.Context, l *Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	clone := *l
	s.lessons[l.ID] = &clone
	return nil
}

func (s *MemoryLessonStore) GetByID(_ context.Context, id string) (*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessons[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	clone := *l
	return &clone, nil
}

func lessonMatches(l *Lesson, filter LessonFilter) bool {
	if filter.LanguageCode != "" && l.LanguageCode != filter.LanguageCode {
		return false
	}
	if filter.Level != "" && l.Level != filter.Level {
		return false
	}
	if filter.CreatedBy != "" && l.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.VisibleTo != "" && !l.Public && l.CreatedBy != filter.VisibleTo {
		return false
	}
	return true
}

func (s *MemoryLessonStore) List(_ context.Context, filter LessonFilter, skip, limit int) ([]*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Lesson
	for _, l := range s.lessons {
		if lessonMatches(l, filter) {
			clone := *l
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Order < matched[j].Order })

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryLessonStore) ListPublic(_ context.Context, languageCode string) ([]*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Lesson
	for _, l := range s.lessons {
		if l.Public && l.LanguageCode == languageCode {
			clone := *l
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Order < matched[j].Order })
	return matched, nil
}

func (s *MemoryLessonStore) Update(_ context.Context, l *Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[l.ID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	l.UpdatedAt = time.Now().UTC()
	clone := *l
	s.lessons[l.ID] = &clone
	return nil
}

func (s *MemoryLessonStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "lesson not found")
	}
	delete(s.lessons, id)
	return nil
}

// MemoryQuizStore keeps quizzes in a map.
type MemoryQuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*Quiz
}

func NewMemoryQuizStore() *MemoryQuizStore {
	return &MemoryQuizStore{quizzes: make(map[string]*Quiz)}
}

func (s *MemoryQuizStore) Create(_ context.Context, q *Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	clone := *q
	s.quizzes[q.ID] = &clone
	return nil
}

func (s *MemoryQuizStore) GetByID(_ context.Context, id string) (*Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quizzes[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	clone := *q
	return &clone, nil
}

func (s *MemoryQuizStore) GetByLessonID(_ context.Context, lessonID string) (*Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quizzes {
		if q.LessonID == lessonID {
			clone := *q
			return &clone, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
}

func quizMatches(q *Quiz, filter QuizFilter) bool {
	if filter.LanguageCode != "" && q.LanguageCode != filter.LanguageCode {
		return false
	}
	if filter.Level != "" && q.Level != filter.Level {
		return false
	}
	if filter.LessonID != "" && q.LessonID != filter.LessonID {
		return false
	}
	if filter.CreatedBy != "" && q.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.VisibleTo != "" && !q.Public && q.CreatedBy != filter.VisibleTo {
		return false
	}
	return true
}

func (s *MemoryQuizStore) List(_ context.Context, filter QuizFilter, skip, limit int) ([]*Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Quiz
	for _, q := range s.quizzes {
		if quizMatches(q, filter) {
			clone := *q
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryQuizStore) Update(_ context.Context, q *Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[q.ID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	q.UpdatedAt = time.Now().UTC()
	clone := *q
	s.quizzes[q.ID] = &clone
	return nil
}

func (s *MemoryQuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "quiz not found")
	}
	delete(s.quizzes, id)
	return nil
}

func (s *MemoryQuizStore) DeleteByLessonID(_ context.Context, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, q := range s.quizzes {
		if q.LessonID == lessonID {
			delete(s.quizzes, id)
		}
	}
	return nil
}

// MemoryProgressStore keeps progress records keyed by user and lesson.
type MemoryProgressStore struct {
	mu      sync.RWMutex
	records map[string]*Progress
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{records: make(map[string]*Progress)}
}

func progressKey(userID, lessonID string) string { return userID + "/" + lessonID }

func cloneProgress(p *Progress) *Progress {
	clone := *p
	clone.QuizScores = append([]QuizScore(nil), p.QuizScores...)
	return &clone
}

func (s *MemoryProgressStore) Upsert(_ context.Context, p *Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	p.LastAccessed = time.Now().UTC()
	s.records[progressKey(p.UserID, p.LessonID)] = cloneProgress(p)
	return nil
}

func (s *MemoryProgressStore) Get(_ context.Context, userID, lessonID string) (*Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.records[progressKey(userID, lessonID)]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "progress not found")
	}
	return cloneProgress(p), nil
}

func (s *MemoryProgressStore) ListByUser(_ context.Context, userID string, lessonIDs []string) ([]*Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		wanted[id] = true
	}

	var out []*Progress
	for _, p := range s.records {
		if p.UserID != userID {
			continue
		}
		if len(lessonIDs) > 0 && !wanted[p.LessonID] {
			continue
		}
		out = append(out, cloneProgress(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonID < out[j].LessonID })
	return out, nil
}

func (s *MemoryProgressStore) DeleteByLessonID(_ context.Context, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.records {
		if p.LessonID == lessonID {
			delete(s.records, key)
		}
	}
	return nil
}

// MemoryActivityStore keeps activity logs and streaks in memory.
type MemoryActivityStore struct {
	mu      sync.RWMutex
	entries []*ActivityEntry
	streaks map[string]*Streak
}

func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{streaks: make(map[string]*Streak)}
}

func (s *MemoryActivityStore) LogActivity(_ context.Context, e *ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	e.CreatedAt = time.Now().UTC()
	clone := *e
	s.entries = append(s.entries, &clone)
	return nil
}

func (s *MemoryActivityStore) ListActivities(_ context.Context, userID string, filter ActivityFilter) ([]*ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ActivityEntry
	for _, e := range s.entries {
		if e.UserID != userID {
			continue
		}
		if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func cloneStreak(st *Streak) *Streak {
	clone := *st
	clone.StreakDates = append([]string(nil), st.StreakDates...)
	return &clone
}

func (s *MemoryActivityStore) GetStreak(_ context.Context, userID string) (*Streak, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.streaks[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "streak not found")
	}
	return cloneStreak(st), nil
}

func (s *MemoryActivityStore) UpsertStreak(_ context.Context, st *Streak) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = primitive.NewObjectID().Hex()
	}
	st.UpdatedAt = time.Now().UTC()
	s.streaks[st.UserID] = cloneStreak(st)
	return nil
}

// MemoryScenarioStore keeps practice scenarios in a map.
type MemoryScenarioStore struct {
	mu        sync.RWMutex
	scenarios map[string]*Scenario
}

func NewMemoryScenarioStore() *MemoryScenarioStore {
	return &MemoryScenarioStore{scenarios: make(map[string]*Scenario)}
}

func (s *MemoryScenarioStore) Create(_ context.Context, sc *Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc.ID == "" {
		sc.ID = primitive.NewObjectID().Hex()
	}
	sc.CreatedAt = time.Now().UTC()
	clone := *sc
	s.scenarios[sc.ID] = &clone
	return nil
}

func (s *MemoryScenarioStore) GetByID(_ context.Context, id string) (*Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scenarios[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "scenario not found")
	}
	clone := *sc
	return &clone, nil
}

func (s *MemoryScenarioStore) ListByUser(_ context.Context, userID string, limit int) ([]*Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Scenario
	for _, sc := range s.scenarios {
		if sc.UserID == userID {
			clone := *sc
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
