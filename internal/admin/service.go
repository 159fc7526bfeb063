package admin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"lingua/internal/audit"
	"lingua/internal/chat"
	"lingua/internal/learning"
	"lingua/internal/tokenusage"
	"lingua/internal/user"
	dErrors "lingua/pkg/domain-errors"
)

const statsWindowDays = 30

// Service implements admin operations across the user, chat, token usage
// and language stores.
type Service struct {
	users     user.Store
	sessions  chat.SessionStore
	usage     tokenusage.Store
	languages learning.LanguageStore
	publisher *audit.Publisher
	logger    *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(users user.Store, sessions chat.SessionStore, usage tokenusage.Store, languages learning.LanguageStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:     users,
		sessions:  sessions,
		usage:     usage,
		languages: languages,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns a page of users matching the optional search query.
func (s *Service) ListUsers(ctx context.Context, query string, skip, limit int) (*UserPage, error) {
	users, total, err := s.users.Search(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return &UserPage{Users: views, Total: total, Skip: skip, Limit: limit}, nil
}

// GetUser returns the detail view with per-user usage counters.
func (s *Service) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &UserDetail{UserView: toUserView(u)}

	sessionCount, err := s.sessions.CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	since := time.Now().UTC().AddDate(0, 0, -statsWindowDays)
	tokens, usageCount, err := s.usage.TotalsForUserSince(ctx, id, since)
	if err != nil {
		return nil, err
	}
	detail.Stats = UserStats{
		SessionCount:    sessionCount,
		TotalTokens30d:  tokens,
		TokenUsageCount: usageCount,
	}
	return detail, nil
}

// UpdateUser applies admin-editable fields, including the role flag.
func (s *Service) UpdateUser(ctx context.Context, actorID, id string, req UserUpdateRequest) (*UserView, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		if !govalidator.IsEmail(*req.Email) {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid email address")
		}
		if existing, err := s.users.GetByEmail(ctx, *req.Email); err == nil && existing.ID != id {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		u.Email = *req.Email
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Role != nil {
		switch *req.Role {
		case RoleAdmin:
			u.Superuser = true
		case RoleUser:
			if id == actorID {
				return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot change your own role")
			}
			u.Superuser = false
		default:
			return nil, dErrors.New(dErrors.CodeValidation, "role must be admin or user")
		}
	}
	if req.Active != nil {
		if id == actorID && !*req.Active {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot deactivate your own account")
		}
		u.Active = *req.Active
	}
	if req.NativeLanguage != nil {
		u.PreferredLanguage = *req.NativeLanguage
	}
	if req.LearningLanguages != nil {
		u.LearningLanguages = *req.LearningLanguages
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.emitAdminChange(actorID, id, "user_updated")
	view := toUserView(u)
	return &view, nil
}

// ToggleActive flips the active flag. Admins cannot deactivate themselves.
func (s *Service) ToggleActive(ctx context.Context, actorID, id string) (*UserView, error) {
	if id == actorID {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot deactivate your own account")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Active = !u.Active
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.emitAdminChange(actorID, id, "toggle_active")
	view := toUserView(u)
	return &view, nil
}

// ToggleAdmin flips the superuser flag. Admins cannot demote themselves.
func (s *Service) ToggleAdmin(ctx context.Context, actorID, id string) (*UserView, error) {
	if id == actorID {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot change your own role")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Superuser = !u.Superuser
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.emitAdminChange(actorID, id, "toggle_admin")
	view := toUserView(u)
	return &view, nil
}

// DeactivateUser is the admin delete: accounts are deactivated, never
// removed. Admins cannot delete themselves.
func (s *Service) DeactivateUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot delete your own account")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Active = false
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.emitAdminChange(actorID, id, "user_deactivated")
	return nil
}

// StatsOverview aggregates platform counters for the admin dashboard.
func (s *Service) StatsOverview(ctx context.Context) (*Overview, error) {
	userStats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, err
	}
	sessionTotal, err := s.sessions.Count(ctx)
	if err != nil {
		return nil, err
	}
	since := time.Now().UTC().AddDate(0, 0, -statsWindowDays)
	tokens, usageCount, err := s.usage.TotalsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	languageCounts, err := s.users.LearningLanguageCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Users:     userStats,
		Sessions:  SessionStats{Total: sessionTotal},
		Tokens:    TokenStats{TotalLast30Days: tokens, UsageCount30d: usageCount},
		Languages: languageCounts,
	}, nil
}

// ListLanguages returns every configured language.
func (s *Service) ListLanguages(ctx context.Context) ([]*learning.Language, error) {
	return s.languages.List(ctx)
}

// CreateLanguage adds a language. Codes are unique.
func (s *Service) CreateLanguage(ctx context.Context, actorID string, req LanguageRequest) (*learning.Language, error) {
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if code == "" || strings.TrimSpace(req.Name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "code and name are required")
	}
	language := &learning.Language{
		Code:       code,
		Name:       req.Name,
		NativeName: req.NativeName,
	}
	if err := s.languages.Create(ctx, language); err != nil {
		return nil, err
	}
	s.emitAdminChange(actorID, language.ID, "language_created")
	return language, nil
}

// UpdateLanguage edits a language's code and names.
func (s *Service) UpdateLanguage(ctx context.Context, actorID, id string, req LanguageRequest) (*learning.Language, error) {
	language, err := s.languages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != "" {
		language.Code = strings.ToLower(strings.TrimSpace(req.Code))
	}
	if req.Name != "" {
		language.Name = req.Name
	}
	if req.NativeName != "" {
		language.NativeName = req.NativeName
	}
	if err := s.languages.Update(ctx, language); err != nil {
		return nil, err
	}
	s.emitAdminChange(actorID, id, "language_updated")
	return language, nil
}

// DeleteLanguage removes a language unless any user still references its
// code.
func (s *Service) DeleteLanguage(ctx context.Context, actorID, id string) error {
	language, err := s.languages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	inUse, err := s.users.CountUsingLanguage(ctx, language.Code)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return dErrors.Newf(dErrors.CodeConflict, "language %s is referenced by %d users", language.Code, inUse)
	}
	if err := s.languages.Delete(ctx, id); err != nil {
		return err
	}
	s.emitAdminChange(actorID, id, "language_deleted")
	return nil
}

func (s *Service) emitAdminChange(actorID, subject, change string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Emit(audit.Event{
		UserID:  actorID,
		Action:  audit.ActionAdminChange,
		Subject: subject,
		Detail:  map[string]string{"change": change},
	})
}
