package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"

	"lingua/internal/audit"
	"lingua/internal/platform/metrics"
	dErrors "lingua/pkg/domain-errors"
	"lingua/pkg/secrets"
)

// Service owns account lifecycle rules on top of the store.
type Service struct {
	store     Store
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

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account from the public signup payload. New accounts
// are active non-superusers.
func (s *Service) Register(ctx context.Context, req CreateRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if !govalidator.StringLength(req.Username, "3", "50") {
		return nil, dErrors.New(dErrors.CodeValidation, "username must be between 3 and 50 characters")
	}
	if !govalidator.IsEmail(req.Email) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid email address")
	}
	if !govalidator.StringLength(req.Password, "8", "128") {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.store.GetByUsername(ctx, req.Username); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "username already registered")
	}
	if _, err := s.store.GetByEmail(ctx, req.Email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	}

	hash, err := secrets.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	preferred := req.PreferredLanguage
	if preferred == "" {
		preferred = "en"
	}
	u := &User{
		Username:          req.Username,
		Email:             req.Email,
		FullName:          req.FullName,
		HashedPassword:    hash,
		Active:            true,
		PreferredLanguage: preferred,
		LearningLanguages: req.LearningLanguages,
	}
	if u.LearningLanguages == nil {
		u.LearningLanguages = []string{}
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	s.metrics.IncrementUsersCreated()
	s.publisher.Emit(audit.Event{
		UserID: u.ID,
		Action: audit.ActionUserRegistered,
		Detail: map[string]string{"username": u.Username},
	})
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.store.GetByUsername(ctx, username)
}

// List returns a page of users ordered by creation time.
func (s *Service) List(ctx context.Context, skip, limit int) ([]*User, error) {
	users, _, err := s.store.Search(ctx, "", skip, limit)
	return users, err
}

// Update applies the non-nil fields of req to the user.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !govalidator.IsEmail(email) {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid email address")
		}
		if existing, err := s.store.GetByEmail(ctx, email); err == nil && existing.ID != id {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		u.Email = email
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.Superuser != nil {
		u.Superuser = *req.Superuser
	}
	if req.PreferredLanguage != nil {
		u.PreferredLanguage = *req.PreferredLanguage
	}
	if req.LearningLanguages != nil {
		u.LearningLanguages = *req.LearningLanguages
	}
	if req.ProfilePicture != nil {
		u.ProfilePicture = *req.ProfilePicture
	}

	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
