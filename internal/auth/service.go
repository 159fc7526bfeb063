package auth

import (
	"context"
	"log/slog"
	"time"

	"lingua/internal/audit"
	"lingua/internal/jwttoken"
	"lingua/internal/user"
	dErrors "lingua/pkg/domain-errors"
	"lingua/pkg/secrets"
)

// Service authenticates credentials and mints access tokens.
type Service struct {
	users     user.Store
	tokens    *jwttoken.Service
	limiter   *LoginLimiter
	publisher *audit.Publisher
	logger    *slog.Logger
	tokenTTL  time.Duration
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithLimiter(l *LoginLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(users user.Store, tokens *jwttoken.Service, tokenTTL time.Duration, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the credentials and returns a bearer token. Failures are
// deliberately indistinguishable between unknown username and wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	if req.Username == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username and password are required")
	}
	if err := s.limiter.Allow(ctx, req.Username); err != nil {
		return nil, err
	}

	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect username or password")
	}
	if err := secrets.VerifyPassword(req.Password, u.HashedPassword); err != nil {
		s.logger.InfoContext(ctx, "failed login", "username", req.Username)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect username or password")
	}
	if !u.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, "inactive user")
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Username, u.Superuser, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.limiter.Reset(ctx, req.Username)
	s.publisher.Emit(audit.Event{
		UserID: u.ID,
		Action: audit.ActionUserLogin,
		Detail: map[string]string{"username": u.Username},
	})

	return &Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}
