package user

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lingua/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), slog.Default())
}

func TestRegisterHashesPasswordAndDefaults(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), CreateRequest{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "correct-horse", u.HashedPassword)
	assert.True(t, u.Active)
	assert.False(t, u.Superuser)
	assert.Equal(t, "en", u.PreferredLanguage)
	assert.NotNil(t, u.LearningLanguages)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"short username", CreateRequest{Username: "ab", Email: "a@example.com", Password: "longenough"}},
		{"bad email", CreateRequest{Username: "maria", Email: "not-an-email", Password: "longenough"}},
		{"short password", CreateRequest{Username: "maria", Email: "a@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "expected validation error, got %v", err)
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, CreateRequest{Username: "maria", Email: "maria@example.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, CreateRequest{Username: "maria", Email: "other@example.com", Password: "longenough"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = svc.Register(ctx, CreateRequest{Username: "other", Email: "maria@example.com", Password: "longenough"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, CreateRequest{Username: "maria", Email: "maria@example.com", Password: "longenough", FullName: "Maria"})
	require.NoError(t, err)

	newName := "Maria G"
	superuser := true
	updated, err := svc.Update(ctx, u.ID, UpdateRequest{FullName: &newName, Superuser: &superuser})
	require.NoError(t, err)

	assert.Equal(t, "Maria G", updated.FullName)
	assert.True(t, updated.Superuser)
	assert.Equal(t, "maria@example.com", updated.Email)
	assert.True(t, updated.Active)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, CreateRequest{Username: "maria", Email: "maria@example.com", Password: "longenough"})
	require.NoError(t, err)
	other, err := svc.Register(ctx, CreateRequest{Username: "other", Email: "other@example.com", Password: "longenough"})
	require.NoError(t, err)

	taken := "maria@example.com"
	_, err = svc.Update(ctx, other.ID, UpdateRequest{Email: &taken})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}
