package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"github.com/yukikurage/project-collab-api/internal/testutil"
)

func newAuthService(t *testing.T) *AuthService {
	db := testutil.NewDB(t)
	return NewAuthService(repository.NewUserRepository(db), NewJWTService("test-secret", time.Hour))
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Name: "Alice", Email: " Alice@Example.com ", Password: "password123", Role: models.RoleTeamLeader})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleTeamLeader, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Signup(ctx, SignupInput{Name: "Other", Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SignupInput
		want  error
	}{
		{"missing name", SignupInput{Email: "a@example.com", Password: "password123"}, ErrNameRequired},
		{"missing email", SignupInput{Name: "A", Password: "password123"}, ErrEmailRequired},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "password123"}, ErrInvalidEmail},
		{"short password", SignupInput{Name: "A", Email: "a@example.com", Password: "short"}, ErrPasswordTooShort},
		{"admin is not self-assignable", SignupInput{Name: "A", Email: "a@example.com", Password: "password123", Role: models.RoleAdmin}, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	user, err := svc.Signup(ctx, SignupInput{Name: "Default", Email: "d@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeamMember, user.Role)
}

func TestAuthService_Tokens(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	resolved, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Tokens for users that no longer exist are rejected.
	ghost, err := NewJWTService("test-secret", time.Hour).GenerateToken(&models.User{ID: uuid.New()})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleTeamMember}

	foreign, err := NewJWTService("other-secret", time.Hour).GenerateToken(user)
	require.NoError(t, err)
	_, err = NewJWTService("test-secret", time.Hour).ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewJWTService("test-secret", -time.Minute).GenerateToken(user)
	require.NoError(t, err)
	_, err = NewJWTService("test-secret", time.Hour).ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_PromoteToAdmin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	promoted, err := svc.PromoteToAdmin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	reloaded, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)

	_, err = svc.PromoteToAdmin(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestParseGeneratedTasks(t *testing.T) {
	tasks, err := parseGeneratedTasks("```json\n[{\"title\":\"a\",\"priority\":\"high\",\"due_date\":null}]\n```")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)
	assert.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)

	_, err = parseGeneratedTasks("not json")
	assert.Error(t, err)
}
