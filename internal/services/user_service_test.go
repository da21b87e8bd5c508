package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divesh330/timevault/internal/auth"
	"github.com/divesh330/timevault/internal/errs"
	"github.com/divesh330/timevault/internal/models"
)

func newUserService() IUserService {
	return NewUserService(newTestRepos().Users, testConfig())
}

func TestRegister_Success(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(context.Background(), "Ada", "Ada@Example.com", "correct horse")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email) // normalized
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	cases := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "  ", "ada@example.com", "correct horse"},
		{"bad email", "Ada", "not-an-email", "correct horse"},
		{"short password", "Ada", "ada@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.userName, tc.email, tc.password)
			assert.True(t, errs.IsKind(err, errs.KindValidation), "got %v", err)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Impostor", "ADA@example.com", "battery staple")
	assert.True(t, errs.IsKind(err, errs.KindConflict), "got %v", err)
}

func TestLogin_Success(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := auth.ValidateJWT(token, testConfig().JwtSecret)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	// Unknown email and wrong password are reported identically.
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	unknownMsg := err.Error()

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong password")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	assert.Equal(t, unknownMsg, err.Error())
}

func TestFindByID(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	user, err := svc.FindByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.Email, user.Email)

	_, err = svc.FindByID(ctx, "missing")
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}
