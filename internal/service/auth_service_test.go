package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

type fakeAuthRepo struct {
	users        map[string]*models.User
	lastLoginErr error
	passwordErr  error
}

func (f *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if f.lastLoginErr != nil {
		return f.lastLoginErr
	}
	if user, ok := f.users[id]; ok {
		user.LastLogin = &ts
	}
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if f.passwordErr != nil {
		return f.passwordErr
	}
	user, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	return nil
}

func authTestConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "hms-api-test"}
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeAuthRepo{users: map[string]*models.User{
		"admin-1": {
			ID: "admin-1", Email: "admin@example.com", FullName: "Admin",
			Role: models.RoleAdmin, Active: true, PasswordHash: string(hash),
		},
		"student-1": {
			ID: "student-1", Email: "asha@example.com", FullName: "Asha Rao",
			Role: models.RoleStudent, Active: true, PasswordHash: string(hash),
		},
		"inactive-1": {
			ID: "inactive-1", Email: "gone@example.com", FullName: "Gone",
			Role: models.RoleStudent, Active: false, PasswordHash: string(hash),
		},
	}}
	return NewAuthService(repo, nil, nil, authTestConfig()), repo
}

func TestAuthServiceLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "student-1", res.User.ID)
	assert.NotNil(t, repo.users["student-1"].LastLogin)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "student-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-password",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-password",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "gone@example.com",
		Password: "correct-password",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceLoginAdmin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.LoginAdmin(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestAuthServiceLoginAdminRejectsStudent(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.LoginAdmin(context.Background(), models.LoginRequest{
		Email:    "asha@example.com",
		Password: "correct-password",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "student-1", models.ChangePasswordRequest{
		OldPassword: "correct-password",
		NewPassword: "brand-new-password",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.users["student-1"].PasswordHash), []byte("brand-new-password")))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	svc, _ := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "student-1", models.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "brand-new-password",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	svc, repo := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour, Issuer: "hms-api-test"})
	_, err = other.ValidateToken(res.AccessToken)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
