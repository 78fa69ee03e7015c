package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

type fakeUserRepo struct {
	users       map[string]*models.User
	createErr   error
	findByIDErr error
	updateErr   error
	deleteErr   error
	listErr     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var users []models.User
	for _, user := range f.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		users = append(users, *user)
	}
	return users, len(users), nil
}

func TestUserServiceCreate(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := NewUserService(repo, mailer, nil, nil)

	user, warning, err := svc.Create(context.Background(), models.CreateUserRequest{
		Email:    "warden@example.com",
		FullName: "Head Warden",
		Role:     models.RoleWarden,
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.Active)
	assert.NotEmpty(t, user.PasswordHash)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "warden@example.com", mailer.sent[0])
}

func TestUserServiceCreateRejectsAdminRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeMailer{}, nil, nil)

	_, _, err := svc.Create(context.Background(), models.CreateUserRequest{
		Email:    "root@example.com",
		FullName: "Root",
		Role:     models.RoleAdmin,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeMailer{}, nil, nil)

	req := models.CreateUserRequest{Email: "dup@example.com", FullName: "Dup", Role: models.RoleStudent}
	_, _, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUserServiceCreateMailFailureIsWarning(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeMailer{failWith: errors.New("smtp down")}, nil, nil)

	user, warning, err := svc.Create(context.Background(), models.CreateUserRequest{
		Email:    "warden@example.com",
		FullName: "Head Warden",
		Role:     models.RoleWarden,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
	// The account exists despite the mail failure.
	_, err = svc.Get(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestUserServiceProvisionStudentCreatesAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeMailer{}, nil, nil)

	student, password, err := svc.ProvisionStudent(context.Background(), "Asha Rao", "asha@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, password)
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)))
}

func TestUserServiceProvisionStudentReturnsExisting(t *testing.T) {
	repo := newFakeUserRepo()
	existing := &models.User{Email: "asha@example.com", FullName: "Asha Rao", Role: models.RoleStudent, Active: true}
	require.NoError(t, repo.Create(context.Background(), existing))

	svc := NewUserService(repo, &fakeMailer{}, nil, nil)
	student, password, err := svc.ProvisionStudent(context.Background(), "Asha Rao", "asha@example.com")
	require.NoError(t, err)
	assert.Empty(t, password)
	assert.Equal(t, existing.ID, student.ID)
}

func TestUserServiceProvisionStudentRejectsNonStudentEmail(t *testing.T) {
	repo := newFakeUserRepo()
	require.NoError(t, repo.Create(context.Background(), &models.User{
		Email: "warden@example.com", FullName: "Head Warden", Role: models.RoleWarden, Active: true,
	}))

	svc := NewUserService(repo, &fakeMailer{}, nil, nil)
	_, _, err := svc.ProvisionStudent(context.Background(), "Someone", "warden@example.com")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUserServiceUpdatePartial(t *testing.T) {
	repo := newFakeUserRepo()
	user := &models.User{Email: "asha@example.com", FullName: "Asha Rao", Role: models.RoleStudent, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))

	svc := NewUserService(repo, &fakeMailer{}, nil, nil)
	name := "Asha R."
	inactive := false
	updated, err := svc.Update(context.Background(), user.ID, models.UpdateUserRequest{
		FullName: &name,
		Active:   &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", updated.FullName)
	assert.False(t, updated.Active)
	assert.Equal(t, models.RoleStudent, updated.Role)
}

func TestUserServiceDeleteMissing(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeMailer{}, nil, nil)

	err := svc.Delete(context.Background(), uuid.NewString())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUserServiceListDefaultsPagination(t *testing.T) {
	repo := newFakeUserRepo()
	require.NoError(t, repo.Create(context.Background(), &models.User{
		Email: "asha@example.com", FullName: "Asha Rao", Role: models.RoleStudent, Active: true,
	}))

	svc := NewUserService(repo, &fakeMailer{}, nil, nil)
	users, page, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)
}
