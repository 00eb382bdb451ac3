package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/security"
)

type stubUserRepo struct {
	users     map[uuid.UUID]*models.User
	createErr error
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) WithTx(_ *gorm.DB) Repository { return r }

func (r *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, _ ListParams) ([]models.User, error) {
	var rows []models.User
	for _, user := range r.users {
		rows = append(rows, *user)
	}
	return rows, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *models.User) error {
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := r.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role enums.UserRole) (int64, error) {
	var count int64
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func newUserService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(repo, config.PasswordConfig{})
	require.NoError(t, err)
	return svc
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded, "expected a coded error, got %v", err)
	assert.Equal(t, want, coded.Code())
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:       "Buyer@Acme.Example",
		Password:    "correct-horse-battery",
		CompanyName: "Acme Media",
		ContactName: "Jordan Lee",
		Role:        "buyer",
	}
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(t, repo)

	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.Equal(t, "buyer@acme.example", user.Email)
	assert.Equal(t, enums.UserStatusPending, user.Status)
	assert.Equal(t, enums.UserRoleBuyer, user.Role)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)

	ok, err := security.VerifyPassword("correct-horse-battery", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newUserService(t, newStubUserRepo())

	input := validRegisterInput()
	input.Role = "admin"
	_, err := svc.Register(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newUserService(t, newStubUserRepo())

	input := validRegisterInput()
	input.Password = "short"
	_, err := svc.Register(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	svc := newUserService(t, repo)

	_, err := svc.Register(context.Background(), validRegisterInput())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestSetStatusParsesAndPersists(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "seller@sky.example", Role: enums.UserRoleSeller, Status: enums.UserStatusPending}
	repo := newStubUserRepo(user)
	svc := newUserService(t, repo)

	updated, err := svc.SetStatus(context.Background(), user.ID, SetStatusInput{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserStatusApproved, updated.Status)

	_, err = svc.SetStatus(context.Background(), user.ID, SetStatusInput{Status: "banned"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateRejectsEmptyCompanyName(t *testing.T) {
	user := &models.User{ID: uuid.New(), CompanyName: "Acme Media"}
	svc := newUserService(t, newStubUserRepo(user))

	empty := "   "
	_, err := svc.Update(context.Background(), user.ID, UpdateUserInput{CompanyName: &empty})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteUnknownUserNotFound(t *testing.T) {
	svc := newUserService(t, newStubUserRepo())

	err := svc.Delete(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
