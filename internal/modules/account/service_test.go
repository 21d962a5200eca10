package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/account"
)

type fakeRepo struct {
	byID    map[uint]*models.User
	byEmail map[string]*models.User
	nextID  uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uint]*models.User{}, byEmail: map[string]*models.User{}}
}

func (f *fakeRepo) Create(ctx context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeRepo) FindAll(ctx context.Context, filter account.UserFilter) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.byID {
		if filter.SchoolID != nil && (u.SchoolID == nil || *u.SchoolID != *filter.SchoolID) {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return account.ErrUserNotFound
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeRepo) CountActiveSchoolAdmins(ctx context.Context, schoolID uint) (int64, error) {
	var count int64
	for _, u := range f.byID {
		if u.SchoolID != nil && *u.SchoolID == schoolID && u.Role == models.RoleSchoolAdmin && u.IsActive {
			count++
		}
	}
	return count, nil
}

func validUserReq(schoolID uint) account.CreateUserRequest {
	return account.CreateUserRequest{
		SchoolID: &schoolID,
		Role:     "school_admin",
		Email:    "admin@sekolah.sch.id",
		Password: "supersecret123",
		FullName: "Admin Sekolah",
	}
}

func TestCreateUserRejectsParentRole(t *testing.T) {
	svc := account.NewService(newFakeRepo())
	req := validUserReq(1)
	req.Role = "parent"
	_, err := svc.CreateUser(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}

func TestCreateUserSucceeds(t *testing.T) {
	svc := account.NewService(newFakeRepo())
	resp, err := svc.CreateUser(context.Background(), validUserReq(1))
	require.NoError(t, err)
	assert.True(t, resp.EmailVerified)
	assert.Equal(t, "school_admin", resp.Role)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := account.NewService(repo)
	_, err := svc.CreateUser(context.Background(), validUserReq(1))
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), validUserReq(1))
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestDeleteUserRefusesLastActiveSchoolAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := account.NewService(repo)
	created, err := svc.CreateUser(context.Background(), validUserReq(1))
	require.NoError(t, err)

	err = svc.DeleteUser(context.Background(), created.ID)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
	assert.Equal(t, "last_active_school_admin", appErr.Reason)
}

func TestDeleteUserAllowsWhenAnotherAdminRemains(t *testing.T) {
	repo := newFakeRepo()
	svc := account.NewService(repo)
	first, err := svc.CreateUser(context.Background(), validUserReq(1))
	require.NoError(t, err)

	second := validUserReq(1)
	second.Email = "admin2@sekolah.sch.id"
	_, err = svc.CreateUser(context.Background(), second)
	require.NoError(t, err)

	err = svc.DeleteUser(context.Background(), first.ID)
	require.NoError(t, err)
}
