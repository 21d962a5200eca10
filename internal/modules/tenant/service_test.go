package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/tenant"
)

type fakeRepo struct {
	byID   map[uint]*models.School
	byNPSN map[string]*models.School
	byCode map[string]*models.School
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:   map[uint]*models.School{},
		byNPSN: map[string]*models.School{},
		byCode: map[string]*models.School{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, school *models.School) error {
	f.nextID++
	school.ID = f.nextID
	f.byID[school.ID] = school
	f.byNPSN[school.NPSN] = school
	f.byCode[school.Code] = school
	return nil
}

func (f *fakeRepo) FindAll(ctx context.Context, filter tenant.SchoolFilter) ([]models.School, int64, error) {
	var out []models.School
	for _, s := range f.byID {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*models.School, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, tenant.ErrSchoolNotFound
	}
	return s, nil
}

func (f *fakeRepo) FindByNPSN(ctx context.Context, npsn string) (*models.School, error) {
	s, ok := f.byNPSN[npsn]
	if !ok {
		return nil, tenant.ErrSchoolNotFound
	}
	return s, nil
}

func (f *fakeRepo) FindByCode(ctx context.Context, code string) (*models.School, error) {
	s, ok := f.byCode[code]
	if !ok {
		return nil, tenant.ErrSchoolNotFound
	}
	return s, nil
}

func (f *fakeRepo) Update(ctx context.Context, school *models.School) error {
	if _, ok := f.byID[school.ID]; !ok {
		return tenant.ErrSchoolNotFound
	}
	f.byID[school.ID] = school
	return nil
}

func validSchoolReq() tenant.CreateSchoolRequest {
	return tenant.CreateSchoolRequest{
		Name: "SMA Negeri 1",
		NPSN: "12345678",
		Code: "SMAN1",
	}
}

func TestCreateSchoolSucceeds(t *testing.T) {
	svc := tenant.NewService(newFakeRepo())
	resp, err := svc.CreateSchool(context.Background(), validSchoolReq())
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "12345678", resp.NPSN)
}

func TestCreateSchoolRejectsDuplicateNPSN(t *testing.T) {
	repo := newFakeRepo()
	svc := tenant.NewService(repo)
	_, err := svc.CreateSchool(context.Background(), validSchoolReq())
	require.NoError(t, err)

	req2 := validSchoolReq()
	req2.Code = "SMAN2"
	_, err = svc.CreateSchool(context.Background(), req2)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestCreateSchoolRejectsInvalidNPSN(t *testing.T) {
	svc := tenant.NewService(newFakeRepo())
	req := validSchoolReq()
	req.NPSN = "123"
	_, err := svc.CreateSchool(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}

func TestUpdateSchoolLeavesNPSNAndCodeImmutable(t *testing.T) {
	repo := newFakeRepo()
	svc := tenant.NewService(repo)
	created, err := svc.CreateSchool(context.Background(), validSchoolReq())
	require.NoError(t, err)

	newName := "SMA Negeri 1 Jakarta"
	updated, err := svc.UpdateSchool(context.Background(), created.ID, tenant.UpdateSchoolRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, created.NPSN, updated.NPSN)
	assert.Equal(t, created.Code, updated.Code)
}

func TestSuspendSchool(t *testing.T) {
	repo := newFakeRepo()
	svc := tenant.NewService(repo)
	created, err := svc.CreateSchool(context.Background(), validSchoolReq())
	require.NoError(t, err)

	status, err := svc.SuspendSchool(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", status.Status)
}

func TestGetSchoolNotFound(t *testing.T) {
	svc := tenant.NewService(newFakeRepo())
	_, err := svc.GetSchool(context.Background(), 999)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}
