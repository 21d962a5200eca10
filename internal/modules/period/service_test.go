package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/period"
)

type fakeRepo struct {
	periods        map[uint]*models.Period
	paths          map[uint]*models.RegistrationPath
	accepted       map[uint]int64
	nonDraft       map[uint]int64
	nonDraftByPath map[uint]int64
	nextID         uint
	nextPathID     uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		periods:        map[uint]*models.Period{},
		paths:          map[uint]*models.RegistrationPath{},
		accepted:       map[uint]int64{},
		nonDraft:       map[uint]int64{},
		nonDraftByPath: map[uint]int64{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, p *models.Period) error {
	f.nextID++
	p.ID = f.nextID
	f.periods[p.ID] = p
	return nil
}

func (f *fakeRepo) FindAll(ctx context.Context, schoolID uint) ([]models.Period, error) {
	var out []models.Period
	for _, p := range f.periods {
		if p.SchoolID == schoolID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*models.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, period.ErrPeriodNotFound
	}
	return p, nil
}

func (f *fakeRepo) FindActiveByKey(ctx context.Context, schoolID uint, year string, level models.EducationLevel) (*models.Period, error) {
	for _, p := range f.periods {
		if p.SchoolID == schoolID && p.AcademicYear == year && p.Level == level && p.Status == models.PeriodStatusActive {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, p *models.Period) error {
	if _, ok := f.periods[p.ID]; !ok {
		return period.ErrPeriodNotFound
	}
	f.periods[p.ID] = p
	return nil
}

func (f *fakeRepo) Activate(ctx context.Context, id uint) (*models.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, period.ErrPeriodNotFound
	}
	p.Status = models.PeriodStatusActive
	return p, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.periods[id]; !ok {
		return period.ErrPeriodNotFound
	}
	delete(f.periods, id)
	return nil
}

func (f *fakeRepo) CreatePath(ctx context.Context, p *models.RegistrationPath) error {
	f.nextPathID++
	p.ID = f.nextPathID
	f.paths[p.ID] = p
	return nil
}

func (f *fakeRepo) FindPathsByPeriod(ctx context.Context, periodID uint) ([]models.RegistrationPath, error) {
	var out []models.RegistrationPath
	for _, p := range f.paths {
		if p.PeriodID == periodID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error) {
	p, ok := f.paths[id]
	if !ok {
		return nil, period.ErrPathNotFound
	}
	return p, nil
}

func (f *fakeRepo) UpdatePath(ctx context.Context, p *models.RegistrationPath) error {
	if _, ok := f.paths[p.ID]; !ok {
		return period.ErrPathNotFound
	}
	f.paths[p.ID] = p
	return nil
}

func (f *fakeRepo) DeletePath(ctx context.Context, id uint) error {
	if _, ok := f.paths[id]; !ok {
		return period.ErrPathNotFound
	}
	delete(f.paths, id)
	return nil
}

func (f *fakeRepo) CountNonDraftRegistrations(ctx context.Context, periodID uint) (int64, error) {
	return f.nonDraft[periodID], nil
}

func (f *fakeRepo) CountNonDraftByPath(ctx context.Context, pathID uint) (int64, error) {
	return f.nonDraftByPath[pathID], nil
}

func (f *fakeRepo) CountAcceptedByPath(ctx context.Context, pathID uint) (int64, error) {
	return f.accepted[pathID], nil
}

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validPeriodReq() period.CreatePeriodRequest {
	return period.CreatePeriodRequest{
		AcademicYear:         "2026/2027",
		Level:                "SMP",
		StartDate:            mustDate("2027-07-01"),
		EndDate:              mustDate("2028-06-30"),
		RegistrationStart:    mustDate("2027-01-01"),
		RegistrationEnd:      mustDate("2027-03-01"),
		ReenrollmentDeadline: mustDate("2028-07-15"),
	}
}

func mustDate(s string) time.Time {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestCreatePeriodRejectsInvalidLevel(t *testing.T) {
	svc := period.NewService(newFakeRepo())
	req := validPeriodReq()
	req.Level = "SLTA"

	_, err := svc.CreatePeriod(context.Background(), 1, req)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}

func TestCreatePeriodSucceeds(t *testing.T) {
	svc := period.NewService(newFakeRepo())
	resp, err := svc.CreatePeriod(context.Background(), 1, validPeriodReq())
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, uint(1), resp.SchoolID)
}

func TestActivatePeriod(t *testing.T) {
	repo := newFakeRepo()
	svc := period.NewService(repo)
	created, err := svc.CreatePeriod(context.Background(), 1, validPeriodReq())
	require.NoError(t, err)

	activated, err := svc.ActivatePeriod(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", activated.Status)
}

func TestUpdatePathRejectsQuotaBelowAccepted(t *testing.T) {
	repo := newFakeRepo()
	svc := period.NewService(repo)
	created, err := svc.CreatePeriod(context.Background(), 1, validPeriodReq())
	require.NoError(t, err)

	path, err := svc.CreatePath(context.Background(), created.ID, period.CreatePathRequest{
		PathType:      "zonasi",
		Name:          "Zonasi",
		Quota:         100,
		ScoringConfig: `{"max_distance_km": 5, "weight": 1}`,
	})
	require.NoError(t, err)

	repo.accepted[path.ID] = 60
	newQuota := 50
	_, err = svc.UpdatePath(context.Background(), path.ID, period.UpdatePathRequest{Quota: &newQuota})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestDeletePathRejectsWithNonDraftRegistrations(t *testing.T) {
	repo := newFakeRepo()
	svc := period.NewService(repo)
	created, err := svc.CreatePeriod(context.Background(), 1, validPeriodReq())
	require.NoError(t, err)
	path, err := svc.CreatePath(context.Background(), created.ID, period.CreatePathRequest{
		PathType:      "zonasi",
		Name:          "Zonasi",
		Quota:         100,
		ScoringConfig: `{"max_distance_km": 5, "weight": 1}`,
	})
	require.NoError(t, err)

	repo.nonDraftByPath[path.ID] = 2
	err = svc.DeletePath(context.Background(), path.ID)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestDeletePathSucceedsWithoutRegistrations(t *testing.T) {
	repo := newFakeRepo()
	svc := period.NewService(repo)
	created, err := svc.CreatePeriod(context.Background(), 1, validPeriodReq())
	require.NoError(t, err)
	path, err := svc.CreatePath(context.Background(), created.ID, period.CreatePathRequest{
		PathType:      "zonasi",
		Name:          "Zonasi",
		Quota:         100,
		ScoringConfig: `{"max_distance_km": 5, "weight": 1}`,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePath(context.Background(), path.ID))
	_, err = svc.PathSchoolID(context.Background(), path.ID)
	require.Error(t, err)
}

func TestDeletePeriodRejectsWithNonDraftRegistrations(t *testing.T) {
	repo := newFakeRepo()
	svc := period.NewService(repo)
	created, err := svc.CreatePeriod(context.Background(), 1, validPeriodReq())
	require.NoError(t, err)

	repo.nonDraft[created.ID] = 3
	err = svc.DeletePeriod(context.Background(), created.ID)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}
