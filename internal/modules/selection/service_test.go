package selection_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/registration"
	"github.com/ppdb/admissions-backend/internal/modules/selection"
)

type fakeRepo struct {
	periods map[uint]*models.Period
	paths   map[uint]*models.RegistrationPath
	regs    map[uint]*models.Registration
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		periods: map[uint]*models.Period{},
		paths:   map[uint]*models.RegistrationPath{},
		regs:    map[uint]*models.Registration{},
	}
}

func (f *fakeRepo) FindPeriodByID(ctx context.Context, id uint) (*models.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, selection.ErrPeriodNotFound
	}
	return p, nil
}

func (f *fakeRepo) FindPathsByPeriod(ctx context.Context, periodID uint) ([]models.RegistrationPath, error) {
	var out []models.RegistrationPath
	for _, p := range f.paths {
		if p.PeriodID == periodID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error) {
	p, ok := f.paths[id]
	if !ok {
		return nil, selection.ErrPathNotFound
	}
	return p, nil
}

func (f *fakeRepo) CalculateScores(ctx context.Context, periodID uint, path models.RegistrationPath) (int, error) {
	scored := 0
	for _, reg := range f.regs {
		if reg.PeriodID != periodID || reg.PathID != path.ID || reg.Status != models.StatusVerified {
			continue
		}
		score := *reg.SelectionScore // test fixtures set this directly
		reg.SelectionScore = &score
		scored++
	}
	return scored, nil
}

func (f *fakeRepo) UpdateRankings(ctx context.Context, path models.RegistrationPath) (int, error) {
	var verified []*models.Registration
	for _, reg := range f.regs {
		if reg.PathID == path.ID && reg.Status == models.StatusVerified {
			verified = append(verified, reg)
		}
	}
	sort.Slice(verified, func(i, j int) bool {
		if *verified[i].SelectionScore != *verified[j].SelectionScore {
			return *verified[i].SelectionScore > *verified[j].SelectionScore
		}
		return verified[i].CreatedAt.Before(verified[j].CreatedAt)
	})
	for i, reg := range verified {
		rank := i + 1
		reg.Ranking = &rank
	}
	return len(verified), nil
}

func (f *fakeRepo) RunSelection(ctx context.Context, periodID uint, force bool) (*selection.RunSelectionResponse, error) {
	period, ok := f.periods[periodID]
	if !ok {
		return nil, selection.ErrPeriodNotFound
	}
	if period.Status != models.PeriodStatusActive {
		return nil, selection.ErrPeriodNotActive
	}

	response := &selection.RunSelectionResponse{PeriodID: periodID}
	paths, _ := f.FindPathsByPeriod(ctx, periodID)
	for _, path := range paths {
		accepted, rejected := 0, 0
		for _, reg := range f.regs {
			if reg.PathID != path.ID {
				continue
			}
			if reg.Status == models.StatusAccepted {
				accepted++
			}
			if reg.Status == models.StatusRejected && reg.RejectionReason == "quota_exceeded" {
				rejected++
			}
		}

		var pending []*models.Registration
		for _, reg := range f.regs {
			if reg.PathID == path.ID && reg.Status == models.StatusVerified && reg.Ranking != nil {
				pending = append(pending, reg)
			}
		}
		if len(pending) > 0 && period.SelectionRanAt != nil && !force {
			return nil, selection.ErrSelectionInputsChanged
		}
		sort.Slice(pending, func(i, j int) bool { return *pending[i].Ranking < *pending[j].Ranking })

		remaining := path.Quota - accepted
		if remaining < 0 {
			remaining = 0
		}
		for i, reg := range pending {
			if i < remaining {
				reg.Status = models.StatusAccepted
				accepted++
			} else {
				reg.Status = models.StatusRejected
				reg.RejectionReason = "quota_exceeded"
				rejected++
			}
		}

		remainingQuota := path.Quota - accepted
		if remainingQuota < 0 {
			remainingQuota = 0
		}
		response.Paths = append(response.Paths, selection.PathOutcome{
			PathID: path.ID, Quota: path.Quota, Accepted: accepted, Rejected: rejected, RemainingQuota: remainingQuota,
		})
		response.TotalAccepted += accepted
		response.TotalRejected += rejected
	}

	if period.SelectionRanAt == nil {
		now := time.Now()
		period.SelectionRanAt = &now
	}
	return response, nil
}

func (f *fakeRepo) Announce(ctx context.Context, periodID uint) ([]models.Registration, bool, error) {
	period, ok := f.periods[periodID]
	if !ok {
		return nil, false, selection.ErrPeriodNotFound
	}
	if period.SelectionRanAt == nil {
		return nil, false, selection.ErrSelectionNotRun
	}
	if period.AnnouncementDate != nil {
		return nil, true, nil
	}
	now := time.Now()
	period.AnnouncementDate = &now
	period.Announced = true

	var out []models.Registration
	for _, reg := range f.regs {
		if reg.PeriodID == periodID && (reg.Status == models.StatusAccepted || reg.Status == models.StatusRejected) {
			out = append(out, *reg)
		}
	}
	return out, false, nil
}

func (f *fakeRepo) FindRankingsByPath(ctx context.Context, pathID uint) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.PathID == pathID && reg.Ranking != nil {
			out = append(out, *reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].Ranking < *out[j].Ranking })
	return out, nil
}

func (f *fakeRepo) FindByRegistrationNumberAndNISN(ctx context.Context, registrationNumber, nisn string) (*models.Registration, error) {
	for _, reg := range f.regs {
		if reg.RegistrationNumber != nil && *reg.RegistrationNumber == registrationNumber {
			return reg, nil
		}
	}
	return nil, selection.ErrRegistrationNotFound
}

func regNumber(s string) *string { return &s }

func scorePtr(v float64) *float64 { return &v }

func TestRunSelectionAcceptsWithinQuotaRejectsBeyond(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive}
	repo.paths[1] = &models.RegistrationPath{ID: 1, PeriodID: 1, Quota: 1}

	r1, r2 := 1, 2
	repo.regs[1] = &models.Registration{ID: 1, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(90), Ranking: &r1}
	repo.regs[2] = &models.Registration{ID: 2, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(80), Ranking: &r2}

	svc := selection.NewService(repo, nil)
	resp, err := svc.RunSelection(context.Background(), 1, false)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalAccepted)
	assert.Equal(t, 1, resp.TotalRejected)
	assert.Equal(t, models.StatusAccepted, repo.regs[1].Status)
	assert.Equal(t, models.StatusRejected, repo.regs[2].Status)
	assert.Equal(t, "quota_exceeded", repo.regs[2].RejectionReason)
}

func TestRunSelectionRejectsWhenPeriodNotActive(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusClosed}

	svc := selection.NewService(repo, nil)
	_, err := svc.RunSelection(context.Background(), 1, false)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "period_not_active", appErr.Reason)
}

func TestRunSelectionIsIdempotentOnSecondCall(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive}
	repo.paths[1] = &models.RegistrationPath{ID: 1, PeriodID: 1, Quota: 5}
	r1 := 1
	repo.regs[1] = &models.Registration{ID: 1, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(90), Ranking: &r1}

	svc := selection.NewService(repo, nil)
	first, err := svc.RunSelection(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalAccepted)

	second, err := svc.RunSelection(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalAccepted)
	assert.Equal(t, 0, second.TotalRejected)
}

func TestRunSelectionRefusesChangedInputsWithoutForce(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive}
	repo.paths[1] = &models.RegistrationPath{ID: 1, PeriodID: 1, Quota: 1}
	r1 := 1
	repo.regs[1] = &models.Registration{ID: 1, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(90), Ranking: &r1}

	svc := selection.NewService(repo, nil)
	_, err := svc.RunSelection(context.Background(), 1, false)
	require.NoError(t, err)

	// A new verified registration appears after the first run.
	r2 := 2
	repo.regs[2] = &models.Registration{ID: 2, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(70), Ranking: &r2}

	_, err = svc.RunSelection(context.Background(), 1, false)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "selection_inputs_changed", appErr.Reason)

	_, err = svc.RunSelection(context.Background(), 1, true)
	require.NoError(t, err)
}

func TestSummaryRefusesBeforeRunSelection(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive}

	svc := selection.NewService(repo, nil)
	_, err := svc.Summary(context.Background(), 1)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "selection_not_run", appErr.Reason)
}

func TestSummaryReflectsLastRunSelection(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive}
	repo.paths[1] = &models.RegistrationPath{ID: 1, PeriodID: 1, Quota: 1}
	r1, r2 := 1, 2
	repo.regs[1] = &models.Registration{ID: 1, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(90), Ranking: &r1}
	repo.regs[2] = &models.Registration{ID: 2, PeriodID: 1, PathID: 1, Status: models.StatusVerified, SelectionScore: scorePtr(80), Ranking: &r2}

	svc := selection.NewService(repo, nil)
	_, err := svc.RunSelection(context.Background(), 1, false)
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalAccepted)
	assert.Equal(t, 1, summary.TotalRejected)
}

func TestAnnounceRefusesBeforeRunSelection(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive}

	svc := selection.NewService(repo, nil)
	_, err := svc.Announce(context.Background(), 1)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "selection_not_run", appErr.Reason)
}

func TestAnnounceIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	ranAt := time.Now()
	repo.periods[1] = &models.Period{ID: 1, Status: models.PeriodStatusActive, SelectionRanAt: &ranAt}
	repo.regs[1] = &models.Registration{ID: 1, UserID: 5, PeriodID: 1, Status: models.StatusAccepted}

	svc := selection.NewService(repo, nil)
	first, err := svc.Announce(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Notified)

	second, err := svc.Announce(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Notified)
}

func TestCheckResultRequiresAnnouncedPeriod(t *testing.T) {
	repo := newFakeRepo()
	number := "REG-1-1-00001"
	repo.regs[1] = &models.Registration{
		ID: 1, RegistrationNumber: regNumber(number), StudentNISN: "1234567890",
		Status: models.StatusAccepted,
		Period: &models.Period{AnnouncementDate: nil},
	}

	svc := selection.NewService(repo, nil)
	_, err := svc.CheckResult(context.Background(), number, "1234567890")

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckResultSucceedsAfterAnnouncement(t *testing.T) {
	repo := newFakeRepo()
	number := "REG-1-1-00001"
	announced := time.Now()
	repo.regs[1] = &models.Registration{
		ID: 1, RegistrationNumber: regNumber(number), StudentName: "Budi", StudentNISN: "1234567890",
		Status: models.StatusAccepted,
		Period: &models.Period{AnnouncementDate: &announced},
		Path:   &models.RegistrationPath{Name: "Zonasi"},
	}

	svc := selection.NewService(repo, nil)
	resp, err := svc.CheckResult(context.Background(), number, "1234567890")

	require.NoError(t, err)
	assert.Equal(t, "Budi", resp.StudentName)
	assert.Equal(t, "Zonasi", resp.PathName)
	assert.Equal(t, "accepted", resp.Status)
}

func TestCheckResultRejectsMismatchedNISN(t *testing.T) {
	repo := newFakeRepo()
	number := "REG-1-1-00001"
	announced := time.Now()
	repo.regs[1] = &models.Registration{
		ID: 1, RegistrationNumber: regNumber(number), StudentNISN: "1234567890",
		Status: models.StatusAccepted,
		Period: &models.Period{AnnouncementDate: &announced},
	}

	svc := selection.NewService(repo, nil)
	_, err := svc.CheckResult(context.Background(), number, "0000000000")

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// ensure the registration package's exported Transition stays the sole
// source of truth the selection repository would delegate to.
func TestTransitionVerifiedToAcceptedAndRejected(t *testing.T) {
	next, err := registration.Transition(models.StatusVerified, registration.EventAccept)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, next)

	next, err = registration.Transition(models.StatusVerified, registration.EventReject)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, next)
}
