package period

import (
	"context"
	"errors"
	"strings"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/scoring"
	"github.com/ppdb/admissions-backend/internal/store"
)

// Service defines period and registration-path lifecycle operations.
type Service interface {
	CreatePeriod(ctx context.Context, schoolID uint, req CreatePeriodRequest) (*PeriodResponse, error)
	ListPeriods(ctx context.Context, schoolID uint) (*PeriodListResponse, error)
	GetPeriod(ctx context.Context, id uint) (*PeriodResponse, error)
	UpdatePeriod(ctx context.Context, id uint, req UpdatePeriodRequest) (*PeriodResponse, error)
	ActivatePeriod(ctx context.Context, id uint) (*PeriodResponse, error)
	ClosePeriod(ctx context.Context, id uint) (*PeriodResponse, error)
	DeletePeriod(ctx context.Context, id uint) error

	CreatePath(ctx context.Context, periodID uint, req CreatePathRequest) (*PathResponse, error)
	ListPaths(ctx context.Context, periodID uint) ([]PathResponse, error)
	UpdatePath(ctx context.Context, pathID uint, req UpdatePathRequest) (*PathResponse, error)
	// DeletePath fails with Conflict if the path has any non-draft
	// registration, mirroring DeletePeriod's rule at spec §4.4.
	DeletePath(ctx context.Context, pathID uint) error
	// PathSchoolID resolves the school a path belongs to, for handlers that
	// only have a path id and need it to run an authorization check.
	PathSchoolID(ctx context.Context, pathID uint) (uint, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePeriod(ctx context.Context, schoolID uint, req CreatePeriodRequest) (*PeriodResponse, error) {
	level := models.EducationLevel(req.Level)
	if !level.IsValid() {
		return nil, apperr.Validation("jenjang tidak valid")
	}

	p := &models.Period{
		SchoolID:             schoolID,
		AcademicYear:         strings.TrimSpace(req.AcademicYear),
		Level:                level,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RegistrationStart:    req.RegistrationStart,
		RegistrationEnd:      req.RegistrationEnd,
		ReenrollmentDeadline: req.ReenrollmentDeadline,
		Status:               models.PeriodStatusDraft,
	}
	if err := p.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.Conflict("periode untuk tahun ajaran dan jenjang ini sudah ada")
		}
		return nil, apperr.Internal("gagal membuat periode").Wrap(err)
	}
	return toPeriodResponse(p), nil
}

func (s *service) ListPeriods(ctx context.Context, schoolID uint) (*PeriodListResponse, error) {
	periods, err := s.repo.FindAll(ctx, schoolID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = *toPeriodResponse(&periods[i])
	}
	return &PeriodListResponse{Periods: responses, Total: len(responses)}, nil
}

func (s *service) GetPeriod(ctx context.Context, id uint) (*PeriodResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapPeriodErr(err)
	}
	return toPeriodResponse(p), nil
}

func (s *service) UpdatePeriod(ctx context.Context, id uint, req UpdatePeriodRequest) (*PeriodResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapPeriodErr(err)
	}

	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = *req.EndDate
	}
	if req.RegistrationStart != nil {
		p.RegistrationStart = *req.RegistrationStart
	}
	if req.RegistrationEnd != nil {
		p.RegistrationEnd = *req.RegistrationEnd
	}
	if req.ReenrollmentDeadline != nil {
		p.ReenrollmentDeadline = *req.ReenrollmentDeadline
	}

	if err := p.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperr.Internal("gagal memperbarui periode").Wrap(err)
	}
	return toPeriodResponse(p), nil
}

// ActivatePeriod transitions the period to active. Because (school_id,
// academic_year, level) is a database-enforced unique key, there is never
// more than one period row per key to demote — the "at most one active per
// key" invariant from spec §3 is structurally guaranteed rather than
// enforced here.
func (s *service) ActivatePeriod(ctx context.Context, id uint) (*PeriodResponse, error) {
	p, err := s.repo.Activate(ctx, id)
	if err != nil {
		return nil, mapPeriodErr(err)
	}
	return toPeriodResponse(p), nil
}

func (s *service) ClosePeriod(ctx context.Context, id uint) (*PeriodResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapPeriodErr(err)
	}
	p.Status = models.PeriodStatusClosed
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperr.Internal("gagal menutup periode").Wrap(err)
	}
	return toPeriodResponse(p), nil
}

// DeletePeriod fails with Conflict if the period has any non-draft
// registration, per spec §4.4.
func (s *service) DeletePeriod(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapPeriodErr(err)
	}
	count, err := s.repo.CountNonDraftRegistrations(ctx, id)
	if err != nil {
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}
	if count > 0 {
		return apperr.Conflict("periode memiliki pendaftaran yang sudah diproses").WithReason("has_registrations")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("gagal menghapus periode").Wrap(err)
	}
	return nil
}

func (s *service) CreatePath(ctx context.Context, periodID uint, req CreatePathRequest) (*PathResponse, error) {
	if _, err := s.repo.FindByID(ctx, periodID); err != nil {
		return nil, mapPeriodErr(err)
	}

	pathType := models.PathType(req.PathType)
	if !pathType.IsValid() {
		return nil, apperr.Validation("jenis jalur tidak valid")
	}
	if err := scoring.ValidateConfig(pathType, req.ScoringConfig); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	path := &models.RegistrationPath{
		PeriodID:      periodID,
		PathType:      pathType,
		Name:          strings.TrimSpace(req.Name),
		Quota:         req.Quota,
		Description:   strings.TrimSpace(req.Description),
		ScoringConfig: req.ScoringConfig,
	}
	if err := path.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.CreatePath(ctx, path); err != nil {
		return nil, apperr.Internal("gagal membuat jalur pendaftaran").Wrap(err)
	}
	return toPathResponse(path), nil
}

func (s *service) ListPaths(ctx context.Context, periodID uint) ([]PathResponse, error) {
	if _, err := s.repo.FindByID(ctx, periodID); err != nil {
		return nil, mapPeriodErr(err)
	}
	paths, err := s.repo.FindPathsByPeriod(ctx, periodID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	responses := make([]PathResponse, len(paths))
	for i := range paths {
		responses[i] = *toPathResponse(&paths[i])
	}
	return responses, nil
}

// UpdatePath allows quota to grow or shrink freely, refusing a shrink below
// the path's already-accepted count, per spec §4.4.
func (s *service) UpdatePath(ctx context.Context, pathID uint, req UpdatePathRequest) (*PathResponse, error) {
	path, err := s.repo.FindPathByID(ctx, pathID)
	if err != nil {
		return nil, mapPathErr(err)
	}

	if req.Name != nil {
		path.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		path.Description = strings.TrimSpace(*req.Description)
	}
	if req.ScoringConfig != nil {
		if err := scoring.ValidateConfig(path.PathType, *req.ScoringConfig); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		path.ScoringConfig = *req.ScoringConfig
	}
	if req.Quota != nil {
		if *req.Quota < path.Quota {
			accepted, err := s.repo.CountAcceptedByPath(ctx, pathID)
			if err != nil {
				return nil, apperr.Internal("kesalahan basis data").Wrap(err)
			}
			if int64(*req.Quota) < accepted {
				return nil, apperr.Conflict("kuota tidak dapat diturunkan di bawah jumlah yang sudah diterima").WithReason("quota_below_accepted")
			}
		}
		path.Quota = *req.Quota
	}

	if err := path.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.UpdatePath(ctx, path); err != nil {
		return nil, apperr.Internal("gagal memperbarui jalur pendaftaran").Wrap(err)
	}
	return toPathResponse(path), nil
}

func (s *service) DeletePath(ctx context.Context, pathID uint) error {
	if _, err := s.repo.FindPathByID(ctx, pathID); err != nil {
		return mapPathErr(err)
	}
	count, err := s.repo.CountNonDraftByPath(ctx, pathID)
	if err != nil {
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}
	if count > 0 {
		return apperr.Conflict("jalur pendaftaran memiliki pendaftaran yang sudah diproses").WithReason("has_registrations")
	}
	if err := s.repo.DeletePath(ctx, pathID); err != nil {
		return apperr.Internal("gagal menghapus jalur pendaftaran").Wrap(err)
	}
	return nil
}

func (s *service) PathSchoolID(ctx context.Context, pathID uint) (uint, error) {
	path, err := s.repo.FindPathByID(ctx, pathID)
	if err != nil {
		return 0, mapPathErr(err)
	}
	p, err := s.repo.FindByID(ctx, path.PeriodID)
	if err != nil {
		return 0, mapPeriodErr(err)
	}
	return p.SchoolID, nil
}

func mapPeriodErr(err error) error {
	if errors.Is(err, ErrPeriodNotFound) {
		return apperr.NotFound("periode tidak ditemukan")
	}
	return apperr.Internal("kesalahan basis data").Wrap(err)
}

func mapPathErr(err error) error {
	if errors.Is(err, ErrPathNotFound) {
		return apperr.NotFound("jalur pendaftaran tidak ditemukan")
	}
	return apperr.Internal("kesalahan basis data").Wrap(err)
}

func toPeriodResponse(p *models.Period) *PeriodResponse {
	return &PeriodResponse{
		ID:                   p.ID,
		SchoolID:             p.SchoolID,
		AcademicYear:         p.AcademicYear,
		Level:                string(p.Level),
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		RegistrationStart:    p.RegistrationStart,
		RegistrationEnd:      p.RegistrationEnd,
		AnnouncementDate:     p.AnnouncementDate,
		ReenrollmentDeadline: p.ReenrollmentDeadline,
		Status:               string(p.Status),
		Announced:            p.Announced,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toPathResponse(p *models.RegistrationPath) *PathResponse {
	return &PathResponse{
		ID:            p.ID,
		PeriodID:      p.PeriodID,
		PathType:      string(p.PathType),
		Name:          p.Name,
		Quota:         p.Quota,
		Description:   p.Description,
		ScoringConfig: p.ScoringConfig,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
