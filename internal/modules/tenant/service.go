package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Service defines the interface for school (tenant) catalog operations.
type Service interface {
	CreateSchool(ctx context.Context, req CreateSchoolRequest) (*SchoolResponse, error)
	ListSchools(ctx context.Context, filter SchoolFilter) (*SchoolListResponse, error)
	GetSchool(ctx context.Context, id uint) (*SchoolResponse, error)
	UpdateSchool(ctx context.Context, id uint, req UpdateSchoolRequest) (*SchoolResponse, error)
	ActivateSchool(ctx context.Context, id uint) (*StatusChangeResponse, error)
	DeactivateSchool(ctx context.Context, id uint) (*StatusChangeResponse, error)
	SuspendSchool(ctx context.Context, id uint) (*StatusChangeResponse, error)
	// SoftDeleteSchool sets status to inactive, per spec §4.4 ("soft delete
	// sets status to inactive and prevents new non-read operations by its
	// users"). There is no hard delete of a tenant.
	SoftDeleteSchool(ctx context.Context, id uint) (*StatusChangeResponse, error)
}

type service struct {
	repo Repository
}

// NewService creates a new tenant (school catalog) service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateSchool(ctx context.Context, req CreateSchoolRequest) (*SchoolResponse, error) {
	name := strings.TrimSpace(req.Name)
	npsn := strings.TrimSpace(req.NPSN)
	code := strings.TrimSpace(req.Code)

	if name == "" {
		return nil, apperr.Validation("nama sekolah wajib diisi")
	}

	if _, err := s.repo.FindByNPSN(ctx, npsn); err == nil {
		return nil, apperr.Conflict("npsn sudah terdaftar")
	} else if !errors.Is(err, ErrSchoolNotFound) {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, apperr.Conflict("kode sekolah sudah terdaftar")
	} else if !errors.Is(err, ErrSchoolNotFound) {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	school := &models.School{
		Name:     name,
		NPSN:     npsn,
		Code:     code,
		Address:  strings.TrimSpace(req.Address),
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		Timezone: "Asia/Jakarta",
		Status:   models.SchoolStatusActive,
	}
	if err := school.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := s.repo.Create(ctx, school); err != nil {
		return nil, apperr.Internal("gagal membuat sekolah").Wrap(err)
	}

	return toSchoolResponse(school), nil
}

func (s *service) ListSchools(ctx context.Context, filter SchoolFilter) (*SchoolListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	schools, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	responses := make([]SchoolResponse, len(schools))
	for i := range schools {
		responses[i] = *toSchoolResponse(&schools[i])
	}

	return &SchoolListResponse{
		Schools: responses,
		Pagination: PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: models.TotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *service) GetSchool(ctx context.Context, id uint) (*SchoolResponse, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toSchoolResponse(school), nil
}

func (s *service) UpdateSchool(ctx context.Context, id uint, req UpdateSchoolRequest) (*SchoolResponse, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("nama sekolah wajib diisi")
		}
		school.Name = name
	}
	if req.Address != nil {
		school.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		school.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		school.Email = strings.TrimSpace(*req.Email)
	}

	if err := school.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.Update(ctx, school); err != nil {
		return nil, apperr.Internal("gagal memperbarui sekolah").Wrap(err)
	}

	return toSchoolResponse(school), nil
}

func (s *service) ActivateSchool(ctx context.Context, id uint) (*StatusChangeResponse, error) {
	return s.changeStatus(ctx, id, (*models.School).Activate)
}

func (s *service) DeactivateSchool(ctx context.Context, id uint) (*StatusChangeResponse, error) {
	return s.changeStatus(ctx, id, (*models.School).Deactivate)
}

func (s *service) SuspendSchool(ctx context.Context, id uint) (*StatusChangeResponse, error) {
	return s.changeStatus(ctx, id, (*models.School).Suspend)
}

func (s *service) SoftDeleteSchool(ctx context.Context, id uint) (*StatusChangeResponse, error) {
	return s.changeStatus(ctx, id, (*models.School).Deactivate)
}

func (s *service) changeStatus(ctx context.Context, id uint, apply func(*models.School)) (*StatusChangeResponse, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	apply(school)
	if err := s.repo.Update(ctx, school); err != nil {
		return nil, apperr.Internal("gagal memperbarui status sekolah").Wrap(err)
	}

	return &StatusChangeResponse{ID: school.ID, Name: school.Name, Status: string(school.Status)}, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, ErrSchoolNotFound) {
		return apperr.NotFound("sekolah tidak ditemukan")
	}
	return apperr.Internal("kesalahan basis data").Wrap(err)
}

func toSchoolResponse(school *models.School) *SchoolResponse {
	return &SchoolResponse{
		ID:        school.ID,
		Name:      school.Name,
		NPSN:      school.NPSN,
		Code:      school.Code,
		Address:   school.Address,
		Phone:     school.Phone,
		Email:     school.Email,
		Status:    string(school.Status),
		CreatedAt: school.CreatedAt,
		UpdatedAt: school.UpdatedAt,
	}
}
