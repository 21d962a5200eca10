package account

import (
	"context"
	"errors"
	"strings"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/auth"
)

// Service defines user administration operations within a school: the
// Users half of spec §4.4 (Schools is tenant.Service).
type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, filter UserFilter) (*UserListResponse, error)
	GetUser(ctx context.Context, id uint) (*UserResponse, error)
	UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := models.UserRole(req.Role)
	if !role.IsValid() || role == models.RoleParent {
		return nil, apperr.Validation("role harus school_admin atau super_admin")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("email sudah terdaftar")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("gagal mengenkripsi kata sandi").Wrap(err)
	}

	user := &models.User{
		SchoolID:      req.SchoolID,
		Role:          role,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  passwordHash,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         strings.TrimSpace(req.Phone),
		NationalID:    strings.TrimSpace(req.NationalID),
		EmailVerified: true, // administratively created accounts skip self-verification
		IsActive:      true,
	}
	if err := user.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Internal("gagal membuat pengguna").Wrap(err)
	}
	return toUserResponse(user), nil
}

func (s *service) ListUsers(ctx context.Context, filter UserFilter) (*UserListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	users, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *toUserResponse(&users[i])
	}

	return &UserListResponse{
		Users: responses,
		Pagination: Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: models.TotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *service) GetUser(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toUserResponse(user), nil
}

func (s *service) UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, apperr.Validation("nama lengkap wajib diisi")
		}
		user.FullName = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.NationalID != nil {
		user.NationalID = strings.TrimSpace(*req.NationalID)
	}

	if err := user.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperr.Internal("gagal memperbarui pengguna").Wrap(err)
	}
	return toUserResponse(user), nil
}

// DeleteUser deactivates the account. A school_admin may not be deleted if
// they are the school's last active school_admin, per spec §4.4.
func (s *service) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}

	if user.Role == models.RoleSchoolAdmin && user.SchoolID != nil {
		count, err := s.repo.CountActiveSchoolAdmins(ctx, *user.SchoolID)
		if err != nil {
			return apperr.Internal("kesalahan basis data").Wrap(err)
		}
		if count <= 1 && user.IsActive {
			return apperr.Conflict("tidak dapat menghapus satu-satunya admin sekolah yang aktif").WithReason("last_active_school_admin")
		}
	}

	user.Deactivate()
	if err := s.repo.Update(ctx, user); err != nil {
		return apperr.Internal("gagal menonaktifkan pengguna").Wrap(err)
	}
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return apperr.NotFound("pengguna tidak ditemukan")
	}
	return apperr.Internal("kesalahan basis data").Wrap(err)
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		SchoolID:      user.SchoolID,
		Role:          string(user.Role),
		Email:         user.Email,
		FullName:      user.FullName,
		Phone:         user.Phone,
		NationalID:    user.NationalID,
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
}
