package tenant

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

var (
	ErrSchoolNotFound  = errors.New("sekolah tidak ditemukan")
	ErrDuplicateSchool = errors.New("npsn atau kode sekolah sudah terdaftar")
)

// Repository defines the interface for school data operations. Schools are
// the tenant boundary itself, so this repository always operates
// cross-tenant — its routes are mounted on the super_admin-only route group
// (middleware.RoleMiddleware), which is the only authorization applied.
type Repository interface {
	Create(ctx context.Context, school *models.School) error
	FindAll(ctx context.Context, filter SchoolFilter) ([]models.School, int64, error)
	FindByID(ctx context.Context, id uint) (*models.School, error)
	FindByNPSN(ctx context.Context, npsn string) (*models.School, error)
	FindByCode(ctx context.Context, code string) (*models.School, error)
	Update(ctx context.Context, school *models.School) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new tenant repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *repository) FindAll(ctx context.Context, filter SchoolFilter) ([]models.School, int64, error) {
	var schools []models.School
	var total int64

	query := r.db.WithContext(ctx).Model(&models.School{})

	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR npsn = ? OR code ILIKE ?", "%"+filter.Search+"%", filter.Search, "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := models.Pagination{Page: filter.Page, PageSize: filter.PageSize}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	err := query.
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&schools).Error

	if err != nil {
		return nil, 0, err
	}

	return schools, total, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.School, error) {
	var school models.School
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return &school, nil
}

func (r *repository) FindByNPSN(ctx context.Context, npsn string) (*models.School, error) {
	var school models.School
	err := r.db.WithContext(ctx).Where("npsn = ?", npsn).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return &school, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.School, error) {
	var school models.School
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return &school, nil
}

func (r *repository) Update(ctx context.Context, school *models.School) error {
	result := r.db.WithContext(ctx).Save(school)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSchoolNotFound
	}
	return nil
}
