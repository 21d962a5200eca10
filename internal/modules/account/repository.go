package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/store"
)

var ErrUserNotFound = errors.New("pengguna tidak ditemukan")

// Repository is the user data layer for account administration. Unlike
// auth.Repository (which looks up credentials before any tenant is known),
// this repository is reached only after AuthMiddleware has bound a scope —
// every call here goes through store.DB and is filtered to the caller's
// school automatically. A super_admin's scope carries no filter, so for
// them every call, FindByID included, reaches users across schools.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	CountActiveSchoolAdmins(ctx context.Context, schoolID uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return store.DB(ctx, r.db).Create(user).Error
}

func (r *repository) FindAll(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := store.DB(ctx, r.db).Model(&models.User{})
	if filter.SchoolID != nil {
		query = query.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := models.Pagination{Page: filter.Page, PageSize: filter.PageSize}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := store.DB(ctx, r.db).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := store.DB(ctx, r.db).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *models.User) error {
	result := store.DB(ctx, r.db).Save(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) CountActiveSchoolAdmins(ctx context.Context, schoolID uint) (int64, error) {
	var count int64
	err := store.DB(ctx, r.db).Model(&models.User{}).
		Where("school_id = ? AND role = ? AND is_active = ?", schoolID, models.RoleSchoolAdmin, true).
		Count(&count).Error
	return count, err
}
