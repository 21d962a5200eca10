package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

var (
	ErrUserNotFound       = errors.New("user tidak ditemukan")
	ErrInvalidCredentials = errors.New("email atau password salah")
	ErrEmailTaken         = errors.New("email sudah terdaftar")
	ErrTokenUnknown       = errors.New("token tidak dikenali")
)

// Repository defines the interface for auth data operations. Identity
// lookups happen before a tenant scope is known, so this repository always
// operates cross-tenant by construction — it never consults store.Scope.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmailVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetPasswordToken(ctx context.Context, token string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Save(ctx context.Context, user *models.User) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new auth repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("School").
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("School").
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByEmailVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email_verification_token = ?", token).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenUnknown
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByResetPasswordToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ?", token).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenUnknown
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// Save persists arbitrary field changes on a user (tokens, verification
// flags). Used by flows that already hold the full record in memory.
func (r *repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
