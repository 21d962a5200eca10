package period

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/store"
)

var (
	ErrPeriodNotFound = errors.New("periode tidak ditemukan")
	ErrPathNotFound   = errors.New("jalur pendaftaran tidak ditemukan")
)

// Repository is the data layer for periods and their registration paths.
// Period-row calls go through store.DB (or store.ScopedTx inside a
// transaction), so results are automatically scoped to the caller's school
// unless they're a super_admin. Path and registration-count calls use the
// unscoped handle and filter only by period_id, path_id or id.
type Repository interface {
	Create(ctx context.Context, period *models.Period) error
	FindAll(ctx context.Context, schoolID uint) ([]models.Period, error)
	FindByID(ctx context.Context, id uint) (*models.Period, error)
	FindActiveByKey(ctx context.Context, schoolID uint, academicYear string, level models.EducationLevel) (*models.Period, error)
	Update(ctx context.Context, period *models.Period) error
	// Activate transitions the period to active inside a row-locked
	// transaction, serializing concurrent activation attempts on the same row.
	Activate(ctx context.Context, id uint) (*models.Period, error)
	// Delete removes a period and its paths. Callers must have already
	// verified there are no non-draft registrations referencing it.
	Delete(ctx context.Context, id uint) error

	CreatePath(ctx context.Context, path *models.RegistrationPath) error
	FindPathsByPeriod(ctx context.Context, periodID uint) ([]models.RegistrationPath, error)
	FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error)
	UpdatePath(ctx context.Context, path *models.RegistrationPath) error
	// DeletePath removes a registration path. Callers must have already
	// verified there are no non-draft registrations referencing it.
	DeletePath(ctx context.Context, id uint) error
	CountNonDraftRegistrations(ctx context.Context, periodID uint) (int64, error)
	CountNonDraftByPath(ctx context.Context, pathID uint) (int64, error)
	CountAcceptedByPath(ctx context.Context, pathID uint) (int64, error)

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *models.Period) error {
	return store.DB(ctx, r.db).Create(p).Error
}

func (r *repository) FindAll(ctx context.Context, schoolID uint) ([]models.Period, error) {
	var periods []models.Period
	err := store.DB(ctx, r.db).Where("school_id = ?", schoolID).
		Order("academic_year DESC, level ASC").Find(&periods).Error
	return periods, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Period, error) {
	var p models.Period
	err := store.DB(ctx, r.db).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindActiveByKey(ctx context.Context, schoolID uint, academicYear string, level models.EducationLevel) (*models.Period, error) {
	var p models.Period
	err := store.DB(ctx, r.db).
		Where("school_id = ? AND academic_year = ? AND level = ? AND status = ?", schoolID, academicYear, level, models.PeriodStatusActive).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *models.Period) error {
	result := store.DB(ctx, r.db).Save(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (r *repository) Activate(ctx context.Context, id uint) (*models.Period, error) {
	var p models.Period
	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		err := store.ForUpdate(store.ScopedTx(ctx, tx)).Where("id = ?", id).First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPeriodNotFound
			}
			return err
		}
		p.Status = models.PeriodStatusActive
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("period_id = ?", id).Delete(&models.RegistrationPath{}).Error; err != nil {
			return err
		}
		result := store.ScopedTx(ctx, tx).Where("id = ?", id).Delete(&models.Period{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPeriodNotFound
		}
		return nil
	})
}

func (r *repository) CreatePath(ctx context.Context, path *models.RegistrationPath) error {
	return r.db.WithContext(ctx).Create(path).Error
}

func (r *repository) FindPathsByPeriod(ctx context.Context, periodID uint) ([]models.RegistrationPath, error) {
	var paths []models.RegistrationPath
	err := r.db.WithContext(ctx).Where("period_id = ?", periodID).Order("path_type ASC").Find(&paths).Error
	return paths, err
}

func (r *repository) FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error) {
	var path models.RegistrationPath
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&path).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPathNotFound
		}
		return nil, err
	}
	return &path, nil
}

func (r *repository) UpdatePath(ctx context.Context, path *models.RegistrationPath) error {
	result := r.db.WithContext(ctx).Save(path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPathNotFound
	}
	return nil
}

func (r *repository) DeletePath(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RegistrationPath{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPathNotFound
	}
	return nil
}

func (r *repository) CountNonDraftRegistrations(ctx context.Context, periodID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("period_id = ? AND status <> ?", periodID, models.StatusDraft).
		Count(&count).Error
	return count, err
}

func (r *repository) CountNonDraftByPath(ctx context.Context, pathID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("path_id = ? AND status <> ?", pathID, models.StatusDraft).
		Count(&count).Error
	return count, err
}

func (r *repository) CountAcceptedByPath(ctx context.Context, pathID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("path_id = ? AND status IN ?", pathID, []models.RegistrationStatus{models.StatusAccepted, models.StatusEnrolled}).
		Count(&count).Error
	return count, err
}

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return store.WithTransaction(ctx, r.db, fn)
}
