package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/store"
)

var (
	ErrRegistrationNotFound = errors.New("pendaftaran tidak ditemukan")
	ErrDocumentNotFound     = errors.New("dokumen tidak ditemukan")
	ErrPeriodNotFound       = errors.New("periode tidak ditemukan")
	ErrPathNotFound         = errors.New("jalur pendaftaran tidak ditemukan")
	// ErrNotDraft signals a lost race: the row-locked status check inside
	// Submit found the registration already past draft by the time the lock
	// was acquired.
	ErrNotDraft = errors.New("pendaftaran sudah tidak berstatus draft")
)

// Repository is the data layer for registrations and their documents.
// Registration rows are owned by a parent (user_id), not exclusively by a
// single tenant session the way Catalog entities are — a parent's own
// store.Scope carries no usable school_id — so, unlike account/period,
// this repository does not route through store.DB. Ownership filtering is
// done explicitly by user_id or school_id per method, and the handler
// layer applies policy decisions (policy.AccessPolicy) after a
// cross-tenant fetch.
type Repository interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id uint) (*models.Registration, error)
	FindByUserAndPeriodNonTerminal(ctx context.Context, userID, periodID uint) (*models.Registration, error)
	FindAllByUser(ctx context.Context, userID uint, filter RegistrationFilter) ([]models.Registration, int64, error)
	FindAllBySchool(ctx context.Context, schoolID uint, filter RegistrationFilter) ([]models.Registration, int64, error)
	FindByPeriodAndStatus(ctx context.Context, periodID uint, status models.RegistrationStatus) ([]models.Registration, error)
	Update(ctx context.Context, reg *models.Registration) error
	// Submit performs the draft->submitted transition inside a single
	// transaction: locks the registration row, re-checks status == draft,
	// locks the owning period row, mints the registration_number from a
	// per-period submission counter, and persists the new state. Returns
	// ErrNotDraft if a concurrent submit won the race.
	Submit(ctx context.Context, id uint) (*models.Registration, error)

	FindPeriodByID(ctx context.Context, id uint) (*models.Period, error)
	FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	FindDocumentByID(ctx context.Context, id uint) (*models.Document, error)
	FindDocumentsByRegistration(ctx context.Context, registrationID uint) ([]models.Document, error)
	FindDocumentByRegistrationAndType(ctx context.Context, registrationID uint, docType models.DocumentType) (*models.Document, error)
	SoftDeleteDocument(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reg *models.Registration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).Preload("Documents").Where("id = ?", id).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *repository) FindByUserAndPeriodNonTerminal(ctx context.Context, userID, periodID uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_id = ? AND status NOT IN ?", userID, periodID,
			[]models.RegistrationStatus{models.StatusRejected, models.StatusEnrolled, models.StatusExpired}).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *repository) FindAllByUser(ctx context.Context, userID uint, filter RegistrationFilter) ([]models.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{}).Where("user_id = ?", userID)
	return r.paginate(query, filter)
}

func (r *repository) FindAllBySchool(ctx context.Context, schoolID uint, filter RegistrationFilter) ([]models.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{}).Where("school_id = ?", schoolID)
	return r.paginate(query, filter)
}

func (r *repository) paginate(query *gorm.DB, filter RegistrationFilter) ([]models.Registration, int64, error) {
	if filter.PeriodID != nil {
		query = query.Where("period_id = ?", *filter.PeriodID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := models.Pagination{Page: filter.Page, PageSize: filter.PageSize}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	var regs []models.Registration
	err := query.Order("created_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *repository) FindByPeriodAndStatus(ctx context.Context, periodID uint, status models.RegistrationStatus) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Where("period_id = ? AND status = ?", periodID, status).
		Find(&regs).Error
	return regs, err
}

func (r *repository) Update(ctx context.Context, reg *models.Registration) error {
	result := r.db.WithContext(ctx).Save(reg)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *repository) Submit(ctx context.Context, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := store.ForUpdate(tx).Where("id = ?", id).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if reg.Status != models.StatusDraft {
			return ErrNotDraft
		}

		var period models.Period
		if err := store.ForUpdate(tx).Where("id = ?", reg.PeriodID).First(&period).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPeriodNotFound
			}
			return err
		}

		var submittedCount int64
		if err := tx.Model(&models.Registration{}).
			Where("period_id = ? AND registration_number IS NOT NULL", reg.PeriodID).
			Count(&submittedCount).Error; err != nil {
			return err
		}
		seq := submittedCount + 1
		number := fmt.Sprintf("REG-%d-%d-%05d", period.SchoolID, period.ID, seq)

		next, err := Transition(reg.Status, EventSubmit)
		if err != nil {
			return err
		}

		reg.RegistrationNumber = &number
		reg.Status = next
		now := time.Now()
		reg.SubmittedAt = &now

		return tx.Save(&reg).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *repository) FindPeriodByID(ctx context.Context, id uint) (*models.Period, error) {
	var p models.Period
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error) {
	var p models.RegistrationPath
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPathNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) FindDocumentByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repository) FindDocumentsByRegistration(ctx context.Context, registrationID uint) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).Find(&docs).Error
	return docs, err
}

func (r *repository) FindDocumentByRegistrationAndType(ctx context.Context, registrationID uint, docType models.DocumentType) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("registration_id = ? AND document_type = ?", registrationID, docType).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repository) SoftDeleteDocument(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
