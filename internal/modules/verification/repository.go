package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/registration"
	"github.com/ppdb/admissions-backend/internal/store"
)

var (
	ErrRegistrationNotFound = registration.ErrRegistrationNotFound
	ErrDocumentNotFound     = registration.ErrDocumentNotFound
	// ErrNotSubmitted signals the registration had already moved out of
	// submitted by the time the row lock was acquired.
	ErrNotSubmitted = errors.New("pendaftaran tidak lagi berstatus submitted")
)

// Repository is the data layer for registration/document review. It shares
// the registrations/documents tables with the registration module but owns
// the admin-facing read/decision queries instead of the owner-facing ones.
type Repository interface {
	FindPending(ctx context.Context, schoolID uint, periodID *uint, page, pageSize int) ([]models.Registration, int64, error)
	FindRegistrationByID(ctx context.Context, id uint) (*models.Registration, error)
	// VerifyRegistration locks the registration row, checks it is still
	// submitted, applies the verify event, and records verifier + timestamp.
	VerifyRegistration(ctx context.Context, id, verifierID uint, notes string) (*models.Registration, error)
	// RejectRegistration locks the registration row, checks it is still
	// submitted, applies the reject event, and records reason + verifier.
	RejectRegistration(ctx context.Context, id, verifierID uint, reason string) (*models.Registration, error)

	FindDocumentByID(ctx context.Context, id uint) (*models.Document, error)
	UpdateDocumentVerification(ctx context.Context, id, verifierID uint, status models.DocumentVerificationStatus, notes string) (*models.Document, error)

	CountRegistrationsByStatus(ctx context.Context, periodID uint, status models.RegistrationStatus) (int64, error)
	CountDocumentsByStatus(ctx context.Context, periodID uint, status models.DocumentVerificationStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPending(ctx context.Context, schoolID uint, periodID *uint, page, pageSize int) ([]models.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("school_id = ? AND status = ?", schoolID, models.StatusSubmitted)
	if periodID != nil {
		query = query.Where("period_id = ?", *periodID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := models.Pagination{Page: page, PageSize: pageSize}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	var regs []models.Registration
	err := query.Order("submitted_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *repository) FindRegistrationByID(ctx context.Context, id uint) (*models.Registration, error) {
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

func (r *repository) VerifyRegistration(ctx context.Context, id, verifierID uint, notes string) (*models.Registration, error) {
	return r.decide(ctx, id, verifierID, registration.EventVerify, func(reg *models.Registration) {
		reg.AdminNotes = notes
	})
}

func (r *repository) RejectRegistration(ctx context.Context, id, verifierID uint, reason string) (*models.Registration, error) {
	return r.decide(ctx, id, verifierID, registration.EventReject, func(reg *models.Registration) {
		reg.RejectionReason = reason
	})
}

func (r *repository) decide(ctx context.Context, id, verifierID uint, event registration.Event, apply func(*models.Registration)) (*models.Registration, error) {
	var reg models.Registration
	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := store.ForUpdate(tx).Where("id = ?", id).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if reg.Status != models.StatusSubmitted {
			return ErrNotSubmitted
		}
		next, err := registration.Transition(reg.Status, event)
		if err != nil {
			return err
		}
		apply(&reg)
		reg.Status = next
		reg.VerifiedBy = &verifierID
		now := time.Now()
		reg.VerifiedAt = &now
		return tx.Save(&reg).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
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

func (r *repository) UpdateDocumentVerification(ctx context.Context, id, verifierID uint, status models.DocumentVerificationStatus, notes string) (*models.Document, error) {
	var doc models.Document
	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := store.ForUpdate(tx).Where("id = ?", id).First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}
		doc.VerificationStatus = status
		if status == models.DocVerificationRejected {
			doc.RejectionReason = notes
		}
		doc.VerifiedBy = &verifierID
		now := time.Now()
		doc.VerifiedAt = &now
		return tx.Save(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) CountRegistrationsByStatus(ctx context.Context, periodID uint, status models.RegistrationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("period_id = ? AND status = ?", periodID, status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountDocumentsByStatus(ctx context.Context, periodID uint, status models.DocumentVerificationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Joins("JOIN registrations ON registrations.id = documents.registration_id").
		Where("registrations.period_id = ? AND documents.verification_status = ?", periodID, status).
		Count(&count).Error
	return count, err
}
