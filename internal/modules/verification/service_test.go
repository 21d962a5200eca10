package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/registration"
	"github.com/ppdb/admissions-backend/internal/modules/verification"
)

type fakeRepo struct {
	regs map[uint]*models.Registration
	docs map[uint]*models.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{regs: map[uint]*models.Registration{}, docs: map[uint]*models.Document{}}
}

func (f *fakeRepo) FindPending(ctx context.Context, schoolID uint, periodID *uint, page, pageSize int) ([]models.Registration, int64, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.SchoolID == schoolID && reg.Status == models.StatusSubmitted {
			if periodID != nil && reg.PeriodID != *periodID {
				continue
			}
			out = append(out, *reg)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindRegistrationByID(ctx context.Context, id uint) (*models.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, verification.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRepo) VerifyRegistration(ctx context.Context, id, verifierID uint, notes string) (*models.Registration, error) {
	return f.decide(id, verifierID, registration.EventVerify, func(reg *models.Registration) {
		reg.AdminNotes = notes
	})
}

func (f *fakeRepo) RejectRegistration(ctx context.Context, id, verifierID uint, reason string) (*models.Registration, error) {
	return f.decide(id, verifierID, registration.EventReject, func(reg *models.Registration) {
		reg.RejectionReason = reason
	})
}

func (f *fakeRepo) decide(id, verifierID uint, event registration.Event, apply func(*models.Registration)) (*models.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, verification.ErrRegistrationNotFound
	}
	if reg.Status != models.StatusSubmitted {
		return nil, verification.ErrNotSubmitted
	}
	next, err := registration.Transition(reg.Status, event)
	if err != nil {
		return nil, err
	}
	apply(reg)
	reg.Status = next
	reg.VerifiedBy = &verifierID
	now := time.Now()
	reg.VerifiedAt = &now
	return reg, nil
}

func (f *fakeRepo) FindDocumentByID(ctx context.Context, id uint) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, verification.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeRepo) UpdateDocumentVerification(ctx context.Context, id, verifierID uint, status models.DocumentVerificationStatus, notes string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, verification.ErrDocumentNotFound
	}
	doc.VerificationStatus = status
	if status == models.DocVerificationRejected {
		doc.RejectionReason = notes
	}
	doc.VerifiedBy = &verifierID
	now := time.Now()
	doc.VerifiedAt = &now
	return doc, nil
}

func (f *fakeRepo) CountRegistrationsByStatus(ctx context.Context, periodID uint, status models.RegistrationStatus) (int64, error) {
	var count int64
	for _, reg := range f.regs {
		if reg.PeriodID == periodID && reg.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountDocumentsByStatus(ctx context.Context, periodID uint, status models.DocumentVerificationStatus) (int64, error) {
	var count int64
	for _, doc := range f.docs {
		reg, ok := f.regs[doc.RegistrationID]
		if ok && reg.PeriodID == periodID && doc.VerificationStatus == status {
			count++
		}
	}
	return count, nil
}

func TestVerifyRegistrationSucceeds(t *testing.T) {
	repo := newFakeRepo()
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, PeriodID: 1, Status: models.StatusSubmitted}
	svc := verification.NewService(repo)

	resp, err := svc.VerifyRegistration(context.Background(), 1, 99, verification.VerifyRegistrationRequest{Notes: "lengkap"})

	require.NoError(t, err)
	assert.Equal(t, "verified", resp.Status)
	assert.Equal(t, uint(99), *resp.VerifiedBy)
}

func TestVerifyRegistrationRejectsWhenNotSubmitted(t *testing.T) {
	repo := newFakeRepo()
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, PeriodID: 1, Status: models.StatusDraft}
	svc := verification.NewService(repo)

	_, err := svc.VerifyRegistration(context.Background(), 1, 99, verification.VerifyRegistrationRequest{})

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "status_changed", appErr.Reason)
}

func TestRejectRegistrationRequiresReasonLength(t *testing.T) {
	repo := newFakeRepo()
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, PeriodID: 1, Status: models.StatusSubmitted}
	svc := verification.NewService(repo)

	_, err := svc.RejectRegistration(context.Background(), 1, 99, verification.RejectRegistrationRequest{Reason: "pendek"})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRejectRegistrationSucceeds(t *testing.T) {
	repo := newFakeRepo()
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, PeriodID: 1, Status: models.StatusSubmitted}
	svc := verification.NewService(repo)

	resp, err := svc.RejectRegistration(context.Background(), 1, 99, verification.RejectRegistrationRequest{Reason: "dokumen tidak lengkap dan tidak sesuai"})

	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, "dokumen tidak lengkap dan tidak sesuai", resp.RejectionReason)
}

func TestVerifyDocumentRejectsInvalidDecision(t *testing.T) {
	repo := newFakeRepo()
	repo.docs[1] = &models.Document{ID: 1, RegistrationID: 1, VerificationStatus: models.DocVerificationPending}
	svc := verification.NewService(repo)

	_, err := svc.VerifyDocument(context.Background(), 1, 99, verification.VerifyDocumentRequest{Decision: "maybe"})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestVerifyDocumentApproves(t *testing.T) {
	repo := newFakeRepo()
	repo.docs[1] = &models.Document{ID: 1, RegistrationID: 1, DocumentType: models.DocumentKartuKeluarga, VerificationStatus: models.DocVerificationPending}
	svc := verification.NewService(repo)

	resp, err := svc.VerifyDocument(context.Background(), 1, 99, verification.VerifyDocumentRequest{Decision: "approved"})

	require.NoError(t, err)
	assert.Equal(t, "approved", resp.VerificationStatus)
}

func TestStatsCountsByStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, PeriodID: 1, Status: models.StatusSubmitted}
	repo.regs[2] = &models.Registration{ID: 2, SchoolID: 10, PeriodID: 1, Status: models.StatusVerified}
	repo.docs[1] = &models.Document{ID: 1, RegistrationID: 1, VerificationStatus: models.DocVerificationPending}
	svc := verification.NewService(repo)

	resp, err := svc.Stats(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ByRegistrationStatus["submitted"])
	assert.Equal(t, int64(1), resp.ByRegistrationStatus["verified"])
	assert.Equal(t, int64(1), resp.ByDocumentStatus["pending"])
}
