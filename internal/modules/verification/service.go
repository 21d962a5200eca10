package verification

import (
	"context"
	"errors"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Service defines the admin review operations of spec §4.6: triage the
// submitted queue, decide on a registration, and decide on an individual
// document, plus a per-period stats rollup.
type Service interface {
	ListPending(ctx context.Context, schoolID uint, periodID *uint, page, pageSize int) (*PendingListResponse, error)
	VerifyRegistration(ctx context.Context, id, verifierID uint, req VerifyRegistrationRequest) (*RegistrationDecisionResponse, error)
	RejectRegistration(ctx context.Context, id, verifierID uint, req RejectRegistrationRequest) (*RegistrationDecisionResponse, error)
	VerifyDocument(ctx context.Context, docID, verifierID uint, req VerifyDocumentRequest) (*DocumentDecisionResponse, error)
	Stats(ctx context.Context, periodID uint) (*StatsResponse, error)

	// RegistrationSchoolID resolves the owning school of a registration, so
	// handlers can run CanVerify before dispatching a decision.
	RegistrationSchoolID(ctx context.Context, id uint) (uint, error)
	// DocumentSchoolID resolves the owning school of a document's
	// registration, so handlers can run CanVerify before dispatching a
	// document decision.
	DocumentSchoolID(ctx context.Context, docID uint) (uint, error)
}

// registrationStatusesForStats and documentStatusesForStats are the closed
// enumerations Stats rolls up — kept here rather than re-derived from the
// models package so the response always reports every known bucket, even
// buckets with a zero count.
var registrationStatusesForStats = []models.RegistrationStatus{
	models.StatusDraft, models.StatusSubmitted, models.StatusVerified,
	models.StatusRejected, models.StatusAccepted, models.StatusEnrolled, models.StatusExpired,
}

var documentStatusesForStats = []models.DocumentVerificationStatus{
	models.DocVerificationPending, models.DocVerificationApproved, models.DocVerificationRejected,
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListPending(ctx context.Context, schoolID uint, periodID *uint, page, pageSize int) (*PendingListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	regs, total, err := s.repo.FindPending(ctx, schoolID, periodID, page, pageSize)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	items := make([]PendingRegistrationResponse, len(regs))
	for i := range regs {
		items[i] = toPendingResponse(&regs[i])
	}
	return &PendingListResponse{
		Registrations: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: models.TotalPages(total, pageSize),
		},
	}, nil
}

func (s *service) VerifyRegistration(ctx context.Context, id, verifierID uint, req VerifyRegistrationRequest) (*RegistrationDecisionResponse, error) {
	reg, err := s.repo.VerifyRegistration(ctx, id, verifierID, req.Notes)
	if err != nil {
		return nil, mapErr(err)
	}
	return toDecisionResponse(reg), nil
}

func (s *service) RejectRegistration(ctx context.Context, id, verifierID uint, req RejectRegistrationRequest) (*RegistrationDecisionResponse, error) {
	if len(req.Reason) < 10 {
		return nil, apperr.Validation("alasan penolakan harus terdiri dari minimal 10 karakter")
	}
	reg, err := s.repo.RejectRegistration(ctx, id, verifierID, req.Reason)
	if err != nil {
		return nil, mapErr(err)
	}
	return toDecisionResponse(reg), nil
}

func (s *service) VerifyDocument(ctx context.Context, docID, verifierID uint, req VerifyDocumentRequest) (*DocumentDecisionResponse, error) {
	var status models.DocumentVerificationStatus
	switch req.Decision {
	case "approved":
		status = models.DocVerificationApproved
	case "rejected":
		status = models.DocVerificationRejected
	default:
		return nil, apperr.Validation("decision harus berupa approved atau rejected")
	}

	doc, err := s.repo.UpdateDocumentVerification(ctx, docID, verifierID, status, req.Notes)
	if err != nil {
		return nil, mapErr(err)
	}
	return toDocumentDecisionResponse(doc), nil
}

func (s *service) Stats(ctx context.Context, periodID uint) (*StatsResponse, error) {
	byRegistration := make(map[string]int64, len(registrationStatusesForStats))
	for _, status := range registrationStatusesForStats {
		count, err := s.repo.CountRegistrationsByStatus(ctx, periodID, status)
		if err != nil {
			return nil, apperr.Internal("kesalahan basis data").Wrap(err)
		}
		byRegistration[string(status)] = count
	}

	byDocument := make(map[string]int64, len(documentStatusesForStats))
	for _, status := range documentStatusesForStats {
		count, err := s.repo.CountDocumentsByStatus(ctx, periodID, status)
		if err != nil {
			return nil, apperr.Internal("kesalahan basis data").Wrap(err)
		}
		byDocument[string(status)] = count
	}

	return &StatsResponse{
		PeriodID:             periodID,
		ByRegistrationStatus: byRegistration,
		ByDocumentStatus:     byDocument,
	}, nil
}

func (s *service) RegistrationSchoolID(ctx context.Context, id uint) (uint, error) {
	reg, err := s.repo.FindRegistrationByID(ctx, id)
	if err != nil {
		return 0, mapErr(err)
	}
	return reg.SchoolID, nil
}

func (s *service) DocumentSchoolID(ctx context.Context, docID uint) (uint, error) {
	doc, err := s.repo.FindDocumentByID(ctx, docID)
	if err != nil {
		return 0, mapErr(err)
	}
	reg, err := s.repo.FindRegistrationByID(ctx, doc.RegistrationID)
	if err != nil {
		return 0, mapErr(err)
	}
	return reg.SchoolID, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrRegistrationNotFound):
		return apperr.NotFound("pendaftaran tidak ditemukan")
	case errors.Is(err, ErrDocumentNotFound):
		return apperr.NotFound("dokumen tidak ditemukan")
	case errors.Is(err, ErrNotSubmitted):
		return apperr.Conflict("pendaftaran sudah tidak berstatus submitted").WithReason("status_changed")
	default:
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}
}

func toPendingResponse(reg *models.Registration) PendingRegistrationResponse {
	return PendingRegistrationResponse{
		ID:                 reg.ID,
		SchoolID:           reg.SchoolID,
		PeriodID:           reg.PeriodID,
		PathID:             reg.PathID,
		RegistrationNumber: reg.RegistrationNumber,
		StudentName:        reg.StudentName,
		StudentNISN:        reg.StudentNISN,
		SubmittedAt:        reg.SubmittedAt,
	}
}

func toDecisionResponse(reg *models.Registration) *RegistrationDecisionResponse {
	return &RegistrationDecisionResponse{
		ID:              reg.ID,
		Status:          string(reg.Status),
		RejectionReason: reg.RejectionReason,
		AdminNotes:      reg.AdminNotes,
		VerifiedBy:      reg.VerifiedBy,
		VerifiedAt:      reg.VerifiedAt,
	}
}

func toDocumentDecisionResponse(doc *models.Document) *DocumentDecisionResponse {
	return &DocumentDecisionResponse{
		ID:                 doc.ID,
		RegistrationID:     doc.RegistrationID,
		DocumentType:       string(doc.DocumentType),
		VerificationStatus: string(doc.VerificationStatus),
		RejectionReason:    doc.RejectionReason,
		VerifiedBy:         doc.VerifiedBy,
		VerifiedAt:         doc.VerifiedAt,
	}
}
