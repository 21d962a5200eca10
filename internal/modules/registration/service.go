package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/scoring"
)

// Service defines the Registration lifecycle of spec §4.5: draft creation,
// editing, document attach/detach, submission, and the periodic expire pass.
type Service interface {
	CreateRegistration(ctx context.Context, userID uint, req CreateRegistrationRequest) (*RegistrationResponse, error)
	GetRegistration(ctx context.Context, id uint) (*RegistrationResponse, error)
	ListMyRegistrations(ctx context.Context, userID uint, filter RegistrationFilter) (*RegistrationListResponse, error)
	ListSchoolRegistrations(ctx context.Context, schoolID uint, filter RegistrationFilter) (*RegistrationListResponse, error)
	UpdateRegistration(ctx context.Context, id uint, req UpdateRegistrationRequest) (*RegistrationResponse, error)
	AttachDocument(ctx context.Context, registrationID uint, docType string, content []byte, fileName, mimeType string) (*DocumentResponse, error)
	DetachDocument(ctx context.Context, registrationID, documentID uint) error
	Submit(ctx context.Context, id uint) (*RegistrationResponse, error)
	// ExpireAccepted sweeps a single period's accepted registrations past
	// their reenrollment deadline into expired. Idempotent: a registration
	// already outside accepted is simply not matched again.
	ExpireAccepted(ctx context.Context, periodID uint) (int, error)
}

type service struct {
	repo  Repository
	files DocumentStore
}

func NewService(repo Repository, files DocumentStore) Service {
	return &service{repo: repo, files: files}
}

func (s *service) CreateRegistration(ctx context.Context, userID uint, req CreateRegistrationRequest) (*RegistrationResponse, error) {
	period, err := s.repo.FindPeriodByID(ctx, req.PeriodID)
	if err != nil {
		return nil, mapErr(err)
	}
	if !period.IsOpenForRegistration(time.Now()) {
		return nil, apperr.Conflict("periode tidak sedang membuka pendaftaran").WithReason("period_closed")
	}

	path, err := s.repo.FindPathByID(ctx, req.PathID)
	if err != nil {
		return nil, mapErr(err)
	}
	if path.PeriodID != period.ID {
		return nil, apperr.Validation("jalur pendaftaran tidak termasuk dalam periode ini")
	}

	existing, err := s.repo.FindByUserAndPeriodNonTerminal(ctx, userID, period.ID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("anda sudah memiliki pendaftaran aktif pada periode ini").WithReason("duplicate_active_registration")
	}

	if req.PathData != "" {
		if err := scoring.ValidatePathData(path.PathType, req.PathData); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}

	reg := &models.Registration{
		SchoolID:           period.SchoolID,
		UserID:             userID,
		PeriodID:           period.ID,
		PathID:             path.ID,
		StudentName:        strings.TrimSpace(req.StudentName),
		StudentNISN:        strings.TrimSpace(req.StudentNISN),
		StudentBirthPlace:  strings.TrimSpace(req.StudentBirthPlace),
		StudentBirthDate:   req.StudentBirthDate,
		StudentGender:      strings.TrimSpace(req.StudentGender),
		StudentAddress:     strings.TrimSpace(req.StudentAddress),
		ParentName:         strings.TrimSpace(req.ParentName),
		ParentNIK:          strings.TrimSpace(req.ParentNIK),
		ParentPhone:        strings.TrimSpace(req.ParentPhone),
		PreviousSchoolName: strings.TrimSpace(req.PreviousSchoolName),
		PreviousSchoolNPSN: strings.TrimSpace(req.PreviousSchoolNPSN),
		PathData:           req.PathData,
		Status:             models.StatusDraft,
	}
	if err := reg.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, apperr.Internal("gagal membuat pendaftaran").Wrap(err)
	}
	return toResponse(reg), nil
}

func (s *service) GetRegistration(ctx context.Context, id uint) (*RegistrationResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toResponse(reg), nil
}

func (s *service) ListMyRegistrations(ctx context.Context, userID uint, filter RegistrationFilter) (*RegistrationListResponse, error) {
	filter = normalizeFilter(filter)
	regs, total, err := s.repo.FindAllByUser(ctx, userID, filter)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	return toListResponse(regs, total, filter), nil
}

func (s *service) ListSchoolRegistrations(ctx context.Context, schoolID uint, filter RegistrationFilter) (*RegistrationListResponse, error) {
	filter = normalizeFilter(filter)
	regs, total, err := s.repo.FindAllBySchool(ctx, schoolID, filter)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	return toListResponse(regs, total, filter), nil
}

func (s *service) UpdateRegistration(ctx context.Context, id uint, req UpdateRegistrationRequest) (*RegistrationResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if reg.Status != models.StatusDraft {
		return nil, apperr.Conflict("pendaftaran hanya dapat diubah selagi berstatus draft").WithReason("not_draft")
	}

	targetPathID := reg.PathID
	if req.PathID != nil {
		path, err := s.repo.FindPathByID(ctx, *req.PathID)
		if err != nil {
			return nil, mapErr(err)
		}
		if path.PeriodID != reg.PeriodID {
			return nil, apperr.Validation("jalur baru harus berada pada periode yang sama")
		}
		targetPathID = path.ID
	}

	targetPathData := reg.PathData
	if req.PathData != nil {
		targetPathData = *req.PathData
	}
	if targetPathID != reg.PathID || req.PathData != nil {
		path, err := s.repo.FindPathByID(ctx, targetPathID)
		if err != nil {
			return nil, mapErr(err)
		}
		if err := scoring.ValidatePathData(path.PathType, targetPathData); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}
	reg.PathID = targetPathID
	reg.PathData = targetPathData

	if req.StudentName != nil {
		reg.StudentName = strings.TrimSpace(*req.StudentName)
	}
	if req.StudentNISN != nil {
		reg.StudentNISN = strings.TrimSpace(*req.StudentNISN)
	}
	if req.StudentBirthPlace != nil {
		reg.StudentBirthPlace = strings.TrimSpace(*req.StudentBirthPlace)
	}
	if req.StudentBirthDate != nil {
		reg.StudentBirthDate = *req.StudentBirthDate
	}
	if req.StudentGender != nil {
		reg.StudentGender = strings.TrimSpace(*req.StudentGender)
	}
	if req.StudentAddress != nil {
		reg.StudentAddress = strings.TrimSpace(*req.StudentAddress)
	}
	if req.ParentName != nil {
		reg.ParentName = strings.TrimSpace(*req.ParentName)
	}
	if req.ParentNIK != nil {
		reg.ParentNIK = strings.TrimSpace(*req.ParentNIK)
	}
	if req.ParentPhone != nil {
		reg.ParentPhone = strings.TrimSpace(*req.ParentPhone)
	}
	if req.PreviousSchoolName != nil {
		reg.PreviousSchoolName = strings.TrimSpace(*req.PreviousSchoolName)
	}
	if req.PreviousSchoolNPSN != nil {
		reg.PreviousSchoolNPSN = strings.TrimSpace(*req.PreviousSchoolNPSN)
	}

	if err := reg.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, apperr.Internal("gagal memperbarui pendaftaran").Wrap(err)
	}
	return toResponse(reg), nil
}

func (s *service) AttachDocument(ctx context.Context, registrationID uint, docType string, content []byte, fileName, mimeType string) (*DocumentResponse, error) {
	reg, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, mapErr(err)
	}
	if reg.Status != models.StatusDraft {
		return nil, apperr.Conflict("dokumen hanya dapat dilampirkan selagi draft").WithReason("not_draft")
	}

	dt := models.DocumentType(docType)
	if !dt.IsValid() {
		return nil, apperr.Validation("jenis dokumen tidak valid")
	}
	if len(content) == 0 || int64(len(content)) > models.MaxDocumentSizeBytes {
		return nil, apperr.Validation("ukuran berkas melebihi batas 2 MiB")
	}
	if !models.AllowedMimeTypes[mimeType] {
		return nil, apperr.Validation("tipe berkas tidak didukung")
	}

	previous, err := s.repo.FindDocumentByRegistrationAndType(ctx, registrationID, dt)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	url, err := s.files.Store(ctx, content, mimeType)
	if err != nil {
		return nil, apperr.Internal("gagal menyimpan berkas").Wrap(err)
	}

	doc := &models.Document{
		RegistrationID:     registrationID,
		DocumentType:       dt,
		FileURL:            url,
		FileName:           strings.TrimSpace(fileName),
		FileSize:           int64(len(content)),
		MimeType:           mimeType,
		VerificationStatus: models.DocVerificationPending,
	}
	if err := doc.Validate(); err != nil {
		_ = s.files.Delete(ctx, url)
		return nil, apperr.Validation(err.Error())
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		_ = s.files.Delete(ctx, url)
		return nil, apperr.Internal("gagal menyimpan data dokumen").Wrap(err)
	}

	// Attaching a second document of the same type replaces the previous one.
	if previous != nil {
		_ = s.files.Delete(ctx, previous.FileURL)
		_ = s.repo.SoftDeleteDocument(ctx, previous.ID)
	}

	return toDocumentResponse(doc), nil
}

func (s *service) DetachDocument(ctx context.Context, registrationID, documentID uint) error {
	reg, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		return mapErr(err)
	}
	if reg.Status != models.StatusDraft {
		return apperr.Conflict("dokumen hanya dapat dihapus selagi draft").WithReason("not_draft")
	}

	doc, err := s.repo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return mapErr(err)
	}
	if doc.RegistrationID != registrationID {
		return apperr.NotFound("dokumen tidak ditemukan")
	}

	if err := s.repo.SoftDeleteDocument(ctx, documentID); err != nil {
		return apperr.Internal("gagal menghapus dokumen").Wrap(err)
	}
	_ = s.files.Delete(ctx, doc.FileURL)
	return nil
}

func (s *service) Submit(ctx context.Context, id uint) (*RegistrationResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if reg.Status != models.StatusDraft {
		return nil, apperr.Conflict("pendaftaran sudah tidak berstatus draft").WithReason("not_draft")
	}

	period, err := s.repo.FindPeriodByID(ctx, reg.PeriodID)
	if err != nil {
		return nil, mapErr(err)
	}
	if !time.Now().Before(period.RegistrationEnd) {
		return nil, apperr.Conflict("masa pendaftaran periode ini telah berakhir").WithReason("registration_closed")
	}

	path, err := s.repo.FindPathByID(ctx, reg.PathID)
	if err != nil {
		return nil, mapErr(err)
	}
	docs, err := s.repo.FindDocumentsByRegistration(ctx, reg.ID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	if err := requireDocuments(path.PathType, docs); err != nil {
		return nil, err
	}

	submitted, err := s.repo.Submit(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotDraft) {
			return nil, apperr.Conflict("pendaftaran sudah tidak berstatus draft").WithReason("status_changed")
		}
		return nil, mapErr(err)
	}
	return toResponse(submitted), nil
}

func (s *service) ExpireAccepted(ctx context.Context, periodID uint) (int, error) {
	period, err := s.repo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return 0, mapErr(err)
	}
	if time.Now().Before(period.ReenrollmentDeadline) {
		return 0, nil
	}

	accepted, err := s.repo.FindByPeriodAndStatus(ctx, periodID, models.StatusAccepted)
	if err != nil {
		return 0, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	count := 0
	for i := range accepted {
		reg := &accepted[i]
		next, err := Transition(reg.Status, EventDeadlinePass)
		if err != nil {
			continue
		}
		reg.Status = next
		if err := s.repo.Update(ctx, reg); err != nil {
			return count, apperr.Internal("gagal memperbarui status pendaftaran").Wrap(err)
		}
		count++
	}
	return count, nil
}

// requireDocuments checks that every document type spec §4.5 requires for
// pathType has at least one attached document (verification status is
// irrelevant at submission time).
func requireDocuments(pathType models.PathType, docs []models.Document) error {
	present := make(map[models.DocumentType]bool, len(docs))
	for _, d := range docs {
		present[d.DocumentType] = true
	}
	for _, required := range models.RequiredDocumentTypes(pathType) {
		if !present[required] {
			return apperr.Conflict("dokumen wajib belum lengkap: " + string(required)).WithReason("missing_document")
		}
	}
	return nil
}

func normalizeFilter(filter RegistrationFilter) RegistrationFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return filter
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrRegistrationNotFound):
		return apperr.NotFound("pendaftaran tidak ditemukan")
	case errors.Is(err, ErrDocumentNotFound):
		return apperr.NotFound("dokumen tidak ditemukan")
	case errors.Is(err, ErrPeriodNotFound):
		return apperr.NotFound("periode tidak ditemukan")
	case errors.Is(err, ErrPathNotFound):
		return apperr.NotFound("jalur pendaftaran tidak ditemukan")
	default:
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}
}

func toResponse(reg *models.Registration) *RegistrationResponse {
	docs := make([]DocumentResponse, len(reg.Documents))
	for i := range reg.Documents {
		docs[i] = *toDocumentResponse(&reg.Documents[i])
	}
	return &RegistrationResponse{
		ID:                 reg.ID,
		SchoolID:           reg.SchoolID,
		UserID:             reg.UserID,
		PeriodID:           reg.PeriodID,
		PathID:             reg.PathID,
		RegistrationNumber: reg.RegistrationNumber,
		StudentName:        reg.StudentName,
		StudentNISN:        reg.StudentNISN,
		StudentBirthPlace:  reg.StudentBirthPlace,
		StudentBirthDate:   reg.StudentBirthDate,
		StudentGender:      reg.StudentGender,
		StudentAddress:     reg.StudentAddress,
		ParentName:         reg.ParentName,
		ParentNIK:          reg.ParentNIK,
		ParentPhone:        reg.ParentPhone,
		PreviousSchoolName: reg.PreviousSchoolName,
		PreviousSchoolNPSN: reg.PreviousSchoolNPSN,
		PathData:           reg.PathData,
		SelectionScore:     reg.SelectionScore,
		Ranking:            reg.Ranking,
		Status:             string(reg.Status),
		RejectionReason:    reg.RejectionReason,
		AdminNotes:         reg.AdminNotes,
		SubmittedAt:        reg.SubmittedAt,
		VerifiedAt:         reg.VerifiedAt,
		VerifiedBy:         reg.VerifiedBy,
		Documents:          docs,
		CreatedAt:          reg.CreatedAt,
		UpdatedAt:          reg.UpdatedAt,
	}
}

func toDocumentResponse(doc *models.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:                 doc.ID,
		RegistrationID:     doc.RegistrationID,
		DocumentType:       string(doc.DocumentType),
		FileURL:            doc.FileURL,
		FileName:           doc.FileName,
		FileSize:           doc.FileSize,
		MimeType:           doc.MimeType,
		VerificationStatus: string(doc.VerificationStatus),
		RejectionReason:    doc.RejectionReason,
		VerifiedBy:         doc.VerifiedBy,
		VerifiedAt:         doc.VerifiedAt,
		CreatedAt:          doc.CreatedAt,
	}
}

func toListResponse(regs []models.Registration, total int64, filter RegistrationFilter) *RegistrationListResponse {
	responses := make([]RegistrationResponse, len(regs))
	for i := range regs {
		responses[i] = *toResponse(&regs[i])
	}
	return &RegistrationListResponse{
		Registrations: responses,
		Pagination: Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: models.TotalPages(total, filter.PageSize),
		},
	}
}
