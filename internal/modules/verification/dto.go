package verification

import "time"

// VerifyRegistrationRequest carries the optional review notes an admin
// leaves when approving a registration.
type VerifyRegistrationRequest struct {
	Notes string `json:"notes"`
}

// RejectRegistrationRequest carries the mandatory rejection reason (>= 10
// characters per spec §4.6).
type RejectRegistrationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// VerifyDocumentRequest carries an admin's decision on a single document.
type VerifyDocumentRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Notes    string `json:"notes"`
}

// PendingRegistrationResponse is the summary shape ListPending returns —
// just enough to triage, not the full registration payload.
type PendingRegistrationResponse struct {
	ID                 uint      `json:"id"`
	SchoolID           uint      `json:"school_id"`
	PeriodID           uint      `json:"period_id"`
	PathID             uint      `json:"path_id"`
	RegistrationNumber *string   `json:"registration_number"`
	StudentName        string    `json:"student_name"`
	StudentNISN        string    `json:"student_nisn"`
	SubmittedAt        *time.Time `json:"submitted_at"`
}

// PendingListResponse is a paginated list of submitted registrations.
type PendingListResponse struct {
	Registrations []PendingRegistrationResponse `json:"registrations"`
	Pagination    Pagination                    `json:"pagination"`
}

// Pagination mirrors the shape used by the other modules.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// RegistrationDecisionResponse is the shape returned after a verify/reject
// decision on a registration.
type RegistrationDecisionResponse struct {
	ID              uint       `json:"id"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason"`
	AdminNotes      string     `json:"admin_notes"`
	VerifiedBy      *uint      `json:"verified_by"`
	VerifiedAt      *time.Time `json:"verified_at"`
}

// DocumentDecisionResponse is the shape returned after a document review.
type DocumentDecisionResponse struct {
	ID                 uint       `json:"id"`
	RegistrationID     uint       `json:"registration_id"`
	DocumentType       string     `json:"document_type"`
	VerificationStatus string     `json:"verification_status"`
	RejectionReason    string     `json:"rejection_reason"`
	VerifiedBy         *uint      `json:"verified_by"`
	VerifiedAt         *time.Time `json:"verified_at"`
}

// StatsResponse answers Stats(period_id): counts by registration status and
// by document verification status, for the given period.
type StatsResponse struct {
	PeriodID             uint             `json:"period_id"`
	ByRegistrationStatus map[string]int64 `json:"by_registration_status"`
	ByDocumentStatus     map[string]int64 `json:"by_document_status"`
}
