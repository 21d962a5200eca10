package registration

import "time"

// CreateRegistrationRequest is the payload a parent submits to start a draft
// registration.
type CreateRegistrationRequest struct {
	PeriodID uint   `json:"period_id" validate:"required"`
	PathID   uint   `json:"path_id" validate:"required"`
	PathData string `json:"path_data"`

	StudentName       string    `json:"student_name" validate:"required"`
	StudentNISN       string    `json:"student_nisn" validate:"required,len=10"`
	StudentBirthPlace string    `json:"student_birth_place"`
	StudentBirthDate  time.Time `json:"student_birth_date"`
	StudentGender     string    `json:"student_gender"`
	StudentAddress    string    `json:"student_address"`

	ParentName  string `json:"parent_name" validate:"required"`
	ParentNIK   string `json:"parent_nik"`
	ParentPhone string `json:"parent_phone"`

	PreviousSchoolName string `json:"previous_school_name"`
	PreviousSchoolNPSN string `json:"previous_school_npsn"`
}

// UpdateRegistrationRequest carries the mutable fields of a draft
// registration. PathID may only move to another path of the same period.
type UpdateRegistrationRequest struct {
	PathID   *uint   `json:"path_id"`
	PathData *string `json:"path_data"`

	StudentName       *string    `json:"student_name"`
	StudentNISN       *string    `json:"student_nisn"`
	StudentBirthPlace *string    `json:"student_birth_place"`
	StudentBirthDate  *time.Time `json:"student_birth_date"`
	StudentGender     *string    `json:"student_gender"`
	StudentAddress    *string    `json:"student_address"`

	ParentName  *string `json:"parent_name"`
	ParentNIK   *string `json:"parent_nik"`
	ParentPhone *string `json:"parent_phone"`

	PreviousSchoolName *string `json:"previous_school_name"`
	PreviousSchoolNPSN *string `json:"previous_school_npsn"`
}

// RegistrationResponse is the public shape of a registration.
type RegistrationResponse struct {
	ID                 uint       `json:"id"`
	SchoolID           uint       `json:"school_id"`
	UserID             uint       `json:"user_id"`
	PeriodID           uint       `json:"period_id"`
	PathID             uint       `json:"path_id"`
	RegistrationNumber *string    `json:"registration_number"`

	StudentName       string    `json:"student_name"`
	StudentNISN       string    `json:"student_nisn"`
	StudentBirthPlace string    `json:"student_birth_place"`
	StudentBirthDate  time.Time `json:"student_birth_date"`
	StudentGender     string    `json:"student_gender"`
	StudentAddress    string    `json:"student_address"`

	ParentName  string `json:"parent_name"`
	ParentNIK   string `json:"parent_nik"`
	ParentPhone string `json:"parent_phone"`

	PreviousSchoolName string `json:"previous_school_name"`
	PreviousSchoolNPSN string `json:"previous_school_npsn"`

	PathData string `json:"path_data"`

	SelectionScore *float64 `json:"selection_score"`
	Ranking        *int     `json:"ranking"`
	Status         string   `json:"status"`
	RejectionReason string  `json:"rejection_reason"`
	AdminNotes      string  `json:"admin_notes"`

	SubmittedAt *time.Time `json:"submitted_at"`
	VerifiedAt  *time.Time `json:"verified_at"`
	VerifiedBy  *uint      `json:"verified_by"`

	Documents []DocumentResponse `json:"documents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentResponse is the public shape of an attached document.
type DocumentResponse struct {
	ID                 uint       `json:"id"`
	RegistrationID     uint       `json:"registration_id"`
	DocumentType       string     `json:"document_type"`
	FileURL            string     `json:"file_url"`
	FileName           string     `json:"file_name"`
	FileSize           int64      `json:"file_size"`
	MimeType           string     `json:"mime_type"`
	VerificationStatus string     `json:"verification_status"`
	RejectionReason    string     `json:"rejection_reason"`
	VerifiedBy         *uint      `json:"verified_by"`
	VerifiedAt         *time.Time `json:"verified_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

// RegistrationListResponse is a paginated list of registrations.
type RegistrationListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Pagination    Pagination              `json:"pagination"`
}

// Pagination mirrors the shape used by the other Catalog-adjacent modules.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// RegistrationFilter scopes a list query by period and/or status.
type RegistrationFilter struct {
	PeriodID *uint  `query:"period_id"`
	Status   string `query:"status"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// DefaultRegistrationFilter returns default filter values.
func DefaultRegistrationFilter() RegistrationFilter {
	return RegistrationFilter{Page: 1, PageSize: 20}
}
