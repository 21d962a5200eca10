package period

import "time"

// CreatePeriodRequest is the payload for opening a new admissions cycle.
type CreatePeriodRequest struct {
	AcademicYear         string    `json:"academic_year" validate:"required"`
	Level                string    `json:"level" validate:"required"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required"`
	RegistrationStart    time.Time `json:"registration_start" validate:"required"`
	RegistrationEnd      time.Time `json:"registration_end" validate:"required"`
	ReenrollmentDeadline time.Time `json:"reenrollment_deadline" validate:"required"`
}

// UpdatePeriodRequest carries the mutable date fields of a period. Status
// transitions go through Activate/Close instead.
type UpdatePeriodRequest struct {
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationStart    *time.Time `json:"registration_start"`
	RegistrationEnd      *time.Time `json:"registration_end"`
	ReenrollmentDeadline *time.Time `json:"reenrollment_deadline"`
}

// PeriodResponse is the public shape of a period.
type PeriodResponse struct {
	ID                   uint       `json:"id"`
	SchoolID             uint       `json:"school_id"`
	AcademicYear         string     `json:"academic_year"`
	Level                string     `json:"level"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	RegistrationStart    time.Time  `json:"registration_start"`
	RegistrationEnd      time.Time  `json:"registration_end"`
	AnnouncementDate     *time.Time `json:"announcement_date"`
	ReenrollmentDeadline time.Time  `json:"reenrollment_deadline"`
	Status               string     `json:"status"`
	Announced            bool       `json:"announced"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// PeriodListResponse is a list of periods for a school.
type PeriodListResponse struct {
	Periods []PeriodResponse `json:"periods"`
	Total   int              `json:"total"`
}

// CreatePathRequest is the payload for adding a registration path to a period.
type CreatePathRequest struct {
	PathType      string `json:"path_type" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Quota         int    `json:"quota" validate:"required,min=0"`
	Description   string `json:"description"`
	ScoringConfig string `json:"scoring_config" validate:"required"`
}

// UpdatePathRequest carries the mutable fields of a registration path.
type UpdatePathRequest struct {
	Name          *string `json:"name"`
	Quota         *int    `json:"quota"`
	Description   *string `json:"description"`
	ScoringConfig *string `json:"scoring_config"`
}

// PathResponse is the public shape of a registration path.
type PathResponse struct {
	ID            uint      `json:"id"`
	PeriodID      uint      `json:"period_id"`
	PathType      string    `json:"path_type"`
	Name          string    `json:"name"`
	Quota         int       `json:"quota"`
	Description   string    `json:"description"`
	ScoringConfig string    `json:"scoring_config"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
