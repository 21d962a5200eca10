package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// RegistrationStatus is the closed set of states a registration moves through.
type RegistrationStatus string

const (
	StatusDraft     RegistrationStatus = "draft"
	StatusSubmitted RegistrationStatus = "submitted"
	StatusVerified  RegistrationStatus = "verified"
	StatusRejected  RegistrationStatus = "rejected"
	StatusAccepted  RegistrationStatus = "accepted"
	StatusEnrolled  RegistrationStatus = "enrolled"
	StatusExpired   RegistrationStatus = "expired"
)

// IsValid checks if the registration status is a known value.
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusVerified, StatusRejected, StatusAccepted, StatusEnrolled, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s RegistrationStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusEnrolled, StatusExpired:
		return true
	}
	return false
}

var (
	nisnPattern = regexp.MustCompile(`^[0-9]{10}$`)
	nikPattern  = regexp.MustCompile(`^[0-9]{16}$`)
)

// ValidNISN reports whether s is exactly 10 digits.
func ValidNISN(s string) bool { return nisnPattern.MatchString(s) }

// ValidNIK reports whether s is exactly 16 digits.
func ValidNIK(s string) bool { return nikPattern.MatchString(s) }

// Registration represents one parent's admission application for one student
// against one path of one period.
type Registration struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	SchoolID            uint               `gorm:"index;not null" json:"school_id"`
	UserID              uint               `gorm:"index;not null" json:"user_id"`
	PeriodID            uint               `gorm:"index;not null" json:"period_id"`
	PathID              uint               `gorm:"index;not null" json:"path_id"`
	RegistrationNumber  *string            `gorm:"type:varchar(50);uniqueIndex" json:"registration_number"`

	StudentName       string `gorm:"type:varchar(255);not null" json:"student_name"`
	StudentNISN       string `gorm:"type:varchar(10);not null" json:"student_nisn"`
	StudentBirthPlace string `gorm:"type:varchar(255)" json:"student_birth_place"`
	StudentBirthDate  time.Time `json:"student_birth_date"`
	StudentGender     string `gorm:"type:varchar(10)" json:"student_gender"`
	StudentAddress    string `gorm:"type:text" json:"student_address"`

	ParentName string `gorm:"type:varchar(255);not null" json:"parent_name"`
	ParentNIK  string `gorm:"type:varchar(16)" json:"parent_nik"`
	ParentPhone string `gorm:"type:varchar(20)" json:"parent_phone"`

	PreviousSchoolName string `gorm:"type:varchar(255)" json:"previous_school_name"`
	PreviousSchoolNPSN string `gorm:"type:varchar(8)" json:"previous_school_npsn"`

	PathData string `gorm:"type:jsonb" json:"path_data"`

	SelectionScore *float64            `json:"selection_score"`
	Ranking        *int                `json:"ranking"`
	Status         RegistrationStatus  `gorm:"type:varchar(20);not null;default:draft;index" json:"status"`
	RejectionReason string             `gorm:"type:text" json:"rejection_reason"`
	AdminNotes      string             `gorm:"type:text" json:"admin_notes"`

	SubmittedAt *time.Time `json:"submitted_at"`
	VerifiedAt  *time.Time `json:"verified_at"`
	VerifiedBy  *uint      `json:"verified_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	School    *School            `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	User      *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Period    *Period            `gorm:"foreignKey:PeriodID" json:"period,omitempty"`
	Path      *RegistrationPath  `gorm:"foreignKey:PathID" json:"path,omitempty"`
	Documents []Document         `gorm:"foreignKey:RegistrationID" json:"documents,omitempty"`
}

// TableName specifies the table name for Registration.
func (Registration) TableName() string {
	return "registrations"
}

// Validate validates the registration's own field shape. Cross-entity
// invariants (path belongs to period, single non-terminal registration per
// user/period) are enforced by the registration service against the Store.
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.StudentName) == "" {
		return errors.New("nama siswa wajib diisi")
	}
	if !ValidNISN(r.StudentNISN) {
		return errors.New("nisn harus terdiri dari 10 digit angka")
	}
	if strings.TrimSpace(r.ParentName) == "" {
		return errors.New("nama orang tua wajib diisi")
	}
	if r.ParentNIK != "" && !ValidNIK(r.ParentNIK) {
		return errors.New("nik orang tua harus terdiri dari 16 digit angka")
	}
	if r.Status != "" && !r.Status.IsValid() {
		return errors.New("status pendaftaran tidak valid")
	}
	return nil
}

// IsNonTerminal reports whether the registration still occupies the
// "at most one active registration per (period, user)" slot.
func (r *Registration) IsNonTerminal() bool {
	return !r.Status.IsTerminal()
}
