package models

import (
	"errors"
	"strings"
	"time"
)

// EducationLevel represents the schooling level a period admits students into.
type EducationLevel string

const (
	LevelSD  EducationLevel = "SD"
	LevelSMP EducationLevel = "SMP"
	LevelSMA EducationLevel = "SMA"
	LevelSMK EducationLevel = "SMK"
)

// IsValid checks if the education level is a known value.
func (l EducationLevel) IsValid() bool {
	switch l {
	case LevelSD, LevelSMP, LevelSMA, LevelSMK:
		return true
	}
	return false
}

// PeriodStatus represents the lifecycle status of an admissions period.
type PeriodStatus string

const (
	PeriodStatusDraft  PeriodStatus = "draft"
	PeriodStatusActive PeriodStatus = "active"
	PeriodStatusClosed PeriodStatus = "closed"
)

// IsValid checks if the period status is a known value.
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusActive, PeriodStatusClosed:
		return true
	}
	return false
}

// Period represents one admissions cycle for a school at a given level.
type Period struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	SchoolID             uint           `gorm:"index:idx_period_unique_key,unique;not null" json:"school_id"`
	AcademicYear         string         `gorm:"type:varchar(9);index:idx_period_unique_key,unique;not null" json:"academic_year"`
	Level                EducationLevel `gorm:"type:varchar(10);index:idx_period_unique_key,unique;not null" json:"level"`
	StartDate            time.Time      `json:"start_date"`
	EndDate              time.Time      `json:"end_date"`
	RegistrationStart    time.Time      `json:"registration_start"`
	RegistrationEnd      time.Time      `json:"registration_end"`
	AnnouncementDate     *time.Time     `json:"announcement_date"`
	ReenrollmentDeadline time.Time      `json:"reenrollment_deadline"`
	Status               PeriodStatus   `gorm:"type:varchar(20);not null;default:draft" json:"status"`
	// SelectionRanAt records the first time RunSelection completed for this
	// period. nil means selection has never run — Announce refuses until
	// this is set, and RunSelection itself uses it to decide whether a
	// second call is a no-op re-run or needs force=true.
	SelectionRanAt       *time.Time     `json:"selection_ran_at"`
	Announced            bool           `gorm:"default:false" json:"announced"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	// Relations
	School *School            `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Paths  []RegistrationPath `gorm:"foreignKey:PeriodID" json:"paths,omitempty"`
}

// TableName specifies the table name for Period.
func (Period) TableName() string {
	return "periods"
}

// Validate validates the period's field shape and date ordering.
// Requirements: §3 Period — start_date <= end_date,
// registration_start <= registration_end <= start_date.
func (p *Period) Validate() error {
	if strings.TrimSpace(p.AcademicYear) == "" {
		return errors.New("tahun ajaran wajib diisi")
	}
	if !p.Level.IsValid() {
		return errors.New("jenjang tidak valid")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return errors.New("status periode tidak valid")
	}
	if p.EndDate.Before(p.StartDate) {
		return errors.New("tanggal akhir harus setelah atau sama dengan tanggal mulai")
	}
	if p.RegistrationEnd.Before(p.RegistrationStart) {
		return errors.New("akhir pendaftaran harus setelah atau sama dengan awal pendaftaran")
	}
	if p.StartDate.Before(p.RegistrationEnd) {
		return errors.New("awal kegiatan belajar harus setelah atau sama dengan akhir pendaftaran")
	}
	if p.ReenrollmentDeadline.Before(p.EndDate) {
		return errors.New("batas daftar ulang harus setelah tanggal akhir periode")
	}
	return nil
}

// IsOpenForRegistration reports whether `at` falls within the registration window, inclusive.
func (p *Period) IsOpenForRegistration(at time.Time) bool {
	return p.Status == PeriodStatusActive &&
		!at.Before(p.RegistrationStart) && !at.After(p.RegistrationEnd)
}

// PathType represents the closed set of admission path variants.
type PathType string

const (
	PathTypeZonasi           PathType = "zonasi"
	PathTypePrestasi         PathType = "prestasi"
	PathTypeAfirmasi         PathType = "afirmasi"
	PathTypePerpindahanTugas PathType = "perpindahan_tugas"
)

// IsValid checks if the path type is a known value.
func (t PathType) IsValid() bool {
	switch t {
	case PathTypeZonasi, PathTypePrestasi, PathTypeAfirmasi, PathTypePerpindahanTugas:
		return true
	}
	return false
}

// RegistrationPath represents one admission channel within a period, with
// its own quota and scoring configuration.
type RegistrationPath struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PeriodID      uint      `gorm:"index;not null" json:"period_id"`
	PathType      PathType  `gorm:"type:varchar(30);not null" json:"path_type"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Quota         int       `gorm:"not null" json:"quota"`
	Description   string    `gorm:"type:text" json:"description"`
	ScoringConfig string    `gorm:"type:jsonb;not null" json:"scoring_config"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Period *Period `gorm:"foreignKey:PeriodID" json:"period,omitempty"`
}

// TableName specifies the table name for RegistrationPath.
func (RegistrationPath) TableName() string {
	return "registration_paths"
}

// Validate validates the path's own fields. Scoring-config shape validation
// against path_type is performed by the scoring package, which owns the
// per-type config schemas.
func (rp *RegistrationPath) Validate() error {
	if !rp.PathType.IsValid() {
		return errors.New("jenis jalur tidak valid")
	}
	if strings.TrimSpace(rp.Name) == "" {
		return errors.New("nama jalur wajib diisi")
	}
	if rp.Quota < 0 {
		return errors.New("kuota tidak boleh negatif")
	}
	return nil
}
