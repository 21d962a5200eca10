package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// SchoolStatus represents the lifecycle status of a tenant school.
type SchoolStatus string

const (
	SchoolStatusActive    SchoolStatus = "active"
	SchoolStatusInactive  SchoolStatus = "inactive"
	SchoolStatusSuspended SchoolStatus = "suspended"
)

// IsValid checks if the school status is a known value.
func (s SchoolStatus) IsValid() bool {
	switch s {
	case SchoolStatusActive, SchoolStatusInactive, SchoolStatusSuspended:
		return true
	}
	return false
}

var npsnPattern = regexp.MustCompile(`^[0-9]{8}$`)

// School represents a tenant in the multi-tenant admissions system.
type School struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	NPSN      string       `gorm:"type:varchar(8);uniqueIndex;not null" json:"npsn"`
	Code      string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Address   string       `gorm:"type:text" json:"address"`
	Phone     string       `gorm:"type:varchar(20)" json:"phone"`
	Email     string       `gorm:"type:varchar(255)" json:"email"`
	Timezone  string       `gorm:"type:varchar(50);default:Asia/Jakarta" json:"timezone"`
	Status    SchoolStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Users    []User    `gorm:"foreignKey:SchoolID" json:"users,omitempty"`
	Periods  []Period  `gorm:"foreignKey:SchoolID" json:"periods,omitempty"`
}

// TableName specifies the table name for School.
func (School) TableName() string {
	return "schools"
}

// Validate validates the school data before create/update.
func (s *School) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("nama sekolah wajib diisi")
	}
	if !npsnPattern.MatchString(s.NPSN) {
		return errors.New("npsn harus terdiri dari 8 digit angka")
	}
	if strings.TrimSpace(s.Code) == "" {
		return errors.New("kode sekolah wajib diisi")
	}
	if s.Status != "" && !s.Status.IsValid() {
		return errors.New("status sekolah tidak valid")
	}
	return nil
}

// IsOperational reports whether the school may perform non-read operations.
func (s *School) IsOperational() bool {
	return s.Status == SchoolStatusActive
}

// Suspend marks the school as suspended; it blocks all tenant operations except read.
func (s *School) Suspend() {
	s.Status = SchoolStatusSuspended
}

// Deactivate soft-deletes the school by setting its status to inactive.
func (s *School) Deactivate() {
	s.Status = SchoolStatusInactive
}

// Activate restores the school to active status.
func (s *School) Activate() {
	s.Status = SchoolStatusActive
}
