package models

import (
	"errors"
	"strings"
	"time"
)

// UserRole represents the role of a user in the admissions system.
type UserRole string

const (
	RoleSuperAdmin  UserRole = "super_admin"
	RoleSchoolAdmin UserRole = "school_admin"
	RoleParent      UserRole = "parent"
)

// IsValid checks if the user role is a known value.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleParent:
		return true
	}
	return false
}

// User represents every principal in the system: platform admins, school
// admins, and parents.
type User struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	SchoolID               *uint      `gorm:"index" json:"school_id"` // required for school_admin, null for super_admin, optional for parent
	Role                   UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Email                  string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash           string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName               string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone                  string     `gorm:"type:varchar(20)" json:"phone"`
	NationalID             string     `gorm:"type:varchar(16);column:national_id" json:"national_id"`
	EmailVerified          bool       `gorm:"default:false" json:"email_verified"`
	EmailVerificationToken *string    `gorm:"type:varchar(128);index" json:"-"`
	ResetPasswordToken     *string    `gorm:"type:varchar(128);index" json:"-"`
	ResetPasswordExpires   *time.Time `json:"-"`
	IsActive               bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt            *time.Time `json:"last_login_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	// Relations
	School *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// TableName specifies the table name for User.
func (User) TableName() string {
	return "users"
}

// Validate validates the user data against the role/school_id invariants.
// super_admin implies school_id = null; school_admin implies school_id != null.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("email wajib diisi")
	}
	if strings.TrimSpace(u.FullName) == "" {
		return errors.New("nama lengkap wajib diisi")
	}
	if !u.Role.IsValid() {
		return errors.New("role tidak valid")
	}
	switch u.Role {
	case RoleSuperAdmin:
		if u.SchoolID != nil {
			return errors.New("super_admin tidak boleh terikat ke sekolah")
		}
	case RoleSchoolAdmin:
		if u.SchoolID == nil {
			return errors.New("school_admin wajib terikat ke sekolah")
		}
	}
	if u.NationalID != "" && len(u.NationalID) != 16 {
		return errors.New("nik harus terdiri dari 16 digit")
	}
	return nil
}

// IsSuperAdmin reports whether the user is a platform-wide administrator.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// IsSchoolAdmin reports whether the user administers a single school.
func (u *User) IsSchoolAdmin() bool {
	return u.Role == RoleSchoolAdmin
}

// IsParent reports whether the user is a registration-submitting parent.
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

// Deactivate disables the user's account.
func (u *User) Deactivate() {
	u.IsActive = false
}

// Activate re-enables the user's account.
func (u *User) Activate() {
	u.IsActive = true
}

// UpdateLastLogin stamps the current time as the last successful login.
func (u *User) UpdateLastLogin(now time.Time) {
	u.LastLoginAt = &now
}

// MarkEmailVerified clears the verification token and flips the verified flag.
func (u *User) MarkEmailVerified() {
	u.EmailVerified = true
	u.EmailVerificationToken = nil
}

// SetResetPasswordToken assigns a fresh reset token with its expiry.
func (u *User) SetResetPasswordToken(token string, expires time.Time) {
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
}

// ClearResetPasswordToken removes any pending reset token.
func (u *User) ClearResetPasswordToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
}
