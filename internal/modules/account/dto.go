package account

import "time"

// CreateUserRequest is the payload for creating a school_admin or
// super_admin account administratively. Parents self-register through the
// auth module; this path exists for a school_admin provisioning staff, or
// a super_admin provisioning the first school_admin for a new school.
type CreateUserRequest struct {
	SchoolID   *uint  `json:"school_id"`
	Role       string `json:"role" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// UpdateUserRequest carries the mutable profile fields. Email and role are
// not editable here — email changes would invalidate verification/reset
// tokens and role changes cross authorization boundaries this endpoint
// doesn't check.
type UpdateUserRequest struct {
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	NationalID *string `json:"national_id"`
}

// ChangePasswordRequest is handled by the auth module (it owns credential
// verification); account only exposes profile CRUD.

// UserResponse is the public shape of a user record.
type UserResponse struct {
	ID            uint       `json:"id"`
	SchoolID      *uint      `json:"school_id"`
	Role          string     `json:"role"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone"`
	NationalID    string     `json:"national_id"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UserListResponse is a paginated list of users within a school.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination mirrors the catalog module's pagination meta shape.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// UserFilter narrows a school's user list.
type UserFilter struct {
	SchoolID *uint
	Role     string `query:"role"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

func DefaultUserFilter() UserFilter {
	return UserFilter{Page: 1, PageSize: 20}
}
