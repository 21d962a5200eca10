package tenant

import "time"

// CreateSchoolRequest is the payload for creating a new school (tenant).
// Created by a super_admin; per spec §4.4 this is a pure Catalog operation,
// no bundled admin-user creation — admin accounts are created separately
// through the account module.
type CreateSchoolRequest struct {
	Name    string `json:"name" validate:"required"`
	NPSN    string `json:"npsn" validate:"required,len=8"`
	Code    string `json:"code" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// UpdateSchoolRequest represents the request to update a school. Only
// contact/profile fields are mutable here; NPSN and code are immutable
// identity fields.
type UpdateSchoolRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// SchoolResponse represents the school data in responses.
type SchoolResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	NPSN      string    `json:"npsn"`
	Code      string    `json:"code"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchoolListResponse is a paginated list of schools.
type SchoolListResponse struct {
	Schools    []SchoolResponse `json:"schools"`
	Pagination PaginationMeta   `json:"pagination"`
}

// PaginationMeta represents pagination metadata.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SchoolFilter represents filter options for listing schools.
type SchoolFilter struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// DefaultSchoolFilter returns default filter values.
func DefaultSchoolFilter() SchoolFilter {
	return SchoolFilter{Page: 1, PageSize: 20}
}

// StatusChangeResponse is returned by activate/deactivate/suspend.
type StatusChangeResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
