// Package models contains all domain models for the PPDB admissions
// backend. These models represent the core entities and their
// relationships.
package models

import "errors"

// This file serves as the package documentation.
// All models are defined in their respective files:
//
// Core Models:
//   - school.go: School (tenant) model
//   - user.go: User model with roles
//
// Admissions:
//   - period.go: Period and RegistrationPath models
//   - registration.go: Registration model and its state machine's vocabulary
//   - document.go: Document model and the required-document-set rules
//
// Notification:
//   - notification.go: Notification and FCM token models
//
// Audit & Federation:
//   - audit_entry.go: Append-only audit trail model
//   - federated_identity.go: External identity-sync model

// Common validation errors
var (
	ErrRequiredFieldMissing = errors.New("required field is missing")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrDuplicateEntry       = errors.New("duplicate entry")
)

// AllModels returns all models for GORM auto-migration.
// This ensures all models are registered in a single place.
func AllModels() []interface{} {
	return []interface{}{
		// Core models
		&School{},
		&User{},

		// Admissions
		&Period{},
		&RegistrationPath{},
		&Registration{},
		&Document{},

		// Notification
		&Notification{},
		&FCMToken{},

		// Audit & federation
		&AuditEntry{},
		&FederatedIdentity{},
	}
}

// Pagination represents pagination parameters shared across list endpoints.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// DefaultPagination returns default pagination settings.
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Offset calculates the offset for database queries.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size for database queries, capped at 100.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// TotalPages computes the number of pages for the given total and page size.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 20
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
