package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppdb/admissions-backend/internal/apperr"
)

// DB returns a *gorm.DB pre-scoped to the tenant session carried on ctx. Any
// tenant-owned table touched through the returned handle is automatically
// filtered by school_id unless the scope belongs to a super_admin. Handlers
// and services should never call gdb.Where("school_id = ...") directly;
// routing every query through DB is what makes forgetting the filter
// impossible.
func DB(ctx context.Context, gdb *gorm.DB) *gorm.DB {
	tx := gdb.WithContext(ctx)

	scope, ok := ScopeFromContext(ctx)
	if !ok || scope.IsSuperAdmin() {
		return tx
	}

	schoolID, ok := scope.RequireSchoolID()
	if !ok {
		// A non-super_admin scope with no school_id can match nothing.
		return tx.Where("1 = 0")
	}
	return tx.Where("school_id = ?", schoolID)
}

// DBCrossTenant returns an unscoped handle for operations that legitimately
// span tenants (e.g. looking up a School row by id, or the public result
// check, which has no scope at all). Callers must apply their own
// authorization decision before calling this.
func DBCrossTenant(ctx context.Context, gdb *gorm.DB) *gorm.DB {
	return gdb.WithContext(ctx)
}

// ForUpdate adds a row-level lock clause to tx, for use immediately before a
// status transition so concurrent writers on the same row serialize.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// SetRLSSchool sets the Postgres session variable consumed by row-level
// security policies, as defense in depth alongside the application-level
// school_id filter. Must be called within the same transaction as the
// queries it protects (SET LOCAL is transaction-scoped).
func SetRLSSchool(tx *gorm.DB, schoolID uint) error {
	return tx.Exec("SET LOCAL app.current_school_id = ?", schoolID).Error
}

// NotFoundOnMissing translates gorm.ErrRecordNotFound into a typed
// apperr.NotFound, leaving every other error untouched so Internal/Conflict
// errors propagate unchanged per the error-propagation policy.
func NotFoundOnMissing(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message)
	}
	return apperr.Internal("kesalahan basis data").Wrap(err)
}

// IsUniqueViolation reports whether err represents a unique-constraint
// violation, the common shape across Postgres/pgx error wrapping. GORM
// doesn't normalize this across drivers, so callers that need a precise
// Conflict message match on the underlying error text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "violates unique constraint")
}

// WithTransaction runs fn inside a database transaction, rolling back on any
// non-nil error (including panics) and committing otherwise.
func WithTransaction(ctx context.Context, gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return nil
	})
}

// ScopedTx applies the tenant scope to an existing transaction handle, for
// use inside WithTransaction callbacks where a fresh *gorm.DB from DB(ctx,
// gdb) would otherwise start a new, unscoped transaction.
func ScopedTx(ctx context.Context, tx *gorm.DB) *gorm.DB {
	scope, ok := ScopeFromContext(ctx)
	if !ok || scope.IsSuperAdmin() {
		return tx
	}
	schoolID, ok := scope.RequireSchoolID()
	if !ok {
		return tx.Where("1 = 0")
	}
	return tx.Where("school_id = ?", schoolID)
}

// RequireOwnerOrAdmin returns nil if scope may act on a row owned by
// ownerUserID (the caller is the owner, or a school_admin/super_admin within
// the same tenant), and a typed NotFound otherwise — per the spec's
// "cross-tenant read is 404, not 403" rule so existence is never leaked.
func RequireOwnerOrAdmin(scope Scope, ownerUserID uint) error {
	if scope.IsSuperAdmin() {
		return nil
	}
	if !scope.IsParent() {
		return nil // school_admin of this tenant: scoping already applied by DB()
	}
	if scope.UserID == ownerUserID {
		return nil
	}
	return apperr.NotFound("entitas tidak ditemukan")
}
