// Package store provides the tenant-scoped persistence layer shared by every
// business component. A Scope is resolved once per request by the auth/
// tenant middleware and carried on context.Context; every subsequent query
// issued through this package is automatically filtered to that scope, so a
// handler cannot accidentally read or write across tenant boundaries.
package store

import (
	"context"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Scope is the tenant session bound into every request: who is calling,
// under which school (if any), and as which user. It is built once by
// middleware and never threaded explicitly through service call sites.
type Scope struct {
	Role     models.UserRole
	SchoolID *uint // nil only for super_admin
	UserID   uint
}

// IsSuperAdmin reports whether this scope may bypass the school_id filter.
func (s Scope) IsSuperAdmin() bool {
	return s.Role == models.RoleSuperAdmin
}

// IsParent reports whether this scope belongs to a parent principal.
func (s Scope) IsParent() bool {
	return s.Role == models.RoleParent
}

// RequireSchoolID returns the scope's school id, or false if the scope has
// none (only possible for a super_admin operating without an explicit
// cross-tenant target).
func (s Scope) RequireSchoolID() (uint, bool) {
	if s.SchoolID == nil {
		return 0, false
	}
	return *s.SchoolID, true
}

type scopeContextKey struct{}

// WithScope returns a context carrying the given tenant scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the tenant scope bound to ctx. The second return
// value is false if no scope was ever bound — callers should treat this as a
// programmer error (every authenticated request path binds one).
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(Scope)
	return scope, ok
}
