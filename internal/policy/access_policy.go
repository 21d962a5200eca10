// Package policy is the single place the PPDB permission matrix lives.
// Handlers never consult a caller's role directly; they ask a named
// permission question here and get back an allow/deny decision. No method
// in this package performs I/O — principal and target data are always
// pre-resolved by the caller, matching the no-suspension-point requirement
// on authorization checks.
package policy

import (
	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Principal is the resolved caller: who they are, what role they hold, and
// which school (if any) they belong to.
type Principal struct {
	UserID   uint
	Role     models.UserRole
	SchoolID *uint
}

// IsSuperAdmin reports whether the principal is a platform-wide administrator.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == models.RoleSuperAdmin
}

// SameSchool reports whether the principal belongs to the given school.
func (p Principal) SameSchool(schoolID uint) bool {
	return p.SchoolID != nil && *p.SchoolID == schoolID
}

// Decision is the outcome of a permission check: Allow, or Deny with a
// stable machine-readable Reason suitable for logging and error messages.
type Decision struct {
	Allow  bool
	Reason string
}

func allow() Decision { return Decision{Allow: true} }

func deny(reason string) Decision { return Decision{Allow: false, Reason: reason} }

// AccessPolicy is the PPDB permission matrix of spec §4.3, expressed as one
// named method per action. The account, period, registration, verification
// and selection handlers call one of these before invoking their business
// operation; the school catalog and notification handlers call none.
type AccessPolicy interface {
	// CanManageSchools allows super_admin only (create/update/deactivate schools).
	CanManageSchools(p Principal) Decision

	// CanManageUsersInSchool allows super_admin (any school) or a school_admin
	// of that same school.
	CanManageUsersInSchool(p Principal, targetSchoolID uint) Decision

	// CanManageOwnProfile allows any authenticated principal to manage their
	// own profile (targetUserID == p.UserID); super_admin may also act on
	// behalf of any user.
	CanManageOwnProfile(p Principal, targetUserID uint) Decision

	// CanManagePeriods allows super_admin (any school) or a school_admin of
	// that same school to manage periods and registration paths.
	CanManagePeriods(p Principal, targetSchoolID uint) Decision

	// CanCreateOrEditDraftRegistration allows only the owning parent.
	CanCreateOrEditDraftRegistration(p Principal, ownerUserID uint) Decision

	// CanSubmitRegistration allows only the owning parent.
	CanSubmitRegistration(p Principal, ownerUserID uint) Decision

	// CanVerify allows super_admin or a school_admin of the registration's
	// school to verify/reject registrations and documents.
	CanVerify(p Principal, targetSchoolID uint) Decision

	// CanRunSelection allows super_admin or a school_admin of the period's
	// school to calculate scores, rank, run selection, and announce.
	CanRunSelection(p Principal, targetSchoolID uint) Decision

	// CanReadRegistration allows super_admin, a school_admin of the same
	// school, or the owning parent. Everyone else is denied with a reason
	// that the caller maps to NotFound (not Forbidden) to avoid leaking
	// cross-tenant existence.
	CanReadRegistration(p Principal, targetSchoolID, ownerUserID uint) Decision
}
