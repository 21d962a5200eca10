package policy

import (
	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// accessPolicy implements the AccessPolicy interface. It is deliberately
// free of any database handle: every decision is a pure function of the
// resolved Principal and the target's pre-fetched school_id/owner id, per
// spec §5's "Authorization checks never suspend."
type accessPolicy struct{}

// NewAccessPolicy creates the default PPDB access policy.
func NewAccessPolicy() AccessPolicy {
	return &accessPolicy{}
}

func (a *accessPolicy) CanManageSchools(p Principal) Decision {
	if p.IsSuperAdmin() {
		return allow()
	}
	return deny("only super_admin manages schools")
}

func (a *accessPolicy) CanManageUsersInSchool(p Principal, targetSchoolID uint) Decision {
	if p.IsSuperAdmin() {
		return allow()
	}
	if p.Role == models.RoleSchoolAdmin && p.SameSchool(targetSchoolID) {
		return allow()
	}
	return deny("requires super_admin or school_admin of the target school")
}

func (a *accessPolicy) CanManageOwnProfile(p Principal, targetUserID uint) Decision {
	if p.IsSuperAdmin() || p.UserID == targetUserID {
		return allow()
	}
	return deny("may only manage own profile")
}

func (a *accessPolicy) CanManagePeriods(p Principal, targetSchoolID uint) Decision {
	if p.IsSuperAdmin() {
		return allow()
	}
	if p.Role == models.RoleSchoolAdmin && p.SameSchool(targetSchoolID) {
		return allow()
	}
	return deny("requires super_admin or school_admin of the target school")
}

func (a *accessPolicy) CanCreateOrEditDraftRegistration(p Principal, ownerUserID uint) Decision {
	if p.UserID == ownerUserID {
		return allow()
	}
	return deny("only the owning parent may edit a draft registration")
}

func (a *accessPolicy) CanSubmitRegistration(p Principal, ownerUserID uint) Decision {
	if p.UserID == ownerUserID {
		return allow()
	}
	return deny("only the owning parent may submit a registration")
}

func (a *accessPolicy) CanVerify(p Principal, targetSchoolID uint) Decision {
	if p.IsSuperAdmin() {
		return allow()
	}
	if p.Role == models.RoleSchoolAdmin && p.SameSchool(targetSchoolID) {
		return allow()
	}
	return deny("requires super_admin or school_admin of the target school")
}

func (a *accessPolicy) CanRunSelection(p Principal, targetSchoolID uint) Decision {
	if p.IsSuperAdmin() {
		return allow()
	}
	if p.Role == models.RoleSchoolAdmin && p.SameSchool(targetSchoolID) {
		return allow()
	}
	return deny("requires super_admin or school_admin of the target school")
}

func (a *accessPolicy) CanReadRegistration(p Principal, targetSchoolID, ownerUserID uint) Decision {
	if p.IsSuperAdmin() || p.UserID == ownerUserID {
		return allow()
	}
	if p.Role == models.RoleSchoolAdmin && p.SameSchool(targetSchoolID) {
		return allow()
	}
	return deny("not visible to this principal")
}
