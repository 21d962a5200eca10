package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

func school(id uint) *uint { return &id }

func TestCanManageSchools(t *testing.T) {
	p := NewAccessPolicy()

	assert.True(t, p.CanManageSchools(Principal{Role: models.RoleSuperAdmin}).Allow)
	assert.False(t, p.CanManageSchools(Principal{Role: models.RoleSchoolAdmin, SchoolID: school(1)}).Allow)
}

func TestCanManageUsersInSchool(t *testing.T) {
	p := NewAccessPolicy()

	superAdmin := Principal{Role: models.RoleSuperAdmin}
	assert.True(t, p.CanManageUsersInSchool(superAdmin, 42).Allow)

	sameSchool := Principal{Role: models.RoleSchoolAdmin, SchoolID: school(1)}
	assert.True(t, p.CanManageUsersInSchool(sameSchool, 1).Allow)

	otherSchool := Principal{Role: models.RoleSchoolAdmin, SchoolID: school(1)}
	decision := p.CanManageUsersInSchool(otherSchool, 2)
	assert.False(t, decision.Allow)
	assert.NotEmpty(t, decision.Reason)

	parent := Principal{Role: models.RoleParent}
	assert.False(t, p.CanManageUsersInSchool(parent, 1).Allow)

	// A parent carrying a school_id that happens to match the target must
	// still be denied — parent is never a manager, regardless of SameSchool.
	parentWithSchool := Principal{Role: models.RoleParent, SchoolID: school(1)}
	assert.False(t, p.CanManageUsersInSchool(parentWithSchool, 1).Allow)
}

func TestCanManagePeriods(t *testing.T) {
	p := NewAccessPolicy()

	superAdmin := Principal{Role: models.RoleSuperAdmin}
	assert.True(t, p.CanManagePeriods(superAdmin, 1).Allow)

	admin := Principal{Role: models.RoleSchoolAdmin, SchoolID: school(1)}
	assert.True(t, p.CanManagePeriods(admin, 1).Allow)
	assert.False(t, p.CanManagePeriods(admin, 2).Allow)

	parentWithSchool := Principal{Role: models.RoleParent, SchoolID: school(1)}
	assert.False(t, p.CanManagePeriods(parentWithSchool, 1).Allow)
}

func TestCanVerify(t *testing.T) {
	p := NewAccessPolicy()

	superAdmin := Principal{Role: models.RoleSuperAdmin}
	assert.True(t, p.CanVerify(superAdmin, 1).Allow)

	admin := Principal{Role: models.RoleSchoolAdmin, SchoolID: school(1)}
	assert.True(t, p.CanVerify(admin, 1).Allow)
	assert.False(t, p.CanVerify(admin, 2).Allow)

	parentWithSchool := Principal{Role: models.RoleParent, SchoolID: school(1)}
	assert.False(t, p.CanVerify(parentWithSchool, 1).Allow)
}

func TestCanCreateOrEditDraftRegistration(t *testing.T) {
	p := NewAccessPolicy()

	owner := Principal{Role: models.RoleParent, UserID: 10}
	assert.True(t, p.CanCreateOrEditDraftRegistration(owner, 10).Allow)
	assert.False(t, p.CanCreateOrEditDraftRegistration(owner, 11).Allow)

	// Even a super_admin may not edit another parent's draft directly —
	// drafts are owner-only per spec §4.3.
	superAdmin := Principal{Role: models.RoleSuperAdmin, UserID: 1}
	assert.False(t, p.CanCreateOrEditDraftRegistration(superAdmin, 11).Allow)
}

func TestCanReadRegistration(t *testing.T) {
	p := NewAccessPolicy()

	owner := Principal{Role: models.RoleParent, UserID: 10}
	assert.True(t, p.CanReadRegistration(owner, 1, 10).Allow)
	assert.False(t, p.CanReadRegistration(owner, 1, 11).Allow)

	admin := Principal{Role: models.RoleSchoolAdmin, SchoolID: school(1)}
	assert.True(t, p.CanReadRegistration(admin, 1, 99).Allow)
	assert.False(t, p.CanReadRegistration(admin, 2, 99).Allow)

	superAdmin := Principal{Role: models.RoleSuperAdmin}
	assert.True(t, p.CanReadRegistration(superAdmin, 99, 1).Allow)
}

func TestCanRunSelection(t *testing.T) {
	p := NewAccessPolicy()

	admin := Principal{Role: models.RoleSchoolAdmin, SchoolID: school(5)}
	assert.True(t, p.CanRunSelection(admin, 5).Allow)
	assert.False(t, p.CanRunSelection(admin, 6).Allow)

	parent := Principal{Role: models.RoleParent, SchoolID: school(5)}
	assert.False(t, p.CanRunSelection(parent, 5).Allow)
}
