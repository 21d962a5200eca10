package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

func TestScopeRoundTrip(t *testing.T) {
	schoolID := uint(7)
	scope := Scope{Role: models.RoleSchoolAdmin, SchoolID: &schoolID, UserID: 3}

	ctx := WithScope(context.Background(), scope)
	got, ok := ScopeFromContext(ctx)

	assert.True(t, ok)
	assert.Equal(t, scope, got)
}

func TestScopeFromContextMissing(t *testing.T) {
	_, ok := ScopeFromContext(context.Background())
	assert.False(t, ok)
}

func TestScopeIsSuperAdmin(t *testing.T) {
	assert.True(t, Scope{Role: models.RoleSuperAdmin}.IsSuperAdmin())
	assert.False(t, Scope{Role: models.RoleParent}.IsSuperAdmin())
}

func TestScopeRequireSchoolID(t *testing.T) {
	schoolID := uint(5)
	scope := Scope{Role: models.RoleSchoolAdmin, SchoolID: &schoolID}
	id, ok := scope.RequireSchoolID()
	assert.True(t, ok)
	assert.Equal(t, schoolID, id)

	superAdmin := Scope{Role: models.RoleSuperAdmin}
	_, ok = superAdmin.RequireSchoolID()
	assert.False(t, ok)
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	superAdmin := Scope{Role: models.RoleSuperAdmin}
	assert.NoError(t, RequireOwnerOrAdmin(superAdmin, 99))

	schoolAdmin := Scope{Role: models.RoleSchoolAdmin, UserID: 1}
	assert.NoError(t, RequireOwnerOrAdmin(schoolAdmin, 99))

	owner := Scope{Role: models.RoleParent, UserID: 42}
	assert.NoError(t, RequireOwnerOrAdmin(owner, 42))

	stranger := Scope{Role: models.RoleParent, UserID: 1}
	assert.Error(t, RequireOwnerOrAdmin(stranger, 42))
}
