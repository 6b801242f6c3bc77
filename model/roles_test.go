package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesForRole(t *testing.T) {
	admin := CapabilitiesForRole(RolePlatformAdmin)
	assert.True(t, admin.IsPlatformAdmin)
	assert.True(t, admin.CanManageUsers)
	assert.True(t, admin.CanManageClients)

	orgAdmin := CapabilitiesForRole(RoleOrgAdmin)
	assert.True(t, orgAdmin.CanManageUsers)
	assert.False(t, orgAdmin.IsPlatformAdmin)
	assert.False(t, orgAdmin.CanManageClients)

	viewer := CapabilitiesForRole(RoleOrgViewer)
	assert.True(t, viewer.CanViewReports)
	assert.False(t, viewer.CanManageIncidents)

	auditor := CapabilitiesForRole(RoleAuditor)
	assert.True(t, auditor.CanViewActivity)
	assert.False(t, auditor.CanManageUsers)

	assert.Equal(t, Capabilities{}, CapabilitiesForRole("emperor"))
}

func TestRolePermissionsCoverEveryRole(t *testing.T) {
	roles := []string{
		RoleSuperAdmin, RolePlatformAdmin, RoleOrgAdmin, RoleOrgManager,
		RoleOrgAnalyst, RoleOrgViewer, RoleAuditor, RoleChannelPartner,
	}
	for _, role := range roles {
		assert.True(t, IsValidRole(role), role)
		assert.NotEmpty(t, RolePermissions[role], role)
	}
	assert.False(t, IsValidRole("emperor"))
}
