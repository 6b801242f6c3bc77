package model

// Fixed role enumeration shared with the identity provider.
const (
	RoleSuperAdmin     = "super_admin"
	RolePlatformAdmin  = "platform_admin"
	RoleOrgAdmin       = "org_admin"
	RoleOrgManager     = "org_manager"
	RoleOrgAnalyst     = "org_analyst"
	RoleOrgViewer      = "org_viewer"
	RoleAuditor        = "auditor"
	RoleChannelPartner = "channel_partner"
)

// PermissionAll grants every capability.
const PermissionAll = "*"

// RolePermissions is the canonical role → permission-string mapping. The
// capability flags below must stay in sync with these lists.
var RolePermissions = map[string][]string{
	RoleSuperAdmin:     {PermissionAll},
	RolePlatformAdmin:  {PermissionAll},
	RoleOrgAdmin:       {"users:manage", "org:manage", "incidents:manage", "reports:view", "tickets:manage"},
	RoleOrgManager:     {"incidents:manage", "reports:view", "tickets:manage"},
	RoleOrgAnalyst:     {"incidents:view", "reports:view", "tickets:create"},
	RoleOrgViewer:      {"incidents:view", "reports:view"},
	RoleAuditor:        {"incidents:view", "reports:view", "activity:view"},
	RoleChannelPartner: {"clients:manage", "reports:view"},
}

// Capabilities are the computed boolean flags attached to a session
// snapshot. They are derived from the role alone, never stored.
type Capabilities struct {
	CanManageUsers        bool `json:"can_manage_users"`
	CanManageOrganization bool `json:"can_manage_organization"`
	CanManageIncidents    bool `json:"can_manage_incidents"`
	CanViewReports        bool `json:"can_view_reports"`
	CanViewActivity       bool `json:"can_view_activity"`
	CanManageClients      bool `json:"can_manage_clients"`
	IsPlatformAdmin       bool `json:"is_platform_admin"`
}

// CapabilitiesForRole resolves the fixed lookup table for a role. Unknown
// roles resolve to no capabilities.
func CapabilitiesForRole(role string) Capabilities {
	switch role {
	case RoleSuperAdmin, RolePlatformAdmin:
		return Capabilities{
			CanManageUsers:        true,
			CanManageOrganization: true,
			CanManageIncidents:    true,
			CanViewReports:        true,
			CanViewActivity:       true,
			CanManageClients:      true,
			IsPlatformAdmin:       true,
		}
	case RoleOrgAdmin:
		return Capabilities{
			CanManageUsers:        true,
			CanManageOrganization: true,
			CanManageIncidents:    true,
			CanViewReports:        true,
			CanViewActivity:       true,
		}
	case RoleOrgManager:
		return Capabilities{
			CanManageIncidents: true,
			CanViewReports:     true,
		}
	case RoleOrgAnalyst, RoleOrgViewer:
		return Capabilities{
			CanViewReports: true,
		}
	case RoleAuditor:
		return Capabilities{
			CanViewReports:  true,
			CanViewActivity: true,
		}
	case RoleChannelPartner:
		return Capabilities{
			CanViewReports:   true,
			CanManageClients: true,
		}
	default:
		return Capabilities{}
	}
}

// IsValidRole reports whether role is part of the fixed enumeration.
func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
