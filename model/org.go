package model

import "time"

const (
	PlanTrial      = "trial"
	PlanStandard   = "standard"
	PlanEnterprise = "enterprise"
)

type OrganizationSettings struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
	RequireMFA           bool `json:"require_mfa"`
	ComplianceMode       bool `json:"compliance_mode"`
}

// Organization is the mirrored tenant document. Members are projected from
// MEMBER_OF relationships at read time.
type Organization struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug,omitempty"`
	Industry    string               `json:"industry,omitempty"`
	Size        string               `json:"size,omitempty"`
	Plan        string               `json:"plan"`
	PlanStatus  string               `json:"plan_status,omitempty"`
	ParentOrgID string               `json:"parent_org_id,omitempty"`
	Settings    OrganizationSettings `json:"settings"`
	Members     []OrgMember          `json:"members,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type OrganizationSearchCriteria struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Plan      string     `json:"plan,omitempty"`
	Industry  string     `json:"industry,omitempty"`
	FromDate  *time.Time `json:"from_date,omitempty"`
	ToDate    *time.Time `json:"to_date,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
}
