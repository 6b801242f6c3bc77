package model

import "time"

// SessionSchemaVersion is bumped whenever the snapshot layout changes.
// A cached snapshot carrying an older schema version is treated as a miss
// and recomputed, which is the migration strategy for the cache.
const SessionSchemaVersion = 3

// OrganizationContext is the slice of an organization a session needs:
// the user's role in it plus the tenant attributes that gate features.
type OrganizationContext struct {
	OrgID       string   `json:"org_id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Plan        string   `json:"plan"`
	PlanStatus  string   `json:"plan_status,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Size        string   `json:"size,omitempty"`
	IsPrimary   bool     `json:"is_primary"`
}

type SessionCacheInfo struct {
	SchemaVersion int       `json:"schema_version"`
	Version       int64     `json:"version"`
	LastUpdated   time.Time `json:"last_updated"`
}

// SessionSnapshot is the denormalized, non-authoritative read model computed
// from the mirrored User and Organization documents. It is always recomputed
// whole; no caller may patch individual fields.
type SessionSnapshot struct {
	UserID              string                `json:"user_id"`
	Email               string                `json:"email"`
	FirstName           string                `json:"first_name"`
	LastName            string                `json:"last_name"`
	ImageURL            string                `json:"image_url,omitempty"`
	Status              string                `json:"status"`
	PrimaryOrganization *OrganizationContext  `json:"primary_organization,omitempty"`
	Organizations       []OrganizationContext `json:"organizations"`
	Capabilities        Capabilities          `json:"capabilities"`
	Preferences         UserPreferences       `json:"preferences"`
	Security            UserSecurity          `json:"security"`
	Cache               SessionCacheInfo      `json:"cache"`
}
