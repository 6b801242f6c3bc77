// api/audit/model.go
package audit

import "time"

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Change captures a single before/after field diff on update-type actions.
type Change struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

// ActivityLog is an immutable append-only audit record. It is created once
// and never updated or deleted by the application.
type ActivityLog struct {
	ID             string            `json:"id,omitempty"`
	OrganizationID string            `json:"organization_id"`
	UserID         string            `json:"user_id"`
	UserName       string            `json:"user_name,omitempty"`
	UserEmail      string            `json:"user_email,omitempty"`
	Action         string            `json:"action"`
	Category       string            `json:"category"`
	ResourceType   string            `json:"resource_type,omitempty"`
	ResourceID     string            `json:"resource_id,omitempty"`
	ResourceName   string            `json:"resource_name,omitempty"`
	Description    string            `json:"description"`
	Severity       string            `json:"severity"`
	Changes        []Change          `json:"changes,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Query filters the activity trail by time range and optional fields.
type Query struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	OrganizationID string    `json:"organization_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	Category       string    `json:"category,omitempty"`
	Limit          int       `json:"limit,omitempty"`
}
