package model

import "time"

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

const (
	NotificationPriorityLow    = "low"
	NotificationPriorityMedium = "medium"
	NotificationPriorityHigh   = "high"
)

// Notification is a per-recipient record. Creation is best-effort from the
// caller's perspective; the read/unread lifecycle is driven by explicit
// mark-as-read calls.
type Notification struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	OrganizationID string            `json:"organization_id,omitempty"`
	Type           string            `json:"type"`
	Category       string            `json:"category,omitempty"`
	Priority       string            `json:"priority,omitempty"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	ActionBy       string            `json:"action_by,omitempty"`
	ResourceType   string            `json:"resource_type,omitempty"`
	ResourceID     string            `json:"resource_id,omitempty"`
	ResourceName   string            `json:"resource_name,omitempty"`
	Status         string            `json:"status"`
	ActionURL      string            `json:"action_url,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	ReadAt         *time.Time        `json:"read_at,omitempty"`
	ArchivedAt     *time.Time        `json:"archived_at,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
