package model

import "encoding/json"

// Webhook event types emitted by the identity provider.
const (
	EventUserCreated       = "user.created"
	EventUserUpdated       = "user.updated"
	EventUserDeleted       = "user.deleted"
	EventOrgCreated        = "organization.created"
	EventOrgUpdated        = "organization.updated"
	EventOrgDeleted        = "organization.deleted"
	EventMembershipCreated = "organizationMembership.created"
	EventMembershipUpdated = "organizationMembership.updated"
	EventMembershipDeleted = "organizationMembership.deleted"
)

// WebhookEvent is the verified envelope. Data is decoded per event type.
type WebhookEvent struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data" binding:"required"`
}

type WebhookEntityData struct {
	ID string `json:"id"`
}

// WebhookMembershipData mirrors the provider's membership payload: the
// organization and user are nested objects, the role is a plain string.
type WebhookMembershipData struct {
	ID           string   `json:"id"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	Organization struct {
		ID string `json:"id"`
	} `json:"organization"`
	PublicUserData struct {
		UserID string `json:"user_id"`
	} `json:"public_user_data"`
}
