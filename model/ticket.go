package model

import "time"

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

// TicketSnippetLength caps latestMessageSnippet.
const TicketSnippetLength = 280

// SupportTicket carries rollup fields (MessageCount, LatestMessageSnippet,
// LastActivityAt) that are maintained in the same write transaction as the
// message append, so a crash cannot leave them stale.
type SupportTicket struct {
	ID                   string    `json:"id"`
	OrganizationID       string    `json:"organization_id"`
	Subject              string    `json:"subject"`
	Description          string    `json:"description"`
	Priority             string    `json:"priority"`
	Status               string    `json:"status"`
	CreatedBy            string    `json:"created_by"`
	AssignedTo           string    `json:"assigned_to,omitempty"`
	AssignedToName       string    `json:"assigned_to_name,omitempty"`
	Tags                 []string  `json:"tags,omitempty"`
	IsEscalated          bool      `json:"is_escalated"`
	MessageCount         int64     `json:"message_count"`
	LatestMessageSnippet string    `json:"latest_message_snippet,omitempty"`
	ResolutionSummary    string    `json:"resolution_summary,omitempty"`
	LastActivityAt       time.Time `json:"last_activity_at"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type TicketMessage struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Message    string    `json:"message"`
	Internal   bool      `json:"internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketUpdate is the whitelist for partial updates. Nil fields are left
// untouched; fields outside this set are ignored, not rejected.
type TicketUpdate struct {
	Status            *string    `json:"status,omitempty"`
	Priority          *string    `json:"priority,omitempty"`
	AssignedTo        *string    `json:"assigned_to,omitempty"`
	AssignedToName    *string    `json:"assigned_to_name,omitempty"`
	ResolutionSummary *string    `json:"resolution_summary,omitempty"`
	IsEscalated       *bool      `json:"is_escalated,omitempty"`
	Tags              *[]string  `json:"tags,omitempty"`
	LastActivityAt    *time.Time `json:"last_activity_at,omitempty"`
}

type TicketFilter struct {
	OrganizationID string `json:"organization_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Priority       string `json:"priority,omitempty"`
	AssignedTo     string `json:"assigned_to,omitempty"`
	Page           int    `json:"page,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
}
