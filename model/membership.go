package model

import "time"

// Membership is the user-side projection of a MEMBER_OF relationship.
// Invariant: at most one membership per user carries IsPrimary = true.
type Membership struct {
	OrgID       string    `json:"org_id"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsPrimary   bool      `json:"is_primary"`
	IsActive    bool      `json:"is_active"`
	JoinedAt    time.Time `json:"joined_at"`
}

// OrgMember is the organization-side projection of the same relationship.
type OrgMember struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	JoinedAt    time.Time `json:"joined_at"`
}
