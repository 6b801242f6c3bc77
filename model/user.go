package model

import "time"

// User status lifecycle. Transitions only move forward; a suspended or
// deleted user is never implicitly reactivated by a mirror write.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
	UserStatusDeleted   = "deleted"
)

var userStatusRank = map[string]int{
	UserStatusActive:    0,
	UserStatusInactive:  1,
	UserStatusSuspended: 1,
	UserStatusDeleted:   2,
}

// ForwardStatus returns the status the mirrored document should carry given
// the currently stored status and the incoming one. A lower-ranked incoming
// status never overwrites a higher-ranked stored one.
func ForwardStatus(stored, incoming string) string {
	if incoming == "" {
		if stored == "" {
			return UserStatusActive
		}
		return stored
	}
	if stored == "" {
		return incoming
	}
	if userStatusRank[incoming] < userStatusRank[stored] {
		return stored
	}
	return incoming
}

type UserPreferences struct {
	Timezone    string `json:"timezone,omitempty"`
	Locale      string `json:"locale,omitempty"`
	EmailOptOut bool   `json:"email_opt_out,omitempty"`
}

type UserSecurity struct {
	MFAEnabled  bool       `json:"mfa_enabled"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// User is the mirrored identity-provider account document. Memberships are
// projected from MEMBER_OF relationships, not stored on the node itself.
type User struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	ImageURL      string          `json:"image_url,omitempty"`
	Status        string          `json:"status"`
	Preferences   UserPreferences `json:"preferences"`
	Security      UserSecurity    `json:"security"`
	Organizations []Membership    `json:"organizations"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PrimaryMembership returns the membership flagged primary, falling back to
// the earliest-joined membership when none is flagged. The second return is
// false when the user has no memberships at all.
func (u *User) PrimaryMembership() (Membership, bool) {
	if len(u.Organizations) == 0 {
		return Membership{}, false
	}
	earliest := u.Organizations[0]
	for _, m := range u.Organizations {
		if m.IsPrimary {
			return m, true
		}
		if m.JoinedAt.Before(earliest.JoinedAt) {
			earliest = m
		}
	}
	return earliest, true
}

type UserSearchCriteria struct {
	ID        string     `json:"id,omitempty"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name,omitempty"`
	Status    string     `json:"status,omitempty"`
	OrgID     string     `json:"org_id,omitempty"`
	FromDate  *time.Time `json:"from_date,omitempty"`
	ToDate    *time.Time `json:"to_date,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
}
