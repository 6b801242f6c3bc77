// api/idp/client.go
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when the identity provider has no record for the
// requested id. Sync handlers propagate it so the delivery is retried;
// repeated not-found indicates a permanently inconsistent state.
var ErrNotFound = errors.New("identity provider record not found")

// User is the provider's account record as the sync layer consumes it.
type User struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	ImageURL       string          `json:"image_url"`
	Banned         bool            `json:"banned"`
	MFAEnabled     bool            `json:"two_factor_enabled"`
	LastSignInAt   *time.Time      `json:"last_sign_in_at"`
	PublicMetadata json.RawMessage `json:"public_metadata"`
}

// Organization is the provider's tenant record.
type Organization struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	PublicMetadata json.RawMessage `json:"public_metadata"`
}

// Client is the boundary to the external identity provider. The session
// materializer persists snapshots through UpdateUserMetadata so the provider
// can attach them to future authentication tokens.
type Client interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	GetOrganization(ctx context.Context, orgID string) (*Organization, error)
	UpdateUserMetadata(ctx context.Context, userID string, metadata interface{}) error
}
