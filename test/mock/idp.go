// api/test/mock/idp.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atlasgrc/atlas/api/idp"
)

// IdentityClient is a testify mock for idp.Client.
type IdentityClient struct {
	mock.Mock
}

var _ idp.Client = &IdentityClient{}

func (m *IdentityClient) GetUser(ctx context.Context, userID string) (*idp.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*idp.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityClient) GetOrganization(ctx context.Context, orgID string) (*idp.Organization, error) {
	args := m.Called(ctx, orgID)
	if o := args.Get(0); o != nil {
		return o.(*idp.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityClient) UpdateUserMetadata(ctx context.Context, userID string, metadata interface{}) error {
	args := m.Called(ctx, userID, metadata)
	return args.Error(0)
}
