// api/test/mock/stores.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atlasgrc/atlas/api/audit"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
)

// UserStore is a testify mock for service.UserStore.
type UserStore struct {
	mock.Mock
}

var _ service.UserStore = &UserStore{}

func (m *UserStore) UpsertUser(ctx context.Context, user model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserStore) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) UpsertMembership(ctx context.Context, userID, orgID, role string, permissions []string) error {
	args := m.Called(ctx, userID, orgID, role, permissions)
	return args.Error(0)
}

func (m *UserStore) RemoveMembership(ctx context.Context, userID, orgID string) error {
	args := m.Called(ctx, userID, orgID)
	return args.Error(0)
}

// OrganizationStore is a testify mock for service.OrganizationStore.
type OrganizationStore struct {
	mock.Mock
}

var _ service.OrganizationStore = &OrganizationStore{}

func (m *OrganizationStore) UpsertOrganization(ctx context.Context, org model.Organization) (string, error) {
	args := m.Called(ctx, org)
	return args.String(0), args.Error(1)
}

func (m *OrganizationStore) DeleteOrganization(ctx context.Context, orgID string) error {
	args := m.Called(ctx, orgID)
	return args.Error(0)
}

func (m *OrganizationStore) GetOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	args := m.Called(ctx, orgID)
	if o := args.Get(0); o != nil {
		return o.(*model.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrganizationStore) GetOrganizations(ctx context.Context, orgIDs []string) (map[string]*model.Organization, error) {
	args := m.Called(ctx, orgIDs)
	if o := args.Get(0); o != nil {
		return o.(map[string]*model.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrganizationStore) ListMembers(ctx context.Context, orgID string) ([]model.OrgMember, error) {
	args := m.Called(ctx, orgID)
	if members := args.Get(0); members != nil {
		return members.([]model.OrgMember), args.Error(1)
	}
	return nil, args.Error(1)
}

// SnapshotCache is a testify mock for service.SnapshotCache.
type SnapshotCache struct {
	mock.Mock
}

var _ service.SnapshotCache = &SnapshotCache{}

func (m *SnapshotCache) GetSnapshot(ctx context.Context, userID string) (*model.SessionSnapshot, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*model.SessionSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SnapshotCache) SetSnapshot(ctx context.Context, snapshot model.SessionSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *SnapshotCache) DeleteSnapshot(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// AuditRepository is a testify mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

var _ audit.Repository = &AuditRepository{}

func (m *AuditRepository) Append(ctx context.Context, entry audit.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) QueryLogs(ctx context.Context, query audit.Query) ([]audit.ActivityLog, error) {
	args := m.Called(ctx, query)
	if logs := args.Get(0); logs != nil {
		return logs.([]audit.ActivityLog), args.Error(1)
	}
	return nil, args.Error(1)
}
