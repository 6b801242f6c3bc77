// api/service/session_service_test.go
package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/test/mock"
)

func sessionFixtures() (*mock.UserStore, *mock.OrganizationStore, *mock.SnapshotCache, *mock.IdentityClient, *service.SessionService) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	cache := new(mock.SnapshotCache)
	idpClient := new(mock.IdentityClient)
	svc := service.NewSessionService(users, orgs, cache, idpClient)
	return users, orgs, cache, idpClient, svc
}

func twoOrgUser() *model.User {
	return &model.User{
		ID:        "user_1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		Status:    model.UserStatusActive,
		Organizations: []model.Membership{
			{
				OrgID:       "org_alpha",
				Role:        model.RoleOrgAdmin,
				Permissions: model.RolePermissions[model.RoleOrgAdmin],
				IsPrimary:   true,
				IsActive:    true,
				JoinedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				OrgID:       "org_beta",
				Role:        model.RoleOrgViewer,
				Permissions: model.RolePermissions[model.RoleOrgViewer],
				IsActive:    true,
				JoinedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func twoOrgs() map[string]*model.Organization {
	return map[string]*model.Organization{
		"org_alpha": {ID: "org_alpha", Name: "Alpha", Plan: model.PlanEnterprise},
		"org_beta":  {ID: "org_beta", Name: "Beta", Plan: model.PlanTrial},
	}
}

func TestProcessLogin_CacheHit(t *testing.T) {
	users, _, cache, _, svc := sessionFixtures()

	cached := &model.SessionSnapshot{
		UserID: "user_1",
		Cache: model.SessionCacheInfo{
			SchemaVersion: model.SessionSchemaVersion,
			Version:       7,
		},
	}
	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(cached, nil)

	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), snapshot.Cache.Version)
	users.AssertNotCalled(t, "GetUser", tmock.Anything, tmock.Anything)
}

func TestProcessLogin_SchemaVersionMismatchRecomputes(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	stale := &model.SessionSnapshot{
		UserID: "user_1",
		Cache: model.SessionCacheInfo{
			SchemaVersion: model.SessionSchemaVersion - 1,
			Version:       4,
		},
	}
	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(stale, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(twoOrgUser(), nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(twoOrgs(), nil)
	cache.On("SetSnapshot", tmock.Anything, tmock.Anything).Return(nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(nil)

	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.NoError(t, err)
	assert.Equal(t, model.SessionSchemaVersion, snapshot.Cache.SchemaVersion)
	assert.Equal(t, int64(5), snapshot.Cache.Version)
}

func TestProcessLogin_CapabilitiesFollowPrimaryRole(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(nil, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(twoOrgUser(), nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(twoOrgs(), nil)
	cache.On("SetSnapshot", tmock.Anything, tmock.Anything).Return(nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(nil)

	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.NoError(t, err)
	assert.Len(t, snapshot.Organizations, 2)
	if assert.NotNil(t, snapshot.PrimaryOrganization) {
		assert.Equal(t, "org_alpha", snapshot.PrimaryOrganization.OrgID)
		assert.Equal(t, model.PlanEnterprise, snapshot.PrimaryOrganization.Plan)
	}
	assert.True(t, snapshot.Capabilities.CanManageUsers)
	assert.False(t, snapshot.Capabilities.IsPlatformAdmin)
	assert.Equal(t, int64(1), snapshot.Cache.Version)
}

func TestProcessLogin_PrimaryFallsBackToEarliestJoined(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	user := twoOrgUser()
	user.Organizations[0].IsPrimary = false
	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(nil, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(user, nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(twoOrgs(), nil)
	cache.On("SetSnapshot", tmock.Anything, tmock.Anything).Return(nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(nil)

	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.NoError(t, err)
	if assert.NotNil(t, snapshot.PrimaryOrganization) {
		// org_beta was joined first.
		assert.Equal(t, "org_beta", snapshot.PrimaryOrganization.OrgID)
	}
	// Viewer primary, viewer capabilities.
	assert.False(t, snapshot.Capabilities.CanManageUsers)
	assert.True(t, snapshot.Capabilities.CanViewReports)
}

func TestProcessLogin_ForceRefreshSkipsCacheHit(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	cached := &model.SessionSnapshot{
		UserID: "user_1",
		Cache: model.SessionCacheInfo{
			SchemaVersion: model.SessionSchemaVersion,
			Version:       2,
		},
	}
	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(cached, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(twoOrgUser(), nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(twoOrgs(), nil)
	cache.On("SetSnapshot", tmock.Anything, tmock.Anything).Return(nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(nil)

	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", true)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), snapshot.Cache.Version)
	users.AssertCalled(t, "GetUser", tmock.Anything, "user_1")
}

func TestProcessLogin_MissingOrgMirrorOmitted(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(nil, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(twoOrgUser(), nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(map[string]*model.Organization{
		"org_alpha": {ID: "org_alpha", Name: "Alpha", Plan: model.PlanEnterprise},
	}, nil)
	cache.On("SetSnapshot", tmock.Anything, tmock.Anything).Return(nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(nil)

	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.NoError(t, err)
	assert.Len(t, snapshot.Organizations, 1)
	assert.Equal(t, "org_alpha", snapshot.Organizations[0].OrgID)
}

func TestProcessLogin_MetadataPushFailurePropagates(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(nil, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(twoOrgUser(), nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(twoOrgs(), nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(assert.AnError)

	_, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.Error(t, err)
	// Nothing may be cached for a snapshot the provider never received.
	cache.AssertNotCalled(t, "SetSnapshot", tmock.Anything, tmock.Anything)
}

func TestProcessLogin_FailedPushRetriedOnNextLogin(t *testing.T) {
	users, orgs, cache, idpClient, svc := sessionFixtures()

	cache.On("GetSnapshot", tmock.Anything, "user_1").Return(nil, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(twoOrgUser(), nil)
	orgs.On("GetOrganizations", tmock.Anything, tmock.Anything).Return(twoOrgs(), nil)
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(assert.AnError).Once()
	idpClient.On("UpdateUserMetadata", tmock.Anything, "user_1", tmock.Anything).Return(nil).Once()
	cache.On("SetSnapshot", tmock.Anything, tmock.Anything).Return(nil)

	_, err := svc.ProcessLogin(context.Background(), "user_1", false)
	assert.Error(t, err)

	// The failed push left no cache entry behind, so the next login
	// recomputes and pushes again instead of serving a stale hit.
	snapshot, err := svc.ProcessLogin(context.Background(), "user_1", false)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.Cache.Version)
	idpClient.AssertNumberOfCalls(t, "UpdateUserMetadata", 2)
	cache.AssertNumberOfCalls(t, "SetSnapshot", 1)
}
