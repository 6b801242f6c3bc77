// api/service/sync_service_test.go
package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/atlasgrc/atlas/api/audit"
	"github.com/atlasgrc/atlas/api/idp"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/test/mock"
	"github.com/atlasgrc/atlas/api/util"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	defer logger.Sync()
	os.Exit(m.Run())
}

func newSyncService(users *mock.UserStore, orgs *mock.OrganizationStore, idpClient *mock.IdentityClient, sessions *mock.SnapshotCache) *service.SyncService {
	sessionSvc := service.NewSessionService(users, orgs, sessions, idpClient)
	return service.NewSyncService(users, orgs, idpClient, sessionSvc, nil, util.NewValidationUtil(), util.NewEventBus())
}

func TestSyncUser_ForwardOnlyStatus(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	svc := newSyncService(users, orgs, idpClient, sessions)

	// Provider says the account is fine, but the mirror already recorded a
	// suspension. The replayed event must not reactivate the user.
	idpClient.On("GetUser", tmock.Anything, "user_1").Return(&idp.User{
		ID:    "user_1",
		Email: "ada@example.com",
	}, nil)
	users.On("GetUser", tmock.Anything, "user_1").Return(&model.User{
		ID:        "user_1",
		Email:     "ada@example.com",
		Status:    model.UserStatusSuspended,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil)
	users.On("UpsertUser", tmock.Anything, tmock.MatchedBy(func(u model.User) bool {
		return u.Status == model.UserStatusSuspended
	})).Return("user_1", nil)
	sessions.On("DeleteSnapshot", tmock.Anything, "user_1").Return(nil)

	user, err := svc.SyncUser(context.Background(), "user_1")

	assert.NoError(t, err)
	assert.Equal(t, model.UserStatusSuspended, user.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), user.CreatedAt)
	users.AssertExpectations(t)
}

func TestSyncUser_BannedMapsToSuspended(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	svc := newSyncService(users, orgs, idpClient, sessions)

	idpClient.On("GetUser", tmock.Anything, "user_2").Return(&idp.User{
		ID:     "user_2",
		Email:  "bob@example.com",
		Banned: true,
	}, nil)
	users.On("GetUser", tmock.Anything, "user_2").Return(nil, nil)
	users.On("UpsertUser", tmock.Anything, tmock.MatchedBy(func(u model.User) bool {
		return u.Status == model.UserStatusSuspended
	})).Return("user_2", nil)
	sessions.On("DeleteSnapshot", tmock.Anything, "user_2").Return(nil)

	user, err := svc.SyncUser(context.Background(), "user_2")

	assert.NoError(t, err)
	assert.Equal(t, model.UserStatusSuspended, user.Status)
}

func TestSyncUser_ProviderGone(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	svc := newSyncService(users, orgs, idpClient, sessions)

	idpClient.On("GetUser", tmock.Anything, "ghost").Return(nil, idp.ErrNotFound)

	_, err := svc.SyncUser(context.Background(), "ghost")

	assert.ErrorIs(t, err, idp.ErrNotFound)
	users.AssertNotCalled(t, "UpsertUser", tmock.Anything, tmock.Anything)
}

func TestDeleteUser_InvalidatesSession(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	svc := newSyncService(users, orgs, idpClient, sessions)

	users.On("DeleteUser", tmock.Anything, "user_3").Return(nil)
	sessions.On("DeleteSnapshot", tmock.Anything, "user_3").Return(nil)

	err := svc.DeleteUser(context.Background(), "user_3")

	assert.NoError(t, err)
	sessions.AssertCalled(t, "DeleteSnapshot", tmock.Anything, "user_3")
}

func TestUpsertMembership_RejectsUnknownRole(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	svc := newSyncService(users, orgs, idpClient, sessions)

	err := svc.UpsertMembership(context.Background(), "user_1", "org_1", "emperor", nil)

	assert.Error(t, err)
	users.AssertNotCalled(t, "UpsertMembership", tmock.Anything, tmock.Anything, tmock.Anything, tmock.Anything, tmock.Anything)
}

// countingAuditService counts member-join entries so replay behavior is
// observable without an Elasticsearch repository.
type countingAuditService struct {
	audit.Service
	memberJoined int
}

func (c *countingAuditService) LogMemberJoined(ctx context.Context, actor audit.Actor, org model.Organization, userID, role string, memberIDs []string) error {
	c.memberJoined++
	return nil
}

func TestUpsertMembership_ReplayDoesNotRepeatJoinActivity(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	auditSvc := &countingAuditService{}
	sessionSvc := service.NewSessionService(users, orgs, sessions, idpClient)
	svc := service.NewSyncService(users, orgs, idpClient, sessionSvc, auditSvc, util.NewValidationUtil(), util.NewEventBus())

	// First delivery: no membership on file yet.
	users.On("GetUser", tmock.Anything, "user_1").Return(nil, nil).Once()
	// Redelivery: the edge already exists.
	users.On("GetUser", tmock.Anything, "user_1").Return(&model.User{
		ID: "user_1",
		Organizations: []model.Membership{
			{OrgID: "org_1", Role: model.RoleOrgAnalyst},
		},
	}, nil).Once()
	users.On("UpsertMembership", tmock.Anything, "user_1", "org_1", model.RoleOrgAnalyst, []string(nil)).Return(nil).Twice()
	sessions.On("DeleteSnapshot", tmock.Anything, "user_1").Return(nil)
	orgs.On("GetOrganization", tmock.Anything, "org_1").Return(&model.Organization{ID: "org_1", Name: "Alpha"}, nil)
	orgs.On("ListMembers", tmock.Anything, "org_1").Return([]model.OrgMember{{UserID: "user_1"}}, nil)

	assert.NoError(t, svc.UpsertMembership(context.Background(), "user_1", "org_1", model.RoleOrgAnalyst, nil))
	assert.NoError(t, svc.UpsertMembership(context.Background(), "user_1", "org_1", model.RoleOrgAnalyst, nil))

	// The write is replay-safe and happens both times; the join activity is
	// recorded only for the first delivery.
	users.AssertNumberOfCalls(t, "UpsertMembership", 2)
	assert.Equal(t, 1, auditSvc.memberJoined)
}

func TestDeleteOrganization_InvalidatesMemberSessions(t *testing.T) {
	users := new(mock.UserStore)
	orgs := new(mock.OrganizationStore)
	idpClient := new(mock.IdentityClient)
	sessions := new(mock.SnapshotCache)
	svc := newSyncService(users, orgs, idpClient, sessions)

	orgs.On("ListMembers", tmock.Anything, "org_1").Return([]model.OrgMember{
		{UserID: "user_a"},
		{UserID: "user_b"},
	}, nil)
	orgs.On("DeleteOrganization", tmock.Anything, "org_1").Return(nil)
	sessions.On("DeleteSnapshot", tmock.Anything, "user_a").Return(nil)
	sessions.On("DeleteSnapshot", tmock.Anything, "user_b").Return(nil)

	err := svc.DeleteOrganization(context.Background(), "org_1")

	assert.NoError(t, err)
	sessions.AssertCalled(t, "DeleteSnapshot", tmock.Anything, "user_a")
	sessions.AssertCalled(t, "DeleteSnapshot", tmock.Anything, "user_b")
}
