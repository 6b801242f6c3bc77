// api/audit/service_test.go
package audit_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/atlasgrc/atlas/api/audit"
	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/test/mock"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	defer logger.Sync()
	os.Exit(m.Run())
}

type recordingNotifier struct {
	calls []audit.MemberNotice
	ids   [][]string
}

func (r *recordingNotifier) NotifyMembers(ctx context.Context, memberIDs []string, excludeUserID string, notice audit.MemberNotice) []string {
	r.calls = append(r.calls, notice)
	var notified []string
	for _, id := range memberIDs {
		if id != excludeUserID {
			notified = append(notified, id)
		}
	}
	r.ids = append(r.ids, notified)
	return notified
}

func TestLogActivity_ValidatesRequiredFields(t *testing.T) {
	repo := new(mock.AuditRepository)
	svc := audit.NewService(repo, nil)

	_, err := svc.LogActivity(context.Background(), audit.ActivityLog{
		OrganizationID: "org_1",
		UserID:         "user_1",
		Action:         "organization.updated",
		// Category and Description missing
	})

	assert.ErrorIs(t, err, atlas_errors.ErrInvalidActivityData)
	repo.AssertNotCalled(t, "Append", tmock.Anything, tmock.Anything)
}

func TestLogActivity_AssignsIDTimestampSeverity(t *testing.T) {
	repo := new(mock.AuditRepository)
	svc := audit.NewService(repo, nil)

	var written audit.ActivityLog
	repo.On("Append", tmock.Anything, tmock.Anything).Run(func(args tmock.Arguments) {
		written = args.Get(1).(audit.ActivityLog)
	}).Return(nil)

	id, err := svc.LogActivity(context.Background(), audit.ActivityLog{
		OrganizationID: "org_1",
		UserID:         "user_1",
		Action:         "organization.updated",
		Category:       "organization",
		Description:    "Organization Alpha was updated",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, written.ID)
	assert.Equal(t, audit.SeverityInfo, written.Severity)
	assert.False(t, written.Timestamp.IsZero())
}

func TestLogOrganizationCreated_FansOutAfterWrite(t *testing.T) {
	repo := new(mock.AuditRepository)
	notifier := &recordingNotifier{}
	svc := audit.NewService(repo, notifier)

	repo.On("Append", tmock.Anything, tmock.Anything).Return(nil)

	actor := audit.Actor{ID: "actor_1", Name: "Ada"}
	org := model.Organization{ID: "org_1", Name: "Alpha"}

	err := svc.LogOrganizationCreated(context.Background(), actor, org, []string{"actor_1", "user_a", "user_b"})

	assert.NoError(t, err)
	if assert.Len(t, notifier.calls, 1) {
		assert.Equal(t, "organization_created", notifier.calls[0].Type)
		assert.Equal(t, "org_1", notifier.calls[0].OrganizationID)
	}
	assert.Equal(t, []string{"user_a", "user_b"}, notifier.ids[0])
}

func TestLogOrganizationCreated_WriteFailureSkipsFanOut(t *testing.T) {
	repo := new(mock.AuditRepository)
	notifier := &recordingNotifier{}
	svc := audit.NewService(repo, notifier)

	repo.On("Append", tmock.Anything, tmock.Anything).Return(atlas_errors.ErrDatabaseOperation)

	err := svc.LogOrganizationCreated(context.Background(), audit.Actor{ID: "actor_1"}, model.Organization{ID: "org_1", Name: "Alpha"}, []string{"user_a"})

	assert.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestDiffOrganizations(t *testing.T) {
	oldOrg := model.Organization{ID: "org_1", Name: "Alpha", Plan: model.PlanTrial}
	newOrg := model.Organization{ID: "org_1", Name: "Alpha Corp", Plan: model.PlanEnterprise}

	changes := audit.DiffOrganizations(oldOrg, newOrg)

	assert.Len(t, changes, 2)
	fields := []string{changes[0].Field, changes[1].Field}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "plan")

	assert.Empty(t, audit.DiffOrganizations(oldOrg, oldOrg))
}
