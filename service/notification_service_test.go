// api/service/notification_service_test.go
package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atlasgrc/atlas/api/audit"
	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
)

// fakeNotificationStore records inserts and can be told to fail for chosen
// recipients. Guarded by a mutex because bus handlers write from their own
// goroutines.
type fakeNotificationStore struct {
	mu       sync.Mutex
	inserted []model.Notification
	failFor  map[string]bool
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n model.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[n.UserID] {
		return "", atlas_errors.ErrDatabaseOperation
	}
	if n.ID == "" {
		n.ID = "n_" + n.UserID
	}
	f.inserted = append(f.inserted, n)
	return n.ID, nil
}

func (f *fakeNotificationStore) ListForUser(ctx context.Context, userID string, limit int, status string) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Notification
	for i := range f.inserted {
		n := f.inserted[i]
		if n.UserID != userID {
			continue
		}
		if status != "" && n.Status != status {
			continue
		}
		out = append(out, &n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.inserted {
		if f.inserted[i].ID == notificationID {
			f.inserted[i].Status = model.NotificationRead
			return nil
		}
	}
	return atlas_errors.ErrNotificationNotFound
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for i := range f.inserted {
		if f.inserted[i].UserID == userID && f.inserted[i].Status != model.NotificationRead {
			f.inserted[i].Status = model.NotificationRead
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.inserted {
		if n.UserID == userID && n.Status != model.NotificationRead {
			count++
		}
	}
	return count, nil
}

var _ service.NotificationStore = &fakeNotificationStore{}

func validNotification(userID string) model.Notification {
	return model.Notification{
		UserID:  userID,
		Type:    "member_joined",
		Title:   "New member",
		Message: "Someone joined",
	}
}

func TestCreateNotification_NeverErrors(t *testing.T) {
	store := &fakeNotificationStore{failFor: map[string]bool{"doomed": true}}
	svc := service.NewNotificationService(store, util.NewValidationUtil(), util.NewEventBus())

	id := svc.CreateNotification(context.Background(), validNotification("user_1"))
	assert.NotEmpty(t, id)

	// Write failure is absorbed.
	id = svc.CreateNotification(context.Background(), validNotification("doomed"))
	assert.Empty(t, id)

	// Validation failure is absorbed too.
	id = svc.CreateNotification(context.Background(), model.Notification{UserID: "user_1"})
	assert.Empty(t, id)

	assert.Len(t, store.inserted, 1)
}

func TestNotifyMembers_ExcludesActorAndAbsorbsFailures(t *testing.T) {
	store := &fakeNotificationStore{failFor: map[string]bool{"flaky": true}}
	svc := service.NewNotificationService(store, util.NewValidationUtil(), util.NewEventBus())

	notice := audit.MemberNotice{
		OrganizationID: "org_1",
		Type:           "organization_updated",
		Title:          "Organization updated",
		Message:        "Plan changed",
		ActionBy:       "actor",
	}

	notified := svc.NotifyMembers(context.Background(), []string{"actor", "user_a", "flaky", "user_b"}, "actor", notice)

	assert.ElementsMatch(t, []string{"user_a", "user_b"}, notified)
	for _, n := range store.inserted {
		assert.NotEqual(t, "actor", n.UserID)
		assert.Equal(t, "org_1", n.OrganizationID)
	}
}

func TestMembershipChangeEventNotifiesUser(t *testing.T) {
	store := &fakeNotificationStore{}
	bus := util.NewEventBus()
	service.NewNotificationService(store, util.NewValidationUtil(), bus)

	bus.Publish(context.Background(), util.EventMembershipChanged, map[string]string{
		"userId": "user_1",
		"orgId":  "org_1",
		"role":   model.RoleOrgManager,
	})

	assert.Eventually(t, func() bool {
		count, _ := store.CountUnread(context.Background(), "user_1")
		return count == 1
	}, time.Second, 10*time.Millisecond)

	notifications, err := store.ListForUser(context.Background(), "user_1", 10, "")
	assert.NoError(t, err)
	if assert.Len(t, notifications, 1) {
		assert.Equal(t, "membership_changed", notifications[0].Type)
		assert.Equal(t, "org_1", notifications[0].OrganizationID)
		assert.Contains(t, notifications[0].Message, model.RoleOrgManager)
	}

	// A removal carries no role and gets the removal wording.
	bus.Publish(context.Background(), util.EventMembershipChanged, map[string]string{
		"userId": "user_1",
		"orgId":  "org_1",
	})

	assert.Eventually(t, func() bool {
		count, _ := store.CountUnread(context.Background(), "user_1")
		return count == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMarkAsRead_UnknownNotification(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := service.NewNotificationService(store, util.NewValidationUtil(), util.NewEventBus())

	err := svc.MarkAsRead(context.Background(), "missing")
	assert.ErrorIs(t, err, atlas_errors.ErrNotificationNotFound)
}

func TestMarkAllAsRead_CountsTransitions(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := service.NewNotificationService(store, util.NewValidationUtil(), util.NewEventBus())

	svc.CreateNotification(context.Background(), validNotification("user_1"))
	svc.CreateNotification(context.Background(), validNotification("user_1"))
	svc.CreateNotification(context.Background(), validNotification("user_2"))

	count, err := svc.MarkAllAsRead(context.Background(), "user_1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := svc.GetUnreadCount(context.Background(), "user_1")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	unread, err = svc.GetUnreadCount(context.Background(), "user_2")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
