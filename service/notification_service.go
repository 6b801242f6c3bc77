// api/service/notification_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlasgrc/atlas/api/audit"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/util"
)

// NotificationStore is the slice of the notification DAO the service uses.
type NotificationStore interface {
	Insert(ctx context.Context, notification model.Notification) (string, error)
	ListForUser(ctx context.Context, userID string, limit int, status string) ([]*model.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// INotificationService manages per-recipient notification records.
// CreateNotification is deliberately non-throwing: a notification that could
// not be written is logged and dropped, never an error for the caller.
type INotificationService interface {
	CreateNotification(ctx context.Context, notification model.Notification) string
	GetUserNotifications(ctx context.Context, userID string, status string, limit int) ([]*model.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
}

type NotificationService struct {
	store      NotificationStore
	validation *util.ValidationUtil
}

var _ INotificationService = &NotificationService{}
var _ audit.MemberNotifier = &NotificationService{}

func NewNotificationService(store NotificationStore, validation *util.ValidationUtil, eventBus *util.EventBus) *NotificationService {
	service := &NotificationService{store: store, validation: validation}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventMembershipChanged, service.handleMembershipChanged)

	return service
}

// handleMembershipChanged tells the affected user their organization access
// changed. Notification creation is best-effort, so the handler never reports
// an error back to the bus.
func (s *NotificationService) handleMembershipChanged(ctx context.Context, event util.Event) error {
	change, ok := event.Payload.(map[string]string)
	if !ok {
		logger.Warn("Unexpected membership event payload",
			zap.String("eventType", event.Type))
		return nil
	}

	notification := model.Notification{
		UserID:         change["userId"],
		OrganizationID: change["orgId"],
		Type:           "membership_changed",
		Category:       "organization",
		Priority:       model.NotificationPriorityMedium,
	}
	if role := change["role"]; role != "" {
		notification.Title = "Organization access updated"
		notification.Message = "Your role is now " + role + "."
	} else {
		notification.Title = "Organization access removed"
		notification.Message = "You are no longer a member of this organization."
	}

	s.CreateNotification(ctx, notification)
	return nil
}

// CreateNotification writes one notification and returns its id, or "" when
// the write failed for any reason.
func (s *NotificationService) CreateNotification(ctx context.Context, notification model.Notification) string {
	if err := s.validation.ValidateNotification(notification); err != nil {
		logger.Warn("Dropping invalid notification",
			zap.Error(err),
			zap.String("userID", notification.UserID),
			zap.String("type", notification.Type))
		return ""
	}

	id, err := s.store.Insert(ctx, notification)
	if err != nil {
		logger.Warn("Dropping notification after failed write",
			zap.Error(err),
			zap.String("userID", notification.UserID),
			zap.String("type", notification.Type))
		return ""
	}
	return id
}

// NotifyMembers fans a notice out to organization members, skipping the actor
// who triggered it. Per-member failures are absorbed; the returned slice
// holds the user ids that were actually notified.
func (s *NotificationService) NotifyMembers(ctx context.Context, memberIDs []string, excludeUserID string, notice audit.MemberNotice) []string {
	notified := make([]string, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		if memberID == excludeUserID {
			continue
		}
		id := s.CreateNotification(ctx, model.Notification{
			UserID:         memberID,
			OrganizationID: notice.OrganizationID,
			Type:           notice.Type,
			Category:       notice.Category,
			Priority:       notice.Priority,
			Title:          notice.Title,
			Message:        notice.Message,
			ActionBy:       notice.ActionBy,
			ResourceType:   notice.ResourceType,
			ResourceID:     notice.ResourceID,
			ResourceName:   notice.ResourceName,
			ActionURL:      notice.ActionURL,
		})
		if id != "" {
			notified = append(notified, memberID)
		}
	}
	return notified
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string, status string, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListForUser(ctx, userID, limit, status)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	return s.store.MarkRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}
