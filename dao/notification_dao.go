// api/dao/notification_dao.go
package dao

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
)

type NotificationDAO struct {
	Driver neo4j.Driver
}

func NewNotificationDAO(driver neo4j.Driver) *NotificationDAO {
	dao := &NotificationDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Notification", zap.Error(err))
	}
	return dao
}

func (dao *NotificationDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_notification_id IF NOT EXISTS
        FOR (n:` + LabelNotification + `) REQUIRE n.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Notification ID", zap.Error(err))
		return err
	}
	return nil
}

func (dao *NotificationDAO) Insert(ctx context.Context, notification model.Notification) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (n:` + LabelNotification + ` {id: $id})
        ON CREATE SET n += $props
        RETURN n.id as id
        `

		metadataJSON, _ := json.Marshal(notification.Metadata)

		props := map[string]interface{}{
			"userId":         notification.UserID,
			"organizationId": notification.OrganizationID,
			"type":           notification.Type,
			"category":       notification.Category,
			"priority":       notification.Priority,
			"title":          notification.Title,
			"message":        notification.Message,
			"actionBy":       notification.ActionBy,
			"resourceType":   notification.ResourceType,
			"resourceId":     notification.ResourceID,
			"resourceName":   notification.ResourceName,
			"status":         model.NotificationUnread,
			"actionUrl":      notification.ActionURL,
			"metadata":       string(metadataJSON),
			"createdAt":      time.Now().Format(time.RFC3339),
		}
		if notification.ExpiresAt != nil {
			props["expiresAt"] = notification.ExpiresAt.Format(time.RFC3339)
		}

		result, err := transaction.Run(query, map[string]interface{}{
			"id":    notification.ID,
			"props": props,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrInternalServer
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to insert notification",
			zap.Error(err),
			zap.String("userID", notification.UserID),
			zap.Duration("duration", time.Since(start)))
		return "", err
	}

	logger.Debug("Notification created",
		zap.String("notificationID", notification.ID),
		zap.String("userID", notification.UserID))
	return notification.ID, nil
}

// ListForUser returns a user's notifications newest first, optionally
// filtered by status. Expired notifications are filtered out at read time;
// there is no background sweep.
func (dao *NotificationDAO) ListForUser(ctx context.Context, userID string, limit int, status string) ([]*model.Notification, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var queryBuilder strings.Builder
	queryBuilder.WriteString("MATCH (n:" + LabelNotification + " {userId: $userId})")
	queryBuilder.WriteString(" WHERE (n.expiresAt IS NULL OR n.expiresAt > $now)")

	params := map[string]interface{}{
		"userId": userID,
		"now":    time.Now().Format(time.RFC3339),
	}

	if status != "" {
		queryBuilder.WriteString(" AND n.status = $status")
		params["status"] = status
	}

	queryBuilder.WriteString(" RETURN n ORDER BY n.createdAt DESC")

	if limit > 0 {
		queryBuilder.WriteString(" LIMIT $limit")
		params["limit"] = limit
	}

	result, err := session.Run(queryBuilder.String(), params)
	if err != nil {
		logger.Error("Failed to execute list notifications query",
			zap.Error(err),
			zap.String("userID", userID))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var notifications []*model.Notification
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		notifications = append(notifications, mapNodeToNotification(node))
	}

	return notifications, nil
}

// MarkRead transitions unread → read. Idempotent: a second call leaves the
// status and the original readAt stamp untouched.
func (dao *NotificationDAO) MarkRead(ctx context.Context, notificationID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (n:` + LabelNotification + ` {id: $id})
        SET n.status = $read, n.readAt = coalesce(n.readAt, $now)
        RETURN n.id
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"id":   notificationID,
			"read": model.NotificationRead,
			"now":  time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrNotificationNotFound
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to mark notification read",
			zap.Error(err),
			zap.String("notificationID", notificationID))
		return err
	}
	return nil
}

// MarkAllRead batch-transitions every unread notification of a user.
func (dao *NotificationDAO) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (n:` + LabelNotification + ` {userId: $userId, status: $unread})
        SET n.status = $read, n.readAt = $now
        RETURN count(n)
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId": userID,
			"unread": model.NotificationUnread,
			"read":   model.NotificationRead,
			"now":    time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return int64(0), nil
	})

	if err != nil {
		logger.Error("Failed to mark all notifications read",
			zap.Error(err),
			zap.String("userID", userID))
		return 0, err
	}

	count, _ := result.(int64)
	logger.Debug("Marked all notifications read",
		zap.String("userID", userID),
		zap.Int64("count", count))
	return count, nil
}

func (dao *NotificationDAO) CountUnread(ctx context.Context, userID string) (int64, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (n:` + LabelNotification + ` {userId: $userId, status: $unread})
    WHERE n.expiresAt IS NULL OR n.expiresAt > $now
    RETURN count(n)
    `
	result, err := session.Run(query, map[string]interface{}{
		"userId": userID,
		"unread": model.NotificationUnread,
		"now":    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("Failed to execute unread count query",
			zap.Error(err),
			zap.String("userID", userID))
		return 0, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		if count, ok := result.Record().Values[0].(int64); ok {
			return count, nil
		}
	}
	return 0, nil
}

// Helper function to map Neo4j Node to Notification struct
func mapNodeToNotification(node neo4j.Node) *model.Notification {
	props := node.Props
	notification := &model.Notification{
		ID:             stringProp(props, "id"),
		UserID:         stringProp(props, "userId"),
		OrganizationID: stringProp(props, "organizationId"),
		Type:           stringProp(props, "type"),
		Category:       stringProp(props, "category"),
		Priority:       stringProp(props, "priority"),
		Title:          stringProp(props, "title"),
		Message:        stringProp(props, "message"),
		ActionBy:       stringProp(props, "actionBy"),
		ResourceType:   stringProp(props, "resourceType"),
		ResourceID:     stringProp(props, "resourceId"),
		ResourceName:   stringProp(props, "resourceName"),
		Status:         stringProp(props, "status"),
		ActionURL:      stringProp(props, "actionUrl"),
		CreatedAt:      timeProp(props, "createdAt"),
		ReadAt:         timePtrProp(props, "readAt"),
		ArchivedAt:     timePtrProp(props, "archivedAt"),
		ExpiresAt:      timePtrProp(props, "expiresAt"),
	}
	jsonProp(props, "metadata", &notification.Metadata)
	return notification
}
