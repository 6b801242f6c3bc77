// api/controller/notification_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
)

type NotificationController struct {
	notificationService service.INotificationService
}

func NewNotificationController(notificationService service.INotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// RegisterRoutes registers the API routes
func (nc *NotificationController) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", nc.ListNotifications)
		notifications.GET("/unread-count", nc.UnreadCount)
		notifications.PUT("/:id/read", nc.MarkAsRead)
		notifications.PUT("/read-all", nc.MarkAllAsRead)
	}
}

// ListNotifications endpoint
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "userId is required", atlas_errors.ErrInvalidNotificationData)
		return
	}
	status := c.Query("status")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	notifications, err := nc.notificationService.GetUserNotifications(c, userID, status, limit)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// UnreadCount endpoint
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "userId is required", atlas_errors.ErrInvalidNotificationData)
		return
	}

	count, err := nc.notificationService.GetUnreadCount(c, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to count unread notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkAsRead endpoint
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	notificationID := c.Param("id")

	if err := nc.notificationService.MarkAsRead(c, notificationID); err != nil {
		if err == atlas_errors.ErrNotificationNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Notification not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to mark notification read", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllAsRead endpoint
func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "userId is required", atlas_errors.ErrInvalidNotificationData)
		return
	}

	count, err := nc.notificationService.MarkAllAsRead(c, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to mark notifications read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": count})
}
