// api/controller/webhook_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/middleware"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
)

// WebhookController receives verified identity-provider deliveries. Handler
// errors respond 500 so the provider redelivers; every handler downstream is
// replay safe.
type WebhookController struct {
	syncService service.ISyncService
}

func NewWebhookController(syncService service.ISyncService) *WebhookController {
	return &WebhookController{syncService: syncService}
}

// RegisterRoutes registers the webhook endpoint. The route group is expected
// to carry the signature verification middleware.
func (wc *WebhookController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/identity", wc.HandleEvent)
}

// HandleEvent endpoint
func (wc *WebhookController) HandleEvent(c *gin.Context) {
	var event model.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		middleware.CountWebhookEvent("invalid", "rejected")
		util.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload", err)
		return
	}

	logger.Info("Webhook event received", zap.String("type", event.Type))

	if err := wc.dispatch(c, event); err != nil {
		if err == atlas_errors.ErrUnknownEventType {
			// Acknowledged so the provider stops redelivering event types we
			// do not consume.
			middleware.CountWebhookEvent(event.Type, "ignored")
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		middleware.CountWebhookEvent(event.Type, "failed")
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to process webhook event", err)
		return
	}

	middleware.CountWebhookEvent(event.Type, "processed")
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (wc *WebhookController) dispatch(c *gin.Context, event model.WebhookEvent) error {
	switch event.Type {
	case model.EventUserCreated, model.EventUserUpdated:
		var data model.WebhookEntityData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		_, err := wc.syncService.SyncUser(c, data.ID)
		return err

	case model.EventUserDeleted:
		var data model.WebhookEntityData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		return wc.syncService.DeleteUser(c, data.ID)

	case model.EventOrgCreated, model.EventOrgUpdated:
		var data model.WebhookEntityData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		_, err := wc.syncService.SyncOrganization(c, data.ID)
		return err

	case model.EventOrgDeleted:
		var data model.WebhookEntityData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		return wc.syncService.DeleteOrganization(c, data.ID)

	case model.EventMembershipCreated, model.EventMembershipUpdated:
		var data model.WebhookMembershipData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		return wc.syncService.UpsertMembership(c, data.PublicUserData.UserID, data.Organization.ID, data.Role, data.Permissions)

	case model.EventMembershipDeleted:
		var data model.WebhookMembershipData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		return wc.syncService.RemoveMembership(c, data.PublicUserData.UserID, data.Organization.ID)

	default:
		logger.Warn("Unknown webhook event type", zap.String("type", event.Type))
		return atlas_errors.ErrUnknownEventType
	}
}
